package config

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
)

// ChangeCallback receives every path that changed during one burst, sorted.
type ChangeCallback func(paths []string) error

// FileWatcher watches descriptor and config files and invokes callbacks
// once per burst of writes. Bursts are delivered one at a time; a burst
// that ends while callbacks still run is delivered after them.
type FileWatcher struct {
	watcher        *fsnotify.Watcher
	callbacks      []ChangeCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	pending        map[string]bool
	firing         sync.Mutex
	done           chan struct{}
}

// NewFileWatcher watches the directories holding paths; events for other
// files in those directories are ignored. Editors that replace files on
// save would otherwise drop a watch placed on the file itself.
func NewFileWatcher(paths []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	fw := &FileWatcher{
		watcher:        watcher,
		debouncePeriod: debounce,
		pending:        map[string]bool{},
		done:           make(chan struct{}),
	}

	dirs := map[string]bool{}
	targets := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	go fw.watchLoop(targets)
	return fw, nil
}

// OnChange registers a callback
func (fw *FileWatcher) OnChange(cb ChangeCallback) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.callbacks = append(fw.callbacks, cb)
}

func (fw *FileWatcher) watchLoop(targets map[string]bool) {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			fw.schedule(abs)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (fw *FileWatcher) schedule(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.pending[path] = true
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.firing.Lock()
	defer fw.firing.Unlock()

	fw.mu.Lock()
	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		paths = append(paths, p)
	}
	fw.pending = map[string]bool{}
	callbacks := make([]ChangeCallback, len(fw.callbacks))
	copy(callbacks, fw.callbacks)
	fw.mu.Unlock()

	// an earlier fire already took this burst
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	for _, cb := range callbacks {
		if err := cb(paths); err != nil {
			// keep calling the rest
			logger.Warnw("Watcher callback error",
				"files", paths,
				logger.FieldError, err)
		}
	}
}

// Stop stops watching and waits for the event loop to exit.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	<-fw.done
	return err
}
