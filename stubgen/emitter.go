package stubgen

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
)

// Emitter renders the artifact sets of one interface into files.
//
// Emitters receive a Result where every method succeeded; a partial
// Result is never rendered.
type Emitter interface {
	// Language is the configured name, e.g. "go" or "markdown".
	Language() string
	Emit(result *Result, opts EmitOptions) ([]File, error)
}

// EmitOptions carry per-run metadata and switches.
type EmitOptions struct {
	// Source is the descriptor path recorded in headers.
	Source      string
	Fingerprint string
	Version     string

	WasmExports bool
	CallOut     bool
}

// File is one rendered output, Path relative to the output directory.
type File struct {
	Path    string
	Content []byte
}

// Emit renders result with every emitter, refusing partial results.
func Emit(result *Result, opts EmitOptions, emitters ...Emitter) ([]File, error) {
	if !result.OK() {
		return nil, errors.Wrap(result.Err(), "refusing to emit a partially generated interface")
	}
	var files []File
	seen := map[string]string{}
	for _, e := range emitters {
		out, err := e.Emit(result, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "%s emitter", e.Language())
		}
		for _, f := range out {
			if prev, dup := seen[f.Path]; dup {
				return nil, errors.Newf("%s and %s emitters both write %s", prev, e.Language(), f.Path)
			}
			seen[f.Path] = e.Language()
		}
		files = append(files, out...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// WriteFiles writes files under dir, creating directories as needed.
func WriteFiles(dir string, files []File) error {
	for _, f := range files {
		path := filepath.Join(dir, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "create directory for %s", f.Path)
		}
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", f.Path)
		}
		logger.Debugw("Wrote generated file",
			logger.FieldFile, path,
			logger.FieldSize, len(f.Content))
	}
	return nil
}
