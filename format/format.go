// Package format holds the wire formats a method can use for its input and
// output payloads.
//
// Two formats ship with callgen:
//
//   - JSON: textual and self-describing, fields addressed by name.
//   - Msgpack: compact and positional, struct fields encoded as arrays in
//     declaration order with no names on the wire.
//
// Generated Return types call Marshal on their inner value from their own
// marshal hooks, which keeps the wrapper invisible on the wire.
package format

import (
	"sort"
	"sync"

	"github.com/teranos/callgen/errors"
)

// Format marshals values to and from one wire encoding.
type Format interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Format{}
)

func init() {
	MustRegister(JSON)
	MustRegister(Msgpack)
}

// Register adds f under f.Name(). Registering a name twice fails.
func Register(f Format) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := f.Name()
	if name == "" {
		return errors.New("format name cannot be empty")
	}
	if _, exists := registry[name]; exists {
		return errors.Newf("format %q already registered", name)
	}
	registry[name] = f
	return nil
}

// MustRegister is Register that panics, for use from init.
func MustRegister(f Format) {
	if err := Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[name]
	if !ok {
		return nil, errors.MarkAs(
			errors.WithHintf(errors.Newf("unknown format %q", name), "known formats: %v", namesLocked()),
			errors.MissingSerializerFormat, "lookup format")
	}
	return f, nil
}

// Names returns registered format names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the first non-empty name and looks it up. No name at all is
// a MissingSerializerFormat.
func Resolve(names ...string) (Format, error) {
	for _, name := range names {
		if name != "" {
			return Lookup(name)
		}
	}
	return nil, errors.MarkAs(nil, errors.MissingSerializerFormat, "no format declared and no default applies")
}

// MustLookup is Lookup that panics. Generated code uses it for formats
// registered outside this package.
func MustLookup(name string) Format {
	f, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}
