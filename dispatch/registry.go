package dispatch

import (
	"sort"
	"sync"

	"github.com/teranos/callgen/errors"
)

// EntryPoint is the calling convention of an exposed method: all input and
// output travels through the CallContext.
type EntryPoint func(cc *CallContext)

// Entry names an entry point.
type Entry struct {
	Name string
	Func EntryPoint
}

// Registry maps exported names to entry points. The host selects exactly
// one entry per call by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]EntryPoint
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]EntryPoint)}
}

// Register adds entries. Nothing is added if any name is empty, nil or
// already taken.
func (r *Registry) Register(entries ...Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.Func == nil {
			return errors.Newf("invalid entry point %q", e.Name)
		}
		if _, exists := r.entries[e.Name]; exists || seen[e.Name] {
			return errors.WithHint(
				errors.Newf("entry point %q already registered", e.Name),
				"give one of the bindings an export prefix or override the method's export name")
		}
		seen[e.Name] = true
	}
	for _, e := range entries {
		r.entries[e.Name] = e.Func
	}
	return nil
}

// Lookup returns the entry point registered under name.
func (r *Registry) Lookup(name string) (EntryPoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.entries[name]
	return ep, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the entry point registered under name on host and returns the
// finished context. The error is the call's abort reason, if any.
func (r *Registry) Call(name string, host Host) (*CallContext, error) {
	ep, ok := r.Lookup(name)
	if !ok {
		return nil, errors.MarkAsf(nil, errors.EntryPointNotFound, "no entry point named %q", name)
	}
	cc := NewCallContext(host, name)
	ep(cc)
	return cc, cc.Err()
}
