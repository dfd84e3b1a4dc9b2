package callout

import (
	"context"
	"sync"

	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/state"
)

// Loopback delivers calls to contracts running in this process. Each
// target has its own entry point registry; receivers live in Store.
// Calls to the same target run one at a time.
type Loopback struct {
	Store       state.Store
	StateFormat format.Format

	mu        sync.RWMutex
	contracts map[string]*dispatch.Registry
	locks     map[string]*sync.Mutex
}

// NewLoopback returns a loopback over store, persisting receivers as JSON.
func NewLoopback(store state.Store) *Loopback {
	return &Loopback{
		Store:       store,
		StateFormat: format.JSON,
		contracts:   map[string]*dispatch.Registry{},
		locks:       map[string]*sync.Mutex{},
	}
}

// Deploy makes registry reachable under target.
func (l *Loopback) Deploy(target string, registry *dispatch.Registry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contracts[target] = registry
	if l.locks[target] == nil {
		l.locks[target] = &sync.Mutex{}
	}
}

// Send implements Transport.
func (l *Loopback) Send(ctx context.Context, call Call) ([]byte, error) {
	l.mu.RLock()
	r, ok := l.contracts[call.Target]
	lock := l.locks[call.Target]
	l.mu.RUnlock()
	if !ok {
		return nil, errors.Newf("no contract deployed at %s", call.Target)
	}

	// load, call and save must not interleave with another call to target
	lock.Lock()
	defer lock.Unlock()
	return state.Call(ctx, r, l.Store, call.Target, call.Method, call.Payload, l.StateFormat)
}
