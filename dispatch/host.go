package dispatch

import (
	"github.com/teranos/callgen/logger"
)

// Host is the execution environment of one call. It owns the input and
// output buffers and the persisted receiver.
type Host interface {
	// Input returns the raw call payload.
	Input() ([]byte, error)
	// LoadState decodes the persisted receiver into dst, a pointer to State.
	LoadState(dst any) error
	// Output hands the complete result payload to the host. Called at most
	// once per call.
	Output(data []byte) error
	// Abort ends the call. Hosts that can trap (wasm) do not return.
	Abort(err error)
}

// CallContext is the explicit per-call context threaded into entry points.
type CallContext struct {
	host  Host
	entry string

	receiver Receiver
	state    any
	loaded   bool
	wrote    bool
	err      error
}

// NewCallContext prepares a call of entry on host.
func NewCallContext(host Host, entry string) *CallContext {
	return &CallContext{host: host, entry: entry}
}

// Entry returns the entry point name the host selected.
func (cc *CallContext) Entry() string { return cc.entry }

// Err returns the error the call aborted with, if any.
func (cc *CallContext) Err() error { return cc.err }

// Wrote reports whether output reached the host.
func (cc *CallContext) Wrote() bool { return cc.wrote }

// PersistableState returns the receiver to persist after a successful call
// of a mutating method. The value is a pointer to the State instance the
// method ran against.
func (cc *CallContext) PersistableState() (any, bool) {
	if cc.err != nil || !cc.loaded || !cc.receiver.PersistsState() {
		return nil, false
	}
	return cc.state, true
}

func (cc *CallContext) abort(err error) {
	cc.err = err
	logger.Debugw("Call aborted",
		logger.FieldEntry, cc.entry,
		logger.FieldError, err)
	cc.host.Abort(err)
}
