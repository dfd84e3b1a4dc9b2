// Package dispatch is the call-time half of callgen: it ties a generated
// Args/Return pair to an implementation method and runs one external call
// through a Host.
//
// A generated CalledIn type (the zero-size carrier of a method) yields a
// Binding. Expose runs the binding against a CallContext:
//
//	read input -> decode Args -> load State -> call -> encode Return -> write output
//
// A failure at any step aborts the call through the host before anything is
// written. Persisting the receiver after a successful call is the host's
// job; CallContext.PersistableState tells it whether and what to persist.
package dispatch

import (
	"github.com/teranos/callgen/format"
)

// Receiver describes how a method uses its receiver.
type Receiver int

const (
	// ReceiverMut loads state, may mutate it, and asks the host to persist it.
	ReceiverMut Receiver = iota
	// ReceiverRef loads state for reading only.
	ReceiverRef
	// ReceiverOwned loads state and consumes it; nothing is persisted.
	ReceiverOwned
	// ReceiverStateless never touches state.
	ReceiverStateless
)

var receiverNames = [...]string{"mut", "ref", "owned", "stateless"}

func (r Receiver) String() string {
	if r < 0 || int(r) >= len(receiverNames) {
		return "unknown"
	}
	return receiverNames[r]
}

// ParseReceiver maps a descriptor receiver name to a Receiver. The empty
// string is ReceiverMut.
func ParseReceiver(s string) (Receiver, bool) {
	if s == "" {
		return ReceiverMut, true
	}
	for i, name := range receiverNames {
		if name == s {
			return Receiver(i), true
		}
	}
	return 0, false
}

// LoadsState reports whether the receiver must be loaded from the host.
func (r Receiver) LoadsState() bool { return r != ReceiverStateless }

// PersistsState reports whether the host should persist the receiver after
// a successful call.
func (r Receiver) PersistsState() bool { return r == ReceiverMut }

// Method maps decoded arguments onto the concrete implementation call.
// Returning false means there is no value to emit.
type Method[S, A, R any] func(state S, args A) (R, bool)

// Binding is the dispatch contract of one method for one receiver type:
// State S, Args A, Return R and the Method wrapper.
type Binding[S, A, R any] struct {
	Interface string
	Method    string

	Input  format.Format
	Output format.Format

	Receiver Receiver
	// ArgCount is the number of declared arguments. Empty input is only
	// accepted when it is zero.
	ArgCount int

	Call Method[S, A, R]
}

// CalledIn is implemented by generated carrier types.
type CalledIn[S, A, R any] interface {
	Binding() Binding[S, A, R]
}

// Name returns "Interface.method".
func (b Binding[S, A, R]) Name() string {
	if b.Interface == "" {
		return b.Method
	}
	return b.Interface + "." + b.Method
}
