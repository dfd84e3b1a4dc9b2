package dispatch

import (
	"reflect"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
)

// Expose runs one call of b against cc and aborts through the host on
// failure. Generated entry points are one-line calls of Expose.
func Expose[S, A, R any](cc *CallContext, b Binding[S, A, R]) {
	if err := Invoke(cc, b); err != nil {
		cc.abort(err)
	}
}

// Invoke is Expose without the abort. Nothing is written to the host unless
// every fallible step before the write succeeded.
func Invoke[S, A, R any](cc *CallContext, b Binding[S, A, R]) (err error) {
	defer func() {
		if err != nil {
			cc.err = err
		}
	}()
	if b.Call == nil {
		return errors.AssertionFailedf("binding %s has no method wrapper", b.Name())
	}
	if b.Input == nil || b.Output == nil {
		return errors.MarkAsf(nil, errors.MissingSerializerFormat, "binding %s has no wire format", b.Name())
	}

	raw, err := cc.host.Input()
	if err != nil {
		return errors.MarkAsf(err, errors.InputUnavailable, "read input for %s", b.Name())
	}

	var args A
	if len(raw) == 0 {
		if b.ArgCount > 0 {
			return errors.MarkAsf(nil, errors.ArgsDeserializationFailed,
				"empty input for %s, which takes %d arguments", b.Name(), b.ArgCount)
		}
	} else if err := format.UnmarshalArgs(b.Input, raw, &args); err != nil {
		return errors.MarkAsf(err, errors.ArgsDeserializationFailed,
			"decode %s args for %s", b.Input.Name(), b.Name())
	}

	state := newState[S]()
	if b.Receiver.LoadsState() {
		if err := cc.host.LoadState(&state); err != nil {
			return errors.MarkAsf(err, errors.StateLoadFailed, "load state for %s", b.Name())
		}
		cc.loaded = true
	}
	cc.receiver = b.Receiver
	cc.state = &state

	ret, ok := b.Call(state, args)
	if !ok {
		return nil
	}

	out, err := b.Output.Marshal(ret)
	if err != nil {
		return errors.MarkAsf(err, errors.ReturnSerializationFailed,
			"encode %s return of %s", b.Output.Name(), b.Name())
	}
	if err := cc.host.Output(out); err != nil {
		return errors.MarkAsf(err, errors.OutputWriteFailed, "write output of %s", b.Name())
	}
	cc.wrote = true
	return nil
}

// newState returns the zero State, with pointer receivers pointing at a
// fresh zero value so a method never runs on nil.
func newState[S any]() S {
	var s S
	t := reflect.TypeFor[S]()
	if t.Kind() == reflect.Pointer {
		s = reflect.New(t.Elem()).Interface().(S)
	}
	return s
}
