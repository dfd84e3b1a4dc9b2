// Package callout builds outbound calls from one contract to another and
// parses their results.
//
// A generated CallX helper encodes the arguments with the method's input
// format and returns a Pending. A Transport delivers it; when the callee's
// output comes back, Resolve decodes it with the method's output format.
package callout

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/logger"
)

// Call is the wire form of an outbound call.
type Call struct {
	ID      uuid.UUID
	Target  string
	Method  string
	Input   format.Format
	Output  format.Format
	Payload []byte
}

// Pending is an outbound call awaiting its result of type R.
type Pending[R any] struct {
	Call

	once   sync.Once
	done   chan struct{}
	result R
	err    error
}

// Build encodes args with in and returns the pending call. The result is
// decoded with out.
func Build[R any](target, method string, in, out format.Format, args any) (*Pending[R], error) {
	if target == "" {
		return nil, errors.New("call target cannot be empty")
	}
	if in == nil || out == nil {
		return nil, errors.MarkAsf(nil, errors.MissingSerializerFormat, "call %s to %s", method, target)
	}
	payload, err := in.Marshal(args)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s call to %s", method, target)
	}
	return &Pending[R]{
		Call: Call{
			ID:      uuid.New(),
			Target:  target,
			Method:  method,
			Input:   in,
			Output:  out,
			Payload: payload,
		},
		done: make(chan struct{}),
	}, nil
}

// ParseResult decodes a callee's output. Empty output is only valid when
// no value is expected.
func ParseResult[R any](f format.Format, data []byte) (R, error) {
	var r R
	if len(data) == 0 {
		if _, unit := any(r).(dispatch.Unit); unit {
			return r, nil
		}
		return r, errors.MarkAs(nil, errors.CallFailed, "callee returned no value")
	}
	if err := f.Unmarshal(data, &r); err != nil {
		return r, errors.MarkAsf(err, errors.CallFailed, "decode %s result", f.Name())
	}
	return r, nil
}

// Resolve completes the call with the callee's output.
func (p *Pending[R]) Resolve(data []byte) error {
	r, err := ParseResult[R](p.Output, data)
	p.complete(r, err)
	return err
}

// Fail completes the call with an error.
func (p *Pending[R]) Fail(reason error) {
	var zero R
	p.complete(zero, errors.MarkAsf(reason, errors.CallAborted, "call %s to %s", p.Method, p.Target))
}

func (p *Pending[R]) complete(r R, err error) {
	p.once.Do(func() {
		p.result, p.err = r, err
		close(p.done)
	})
}

// Done is closed once the call resolved or failed.
func (p *Pending[R]) Done() <-chan struct{} { return p.done }

// Result returns the outcome; it blocks until Done.
func (p *Pending[R]) Result() (R, error) {
	<-p.done
	return p.result, p.err
}

// Transport delivers a call and returns the callee's output.
type Transport interface {
	Send(ctx context.Context, call Call) ([]byte, error)
}

// Await sends p over t and waits for the result or ctx.
func Await[R any](ctx context.Context, t Transport, p *Pending[R]) (R, error) {
	go func() {
		logger.Debugw("Sending call",
			logger.FieldCallID, p.ID.String(),
			"target", p.Target,
			logger.FieldMethod, p.Method)
		out, err := t.Send(ctx, p.Call)
		if err != nil {
			p.Fail(err)
			return
		}
		_ = p.Resolve(out)
	}()

	select {
	case <-p.Done():
		return p.Result()
	case <-ctx.Done():
		var zero R
		p.Fail(ctx.Err())
		return zero, errors.Wrapf(ctx.Err(), "awaiting %s on %s", p.Method, p.Target)
	}
}
