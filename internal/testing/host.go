package testing

import (
	"github.com/teranos/callgen/format"
)

// BufferHost is an in-memory dispatch.Host that records every host
// interaction in order.
type BufferHost struct {
	In       []byte
	InputErr error

	// State is the persisted receiver, encoded with StateFormat (JSON when nil).
	State       []byte
	StateFormat format.Format
	StateErr    error

	Out       []byte
	OutputErr error

	Aborted error
	Events  []string
}

// NewBufferHost returns a host whose input is in and whose persisted state
// is state (nil for none).
func NewBufferHost(in, state []byte) *BufferHost {
	return &BufferHost{In: in, State: state}
}

func (h *BufferHost) Input() ([]byte, error) {
	h.Events = append(h.Events, "input")
	return h.In, h.InputErr
}

func (h *BufferHost) LoadState(dst any) error {
	h.Events = append(h.Events, "load_state")
	if h.StateErr != nil {
		return h.StateErr
	}
	if h.State == nil {
		return nil
	}
	return h.stateFormat().Unmarshal(h.State, dst)
}

func (h *BufferHost) Output(data []byte) error {
	h.Events = append(h.Events, "output")
	if h.OutputErr != nil {
		return h.OutputErr
	}
	h.Out = append(h.Out, data...)
	return nil
}

func (h *BufferHost) Abort(err error) {
	h.Events = append(h.Events, "abort")
	h.Aborted = err
}

// Persist stores v as the new state, as a host does after a successful call.
func (h *BufferHost) Persist(v any) error {
	data, err := h.stateFormat().Marshal(v)
	if err != nil {
		return err
	}
	h.Events = append(h.Events, "persist")
	h.State = data
	return nil
}

// Saw reports whether event was recorded.
func (h *BufferHost) Saw(event string) bool {
	for _, e := range h.Events {
		if e == event {
			return true
		}
	}
	return false
}

func (h *BufferHost) stateFormat() format.Format {
	if h.StateFormat == nil {
		return format.JSON
	}
	return h.StateFormat
}
