package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/callgen/examples/message"
)

type fakeABI struct {
	input    []byte
	state    []byte
	hasState bool

	staged  []byte
	output  []byte
	aborted string
	calls   []string
}

func (f *fakeABI) inputLen() uint32 { return uint32(len(f.input)) }

func (f *fakeABI) inputRead(buf []byte) {
	f.calls = append(f.calls, "input_read")
	copy(buf, f.input)
}

func (f *fakeABI) stateLen() int32 {
	if !f.hasState {
		return -1
	}
	return int32(len(f.state))
}

func (f *fakeABI) stateRead(buf []byte) { copy(buf, f.state) }

func (f *fakeABI) stateWrite(data []byte) {
	f.calls = append(f.calls, "state_write")
	f.staged = append([]byte(nil), data...)
}

func (f *fakeABI) outputWrite(data []byte) {
	f.calls = append(f.calls, "output_write")
	f.output = append([]byte(nil), data...)
}

func (f *fakeABI) abort(msg string) {
	f.calls = append(f.calls, "abort")
	f.aborted = msg
}

func TestRunStagesMutatedState(t *testing.T) {
	a := &fakeABI{input: []byte(`{"my_string":"x","my_bool":true}`)}
	run(a, "method_b", message.MethodB)

	assert.Equal(t, []string{"input_read", "output_write", "state_write"}, a.calls)
	assert.Equal(t, "true", string(a.output))
	assert.JSONEq(t, `{"latest":"x","count":1}`, string(a.staged))
}

func TestRunLoadsExistingState(t *testing.T) {
	a := &fakeABI{
		input:    []byte(`{"my_string":"y"}`),
		state:    []byte(`{"latest":"x","count":1}`),
		hasState: true,
	}
	run(a, "method_a", message.MethodA)

	assert.Empty(t, a.output)
	assert.JSONEq(t, `{"latest":"y","count":2}`, string(a.staged))
}

func TestRunAbortStagesNothing(t *testing.T) {
	a := &fakeABI{input: []byte(`{"my_string":123}`)}
	run(a, "method_a", message.MethodA)

	require.NotEmpty(t, a.aborted)
	assert.Contains(t, a.aborted, "method_a")
	assert.Equal(t, []string{"input_read", "abort"}, a.calls)
	assert.Nil(t, a.staged)
}

func TestRunOutsideWasmPanics(t *testing.T) {
	assert.Panics(t, func() { Run("method_a", message.MethodA) })
}
