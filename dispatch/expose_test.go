package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	calltest "github.com/teranos/callgen/internal/testing"
)

type counter struct {
	Count int    `json:"count"`
	Last  string `json:"last"`
}

func (c *counter) Bump(by int, note string) int {
	c.Count += by
	c.Last = note
	return c.Count
}

type bumpArgs struct {
	By   int    `json:"by" msgpack:"by"`
	Note string `json:"note" msgpack:"note"`
}

func bumpBinding(f format.Format) dispatch.Binding[*counter, bumpArgs, int] {
	return dispatch.Binding[*counter, bumpArgs, int]{
		Interface: "Counter",
		Method:    "bump",
		Input:     f,
		Output:    f,
		Receiver:  dispatch.ReceiverMut,
		ArgCount:  2,
		Call: func(state *counter, args bumpArgs) (int, bool) {
			return state.Bump(args.By, args.Note), true
		},
	}
}

func resetBinding() dispatch.Binding[*counter, struct{}, dispatch.Unit] {
	return dispatch.Binding[*counter, struct{}, dispatch.Unit]{
		Interface: "Counter",
		Method:    "reset",
		Input:     format.JSON,
		Output:    format.JSON,
		Receiver:  dispatch.ReceiverMut,
		Call: func(state *counter, _ struct{}) (dispatch.Unit, bool) {
			state.Count = 0
			return dispatch.Unit{}, false
		},
	}
}

func TestExposeValue(t *testing.T) {
	host := calltest.NewBufferHost([]byte(`{"by":2,"note":"hi"}`), []byte(`{"count":40}`))
	cc := dispatch.NewCallContext(host, "bump")

	dispatch.Expose(cc, bumpBinding(format.JSON))

	require.NoError(t, cc.Err())
	assert.Equal(t, "42", string(host.Out))
	assert.Equal(t, []string{"input", "load_state", "output"}, host.Events)
	assert.True(t, cc.Wrote())

	st, ok := cc.PersistableState()
	require.True(t, ok)
	require.NoError(t, host.Persist(st))
	assert.JSONEq(t, `{"count":42,"last":"hi"}`, string(host.State))
}

func TestExposeMsgpack(t *testing.T) {
	in, err := format.Msgpack.Marshal(bumpArgs{By: 1, Note: "m"})
	require.NoError(t, err)
	host := calltest.NewBufferHost(in, nil)
	cc := dispatch.NewCallContext(host, "bump")

	dispatch.Expose(cc, bumpBinding(format.Msgpack))

	require.NoError(t, cc.Err())
	want, err := format.Msgpack.Marshal(1)
	require.NoError(t, err)
	assert.Equal(t, want, host.Out)
}

func TestExposeNoValueWritesNothing(t *testing.T) {
	host := calltest.NewBufferHost(nil, []byte(`{"count":7}`))
	cc := dispatch.NewCallContext(host, "reset")

	dispatch.Expose(cc, resetBinding())

	require.NoError(t, cc.Err())
	assert.Empty(t, host.Out)
	assert.False(t, host.Saw("output"))
	assert.False(t, cc.Wrote())

	st, ok := cc.PersistableState()
	require.True(t, ok)
	require.NoError(t, host.Persist(st))
	assert.JSONEq(t, `{"count":0,"last":""}`, string(host.State))
}

func TestExposeFailures(t *testing.T) {
	packed, err := format.Msgpack.Marshal(bumpArgs{By: 1, Note: "m"})
	require.NoError(t, err)
	short, err := format.Msgpack.Marshal([]interface{}{1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		host       *calltest.BufferHost
		binding    dispatch.Binding[*counter, bumpArgs, int]
		wantKind   error
		wantEvents []string
	}{
		{
			name:       "malformed input",
			host:       calltest.NewBufferHost([]byte(`{"by":"two"}`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "not json at all",
			host:       calltest.NewBufferHost([]byte(`by=2`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "empty input with arguments",
			host:       calltest.NewBufferHost(nil, nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "empty object",
			host:       calltest.NewBufferHost([]byte(`{}`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "null arguments",
			host:       calltest.NewBufferHost([]byte(`null`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "missing field",
			host:       calltest.NewBufferHost([]byte(`{"by":1}`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "null field",
			host:       calltest.NewBufferHost([]byte(`{"by":null,"note":""}`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "keys differ in case",
			host:       calltest.NewBufferHost([]byte(`{"By":1,"Note":""}`), nil),
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "msgpack trailing bytes",
			host:       calltest.NewBufferHost(append(append([]byte{}, packed...), 0xff, 0x01), nil),
			binding:    bumpBinding(format.Msgpack),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "msgpack too few arguments",
			host:       calltest.NewBufferHost(short, nil),
			binding:    bumpBinding(format.Msgpack),
			wantKind:   errors.ArgsDeserializationFailed,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "input unavailable",
			host:       &calltest.BufferHost{InputErr: errors.New("no buffer")},
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.InputUnavailable,
			wantEvents: []string{"input", "abort"},
		},
		{
			name:       "state load",
			host:       &calltest.BufferHost{In: []byte(`{"by":1,"note":""}`), StateErr: errors.New("corrupt")},
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.StateLoadFailed,
			wantEvents: []string{"input", "load_state", "abort"},
		},
		{
			name:       "output write",
			host:       &calltest.BufferHost{In: []byte(`{"by":1,"note":""}`), OutputErr: errors.New("full")},
			binding:    bumpBinding(format.JSON),
			wantKind:   errors.OutputWriteFailed,
			wantEvents: []string{"input", "load_state", "output", "abort"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := dispatch.NewCallContext(tt.host, "bump")
			dispatch.Expose(cc, tt.binding)

			require.Error(t, cc.Err())
			assert.True(t, errors.Is(cc.Err(), tt.wantKind), "got %v", cc.Err())
			assert.Equal(t, cc.Err(), tt.host.Aborted)
			assert.Equal(t, tt.wantEvents, tt.host.Events)
			assert.Empty(t, tt.host.Out)

			_, ok := cc.PersistableState()
			assert.False(t, ok)
		})
	}
}

type unencodable struct {
	Fn func() `json:"fn"`
}

func TestExposeReturnSerializationFailed(t *testing.T) {
	b := dispatch.Binding[dispatch.Unit, struct{}, unencodable]{
		Method:   "broken",
		Input:    format.JSON,
		Output:   format.JSON,
		Receiver: dispatch.ReceiverStateless,
		Call: func(dispatch.Unit, struct{}) (unencodable, bool) {
			return unencodable{Fn: func() {}}, true
		},
	}
	host := calltest.NewBufferHost(nil, nil)
	cc := dispatch.NewCallContext(host, "broken")

	dispatch.Expose(cc, b)

	assert.True(t, errors.Is(cc.Err(), errors.ReturnSerializationFailed))
	assert.Equal(t, []string{"input", "abort"}, host.Events)
	assert.Empty(t, host.Out)
}

func TestStatelessSkipsLoad(t *testing.T) {
	b := dispatch.Binding[counter, struct{}, string]{
		Method:   "ping",
		Input:    format.JSON,
		Output:   format.JSON,
		Receiver: dispatch.ReceiverStateless,
		Call: func(counter, struct{}) (string, bool) {
			return "pong", true
		},
	}
	host := calltest.NewBufferHost([]byte(`{}`), nil)
	cc := dispatch.NewCallContext(host, "ping")

	dispatch.Expose(cc, b)

	require.NoError(t, cc.Err())
	assert.Equal(t, `"pong"`, string(host.Out))
	assert.False(t, host.Saw("load_state"))
	_, ok := cc.PersistableState()
	assert.False(t, ok)
}

func TestRefReceiverNotPersisted(t *testing.T) {
	b := bumpBinding(format.JSON)
	b.Receiver = dispatch.ReceiverRef
	host := calltest.NewBufferHost([]byte(`{"by":1,"note":""}`), []byte(`{"count":1}`))
	cc := dispatch.NewCallContext(host, "bump")

	dispatch.Expose(cc, b)

	require.NoError(t, cc.Err())
	_, ok := cc.PersistableState()
	assert.False(t, ok)
}

func TestInvokeMissingFormat(t *testing.T) {
	b := bumpBinding(format.JSON)
	b.Output = nil
	host := calltest.NewBufferHost([]byte(`{"by":1,"note":""}`), nil)

	err := dispatch.Invoke(dispatch.NewCallContext(host, "bump"), b)
	assert.True(t, errors.Is(err, errors.MissingSerializerFormat))
	assert.Empty(t, host.Events)
}

func TestUnitEncodesAsNull(t *testing.T) {
	data, err := format.JSON.Marshal(dispatch.Unit{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = format.Msgpack.Marshal(dispatch.Unit{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc0}, data)
}

func TestConstMarkers(t *testing.T) {
	assert.True(t, dispatch.ValueOf[bool, dispatch.True]())
	assert.False(t, dispatch.ValueOf[bool, dispatch.False]())
	assert.Equal(t, "static", dispatch.Static{}.RegionName())
}

func TestParseReceiver(t *testing.T) {
	for _, name := range []string{"", "mut", "ref", "owned", "stateless"} {
		r, ok := dispatch.ParseReceiver(name)
		require.True(t, ok, name)
		if name != "" {
			assert.Equal(t, name, r.String())
		}
	}
	_, ok := dispatch.ParseReceiver("borrowed")
	assert.False(t, ok)
}
