package callout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/callgen/callout"
	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/state"
)

type pair struct {
	A string `json:"a" msgpack:"a"`
	B int    `json:"b" msgpack:"b"`
}

func TestBuildEncodesWithFormat(t *testing.T) {
	p, err := callout.Build[int]("peer", "sum", format.Msgpack, format.Msgpack, pair{A: "x", B: 2})
	require.NoError(t, err)
	assert.Equal(t, "peer", p.Target)
	assert.Equal(t, "sum", p.Method)
	assert.Equal(t, []byte{0x92, 0xa1, 'x', 0x02}, p.Payload)
	assert.NotEqual(t, p.ID.String(), "")

	_, err = callout.Build[int]("", "sum", format.JSON, format.JSON, pair{})
	assert.Error(t, err)

	_, err = callout.Build[int]("peer", "sum", format.JSON, nil, pair{})
	assert.True(t, errors.Is(err, errors.MissingSerializerFormat))
}

func TestResolveUsesOutputFormat(t *testing.T) {
	p, err := callout.Build[bool]("peer", "flag", format.JSON, format.Msgpack, pair{A: "x", B: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":1}`, string(p.Payload))

	require.NoError(t, p.Resolve([]byte{0xc3}))
	v, err := p.Result()
	require.NoError(t, err)
	assert.True(t, v)
}

func TestParseResult(t *testing.T) {
	v, err := callout.ParseResult[int](format.JSON, []byte("42"))
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = callout.ParseResult[dispatch.Unit](format.JSON, nil)
	assert.NoError(t, err)

	_, err = callout.ParseResult[int](format.JSON, nil)
	assert.True(t, errors.Is(err, errors.CallFailed))

	_, err = callout.ParseResult[int](format.JSON, []byte(`"forty"`))
	assert.True(t, errors.Is(err, errors.CallFailed))
}

func TestPendingCompletesOnce(t *testing.T) {
	p, err := callout.Build[string]("peer", "name", format.JSON, format.JSON, struct{}{})
	require.NoError(t, err)

	require.NoError(t, p.Resolve([]byte(`"first"`)))
	p.Fail(errors.New("too late"))

	select {
	case <-p.Done():
	default:
		t.Fatal("pending not done after Resolve")
	}
	v, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

type transportFunc func(ctx context.Context, c callout.Call) ([]byte, error)

func (f transportFunc) Send(ctx context.Context, c callout.Call) ([]byte, error) { return f(ctx, c) }

func TestAwaitTransportFailure(t *testing.T) {
	p, err := callout.Build[int]("peer", "sum", format.JSON, format.JSON, pair{})
	require.NoError(t, err)

	failing := transportFunc(func(context.Context, callout.Call) ([]byte, error) {
		return nil, errors.New("peer unreachable")
	})
	_, err = callout.Await(context.Background(), failing, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CallAborted))
}

func TestAwaitHonoursContext(t *testing.T) {
	p, err := callout.Build[int]("peer", "sum", format.JSON, format.JSON, pair{})
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)
	stuck := transportFunc(func(context.Context, callout.Call) ([]byte, error) {
		<-release
		return []byte("1"), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = callout.Await(ctx, stuck, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLoopbackUnknownTarget(t *testing.T) {
	lb := callout.NewLoopback(state.NewMemoryStore())
	p, err := callout.Build[int]("nowhere", "sum", format.JSON, format.JSON, pair{})
	require.NoError(t, err)

	_, err = callout.Await(context.Background(), lb, p)
	assert.Error(t, err)
}

func TestLoopbackDelivers(t *testing.T) {
	r := dispatch.NewRegistry()
	require.NoError(t, r.Register(dispatch.Entry{Name: "sum", Func: func(cc *dispatch.CallContext) {
		dispatch.Expose(cc, dispatch.Binding[dispatch.Unit, pair, int]{
			Method:   "sum",
			Input:    format.JSON,
			Output:   format.JSON,
			Receiver: dispatch.ReceiverStateless,
			ArgCount: 2,
			Call: func(_ dispatch.Unit, p pair) (int, bool) {
				return len(p.A) + p.B, true
			},
		})
	}}))

	lb := callout.NewLoopback(state.NewMemoryStore())
	lb.Deploy("adder", r)

	p, err := callout.Build[int]("adder", "sum", format.JSON, format.JSON, pair{A: "abc", B: 4})
	require.NoError(t, err)
	got, err := callout.Await(context.Background(), lb, p)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func sumRegistry(t *testing.T, out format.Format) *dispatch.Registry {
	t.Helper()
	r := dispatch.NewRegistry()
	require.NoError(t, r.Register(dispatch.Entry{Name: "sum", Func: func(cc *dispatch.CallContext) {
		dispatch.Expose(cc, dispatch.Binding[dispatch.Unit, pair, int]{
			Method:   "sum",
			Input:    format.JSON,
			Output:   out,
			Receiver: dispatch.ReceiverStateless,
			ArgCount: 2,
			Call: func(_ dispatch.Unit, p pair) (int, bool) {
				return len(p.A) + p.B, true
			},
		})
	}}))
	return r
}

func TestLoopbackMixedFormats(t *testing.T) {
	lb := callout.NewLoopback(state.NewMemoryStore())
	lb.Deploy("adder", sumRegistry(t, format.Msgpack))

	p, err := callout.Build[int]("adder", "sum", format.JSON, format.Msgpack, pair{A: "ab", B: 5})
	require.NoError(t, err)
	got, err := callout.Await(context.Background(), lb, p)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

type tally struct {
	Count int `json:"count"`
}

type slowStore struct {
	state.Store
}

func (s slowStore) Load(ctx context.Context, contract string) (state.Record, error) {
	time.Sleep(time.Millisecond)
	return s.Store.Load(ctx, contract)
}

func TestLoopbackSerializesCallsPerTarget(t *testing.T) {
	r := dispatch.NewRegistry()
	require.NoError(t, r.Register(dispatch.Entry{Name: "incr", Func: func(cc *dispatch.CallContext) {
		dispatch.Expose(cc, dispatch.Binding[*tally, struct{}, int]{
			Method:   "incr",
			Input:    format.JSON,
			Output:   format.JSON,
			Receiver: dispatch.ReceiverMut,
			Call: func(st *tally, _ struct{}) (int, bool) {
				st.Count++
				return st.Count, true
			},
		})
	}}))

	store := state.NewMemoryStore()
	lb := callout.NewLoopback(slowStore{Store: store})
	lb.Deploy("inbox", r)

	const calls = 50
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := callout.Build[int]("inbox", "incr", format.JSON, format.JSON, struct{}{})
			if err != nil {
				errs <- err
				return
			}
			_, err = callout.Await(context.Background(), lb, p)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rec, err := store.Load(context.Background(), "inbox")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":50}`, string(rec.Data))
}
