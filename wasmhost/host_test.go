package wasmhost

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/state"
)

// Hand-assembled guest. Every import is from the callgen module:
//
//	echo: output_write(input)
//	save: state_write(input)
//	load: output_write(state)
//	fail: abort("boom")
//	twice: output_write twice
var guestWasm = module(
	section(1, vec( // types
		[]byte{0x60, 0x00, 0x01, 0x7f},       // 0: () -> i32
		[]byte{0x60, 0x01, 0x7f, 0x00},       // 1: (i32) -> ()
		[]byte{0x60, 0x02, 0x7f, 0x7f, 0x00}, // 2: (i32, i32) -> ()
		[]byte{0x60, 0x00, 0x00},             // 3: () -> ()
	)),
	section(2, vec( // imports
		importFunc("input_len", 0),    // 0
		importFunc("input_read", 1),   // 1
		importFunc("state_len", 0),    // 2
		importFunc("state_read", 1),   // 3
		importFunc("state_write", 2),  // 4
		importFunc("output_write", 2), // 5
		importFunc("abort", 2),        // 6
	)),
	section(3, vec([]byte{3}, []byte{3}, []byte{3}, []byte{3}, []byte{3})),
	section(5, vec([]byte{0x00, 0x01})), // one page
	section(7, vec(
		export("memory", 0x02, 0),
		export("echo", 0x00, 7),
		export("save", 0x00, 8),
		export("load", 0x00, 9),
		export("fail", 0x00, 10),
		export("twice", 0x00, 11),
	)),
	section(10, vec(
		body(0x41, 0x00, 0x10, 1, 0x41, 0x00, 0x10, 0, 0x10, 5),
		body(0x41, 0x00, 0x10, 1, 0x41, 0x00, 0x10, 0, 0x10, 4),
		body(0x41, 0x00, 0x10, 3, 0x41, 0x00, 0x10, 2, 0x10, 5),
		body(0x41, 0x10, 0x41, 0x04, 0x10, 6),
		body(0x41, 0x00, 0x41, 0x00, 0x10, 5, 0x41, 0x00, 0x41, 0x00, 0x10, 5),
	)),
	section(11, vec(
		append([]byte{0x00, 0x41, 0x10, 0x0b}, str("boom")...),
	)),
)

func module(sections ...[]byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func leb(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func section(id byte, content []byte) []byte {
	return append(append([]byte{id}, leb(len(content))...), content...)
}

func vec(items ...[]byte) []byte {
	out := leb(len(items))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func str(s string) []byte {
	return append(leb(len(s)), s...)
}

func importFunc(name string, typeIdx byte) []byte {
	out := append(str(ModuleName), str(name)...)
	return append(out, 0x00, typeIdx)
}

func export(name string, kind, idx byte) []byte {
	return append(str(name), kind, idx)
}

func body(code ...byte) []byte {
	b := append([]byte{0x00}, code...) // no locals
	b = append(b, 0x0b)
	return append(leb(len(b)), b...)
}

func newContract(t *testing.T, store state.Store) *Contract {
	t.Helper()
	ctx := context.Background()
	rt, err := New(ctx, store, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close(ctx) })

	c, err := rt.Load(ctx, "guest", guestWasm)
	require.NoError(t, err)
	return c
}

func TestLoadListsEntries(t *testing.T) {
	c := newContract(t, state.NewMemoryStore())
	assert.Equal(t, "guest", c.Name())
	assert.Equal(t, []string{"echo", "fail", "load", "save", "twice"}, c.Entries())
}

func TestCallEcho(t *testing.T) {
	c := newContract(t, state.NewMemoryStore())
	out, err := c.Call(context.Background(), "echo", []byte(`{"my_bool":true}`))
	require.NoError(t, err)
	assert.Equal(t, `{"my_bool":true}`, string(out))

	out, err = c.Call(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStateCommittedAndReloaded(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	c := newContract(t, store)

	_, err := c.Call(ctx, "save", []byte(`{"count":3}`))
	require.NoError(t, err)

	rec, err := store.Load(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, "json", rec.Format)
	assert.Equal(t, `{"count":3}`, string(rec.Data))

	out, err := c.Call(ctx, "load", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"count":3}`, string(out))
}

func TestAbortDiscardsStagedState(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	c := newContract(t, store)

	_, err := c.Call(ctx, "fail", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CallAborted))
	assert.Contains(t, err.Error(), "boom")

	_, err = store.Load(ctx, "guest")
	assert.True(t, errors.Is(err, state.ErrNotFound))

	// The instance is replaced after a trap.
	out, err := c.Call(ctx, "echo", []byte("again"))
	require.NoError(t, err)
	assert.Equal(t, "again", string(out))
}

func TestSecondOutputTraps(t *testing.T) {
	c := newContract(t, state.NewMemoryStore())
	_, err := c.Call(context.Background(), "twice", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CallAborted))
}

func TestUnknownEntry(t *testing.T) {
	c := newContract(t, state.NewMemoryStore())
	_, err := c.Call(context.Background(), "memory", nil)
	assert.True(t, errors.Is(err, errors.EntryPointNotFound))
}

func TestForeignStateFormat(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "guest", state.Record{Format: format.Msgpack.Name(), Data: []byte{0x80}}))

	c := newContract(t, store)
	_, err := c.Call(ctx, "load", nil)
	assert.True(t, errors.Is(err, errors.StateLoadFailed))
}

func TestLoadRejectsModuleWithoutEntries(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, state.NewMemoryStore(), Options{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Load(ctx, "empty", module())
	assert.Error(t, err)
	_, err = rt.Load(ctx, "junk", []byte("not wasm"))
	assert.Error(t, err)
}

func TestCallMetrics(t *testing.T) {
	c := newContract(t, state.NewMemoryStore())
	before := testutil.ToFloat64(CallsTotal.WithLabelValues("guest", "fail", outcomeAborted))
	_, _ = c.Call(context.Background(), "fail", nil)
	after := testutil.ToFloat64(CallsTotal.WithLabelValues("guest", "fail", outcomeAborted))
	assert.Equal(t, before+1, after)

	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
