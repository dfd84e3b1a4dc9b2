package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
)

// frame is the host side of one call.
type frame struct {
	entry string

	input    []byte
	state    []byte
	hasState bool

	staged  []byte
	output  []byte
	written bool
	aborted error
}

type frameKey struct{}

func withFrame(ctx context.Context, f *frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

func frameFrom(ctx context.Context) *frame {
	f, ok := ctx.Value(frameKey{}).(*frame)
	if !ok {
		panic(errors.AssertionFailedf("%s import called outside a call", ModuleName))
	}
	return f
}

// trace logs one host import at -vvv.
func (f *frame) trace(name string, size int) {
	if logger.Tracing() {
		logger.Debugw("Host import",
			logger.FieldEntry, f.entry,
			"import", name,
			logger.FieldSize, size)
	}
}

// errTrap unwinds the guest after abort.
var errTrap = errors.New("guest aborted")

func read(m api.Module, ptr, n uint32) []byte {
	data, ok := m.Memory().Read(ptr, n)
	if !ok {
		panic(errors.Newf("memory read out of range at ptr=%d len=%d", ptr, n))
	}
	return append([]byte(nil), data...)
}

func write(m api.Module, ptr uint32, data []byte) {
	if !m.Memory().Write(ptr, data) {
		panic(errors.Newf("memory write out of range at ptr=%d len=%d", ptr, len(data)))
	}
}

func hostModule(r wazero.Runtime) wazero.HostModuleBuilder {
	b := r.NewHostModuleBuilder(ModuleName)

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context) uint32 {
			return uint32(len(frameFrom(ctx).input))
		}).
		Export("input_len")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr uint32) {
			f := frameFrom(ctx)
			f.trace("input_read", len(f.input))
			write(m, ptr, f.input)
		}).
		Export("input_read")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context) int32 {
			f := frameFrom(ctx)
			if !f.hasState {
				return -1
			}
			return int32(len(f.state))
		}).
		Export("state_len")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr uint32) {
			f := frameFrom(ctx)
			f.trace("state_read", len(f.state))
			write(m, ptr, f.state)
		}).
		Export("state_read")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, n uint32) {
			f := frameFrom(ctx)
			f.trace("state_write", int(n))
			f.staged = read(m, ptr, n)
		}).
		Export("state_write")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, n uint32) {
			f := frameFrom(ctx)
			if f.written {
				panic(errors.New("output written twice"))
			}
			f.trace("output_write", int(n))
			f.output = read(m, ptr, n)
			f.written = true
		}).
		Export("output_write")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, n uint32) {
			f := frameFrom(ctx)
			f.aborted = errors.Newf("%s", read(m, ptr, n))
			f.staged = nil
			panic(errTrap)
		}).
		Export("abort")

	return b
}
