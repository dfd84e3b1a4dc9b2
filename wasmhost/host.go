// Package wasmhost runs callgen contracts compiled to WebAssembly (wasip1)
// under wazero.
//
// A Runtime owns the wazero runtime, WASI and the "callgen" host module.
// Load compiles a contract; each Contract keeps one module instance and
// serializes calls against it. The persisted receiver comes from a
// state.Store. Writes the guest makes with state_write are staged and only
// committed once the call returns without trapping.
package wasmhost

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/logger"
	"github.com/teranos/callgen/state"
)

// ModuleName is the import module guests link against.
const ModuleName = "callgen"

// DefaultMemoryLimitPages caps guest memory at 16MiB.
const DefaultMemoryLimitPages = 256

// Options configures a Runtime.
type Options struct {
	// StateFormat is the encoding guests use for their receiver. It is
	// recorded next to the stored bytes.
	StateFormat format.Format
	// MemoryLimitPages caps each guest's linear memory, in 64KiB pages.
	MemoryLimitPages uint32
}

// Runtime hosts contracts.
type Runtime struct {
	runtime wazero.Runtime
	store   state.Store
	opts    Options
	log     *zap.SugaredLogger
}

// New creates a runtime whose contracts keep their receivers in store.
func New(ctx context.Context, store state.Store, opts Options) (*Runtime, error) {
	if store == nil {
		return nil, errors.New("wasm host needs a state store")
	}
	if opts.StateFormat == nil {
		opts.StateFormat = format.JSON
	}
	if opts.MemoryLimitPages == 0 {
		opts.MemoryLimitPages = DefaultMemoryLimitPages
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(opts.MemoryLimitPages).
		WithCloseOnContextDone(true))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, errors.Wrap(err, "failed to instantiate WASI")
	}
	if _, err := hostModule(r).Instantiate(ctx); err != nil {
		r.Close(ctx)
		return nil, errors.Wrapf(err, "failed to instantiate %s host module", ModuleName)
	}

	return &Runtime{
		runtime: r,
		store:   store,
		opts:    opts,
		log:     logger.ComponentLogger("wasmhost"),
	}, nil
}

// Close releases every contract and the runtime.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Contract is one loaded wasm contract.
type Contract struct {
	name     string
	rt       *Runtime
	compiled wazero.CompiledModule
	entries  []string

	mu  sync.Mutex
	mod api.Module
}

// Load compiles wasm as the contract name. Exported functions without
// parameters or results are its entry points.
func (r *Runtime) Load(ctx context.Context, name string, wasm []byte) (*Contract, error) {
	if name == "" {
		return nil, errors.New("contract name cannot be empty")
	}
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile contract %s", name)
	}

	var entries []string
	for export, def := range compiled.ExportedFunctions() {
		if export == "_initialize" || export == "_start" {
			continue
		}
		if len(def.ParamTypes()) == 0 && len(def.ResultTypes()) == 0 {
			entries = append(entries, export)
		}
	}
	sort.Strings(entries)
	if len(entries) == 0 {
		compiled.Close(ctx)
		return nil, errors.WithHint(
			errors.Newf("contract %s exports no entry points", name),
			"generate with wasm_exports enabled and build with GOOS=wasip1 GOARCH=wasm -buildmode=c-shared")
	}

	r.log.Infow("Loaded contract",
		"contract", name,
		logger.FieldCount, len(entries),
		logger.FieldSize, len(wasm))
	return &Contract{name: name, rt: r, compiled: compiled, entries: entries}, nil
}

// Name returns the contract name.
func (c *Contract) Name() string { return c.name }

// Entries returns the exported entry point names, sorted.
func (c *Contract) Entries() []string {
	return append([]string(nil), c.entries...)
}

// Call runs entry with input and returns the guest's output. A guest abort
// or trap is reported as errors.CallAborted and leaves the stored receiver
// untouched.
func (c *Contract) Call(ctx context.Context, entry string, input []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	out, err := c.call(ctx, entry, input)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeAborted
	}
	CallsTotal.WithLabelValues(c.name, entry, outcome).Inc()
	CallDuration.WithLabelValues(c.name, entry).
		Observe(float64(time.Since(start).Microseconds()) / 1000)

	c.rt.log.Debugw("Call finished",
		"contract", c.name,
		logger.FieldEntry, entry,
		"outcome", outcome,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return out, err
}

func (c *Contract) call(ctx context.Context, entry string, input []byte) ([]byte, error) {
	f := &frame{entry: entry, input: input}

	rec, err := c.rt.store.Load(ctx, c.name)
	switch {
	case errors.Is(err, state.ErrNotFound):
	case err != nil:
		return nil, errors.MarkAsf(err, errors.StateLoadFailed, "load state of %s", c.name)
	case rec.Format != c.rt.opts.StateFormat.Name():
		return nil, errors.MarkAsf(nil, errors.StateLoadFailed,
			"contract %s state is %s-encoded, host expects %s", c.name, rec.Format, c.rt.opts.StateFormat.Name())
	default:
		f.state, f.hasState = rec.Data, true
	}

	mod, err := c.instance(ctx)
	if err != nil {
		return nil, err
	}
	fn := mod.ExportedFunction(entry)
	if fn == nil || !c.isEntry(entry) {
		return nil, errors.MarkAsf(nil, errors.EntryPointNotFound, "contract %s has no entry point %q", c.name, entry)
	}

	if _, err := fn.Call(withFrame(ctx, f)); err != nil || f.aborted != nil {
		// The instance may be mid-way through anything; start over next call.
		c.reset(ctx)
		reason := f.aborted
		if reason == nil {
			reason = err
		}
		return nil, errors.MarkAsf(reason, errors.CallAborted, "%s.%s", c.name, entry)
	}

	if f.staged != nil {
		err := c.rt.store.Save(ctx, c.name, state.Record{Format: c.rt.opts.StateFormat.Name(), Data: f.staged})
		if err != nil {
			return nil, errors.Wrapf(err, "commit state of %s", c.name)
		}
		StateBytes.WithLabelValues(c.name).Set(float64(len(f.staged)))
	}
	return f.output, nil
}

func (c *Contract) isEntry(name string) bool {
	i := sort.SearchStrings(c.entries, name)
	return i < len(c.entries) && c.entries[i] == name
}

func (c *Contract) instance(ctx context.Context) (api.Module, error) {
	if c.mod != nil && !c.mod.IsClosed() {
		return c.mod, nil
	}
	cfg := wazero.NewModuleConfig().
		WithName(c.name).
		WithStartFunctions("_initialize")
	mod, err := c.rt.runtime.InstantiateModule(ctx, c.compiled, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to instantiate contract %s", c.name)
	}
	c.mod = mod
	return mod, nil
}

func (c *Contract) reset(ctx context.Context) {
	if c.mod == nil {
		return
	}
	if err := c.mod.Close(ctx); err != nil {
		c.rt.log.Warnw("Failed to close contract instance",
			"contract", c.name,
			logger.FieldError, err)
	}
	c.mod = nil
}

// Close releases the contract's instance and compiled code.
func (c *Contract) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(ctx)
	return c.compiled.Close(ctx)
}
