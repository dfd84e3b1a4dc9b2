package state

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
	"github.com/teranos/callgen/logger"
)

// Host is an in-process dispatch.Host for one call against a contract's
// persisted receiver. Nothing is saved until Commit.
type Host struct {
	ctx      context.Context
	store    Store
	contract string
	input    []byte
	format   format.Format

	output  []byte
	written bool
	aborted error
}

// NewHost prepares a host for a call of contract with the given input.
// Receivers are stored in f.
func NewHost(ctx context.Context, store Store, contract string, input []byte, f format.Format) *Host {
	return &Host{ctx: ctx, store: store, contract: contract, input: input, format: f}
}

func (h *Host) Input() ([]byte, error) { return h.input, nil }

// LoadState decodes the stored receiver into dst. A contract without
// stored state keeps its zero receiver.
func (h *Host) LoadState(dst any) error {
	rec, err := h.store.Load(h.ctx, h.contract)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.Format != h.format.Name() {
		return errors.Newf("contract %s state is %s-encoded, host expects %s", h.contract, rec.Format, h.format.Name())
	}
	return h.format.Unmarshal(rec.Data, dst)
}

func (h *Host) Output(data []byte) error {
	if h.written {
		return errors.New("output already written")
	}
	h.output = append([]byte(nil), data...)
	h.written = true
	return nil
}

func (h *Host) Abort(err error) { h.aborted = err }

// Result returns what the call wrote, or the abort error.
func (h *Host) Result() ([]byte, error) {
	if h.aborted != nil {
		return nil, h.aborted
	}
	return h.output, nil
}

// Commit saves the receiver if the call mutated it and succeeded.
func (h *Host) Commit(cc *dispatch.CallContext) error {
	v, ok := cc.PersistableState()
	if !ok {
		return nil
	}
	data, err := h.format.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode state of %s", h.contract)
	}
	return h.store.Save(h.ctx, h.contract, Record{Format: h.format.Name(), Data: data})
}

// CallLogger is implemented by stores that keep a call log.
type CallLogger interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// Call runs entry of contract through registry, commits the receiver and
// returns the output. The store's call log, if any, records the outcome.
func Call(ctx context.Context, registry *dispatch.Registry, store Store, contract, entry string, input []byte, f format.Format) ([]byte, error) {
	start := time.Now()
	host := NewHost(ctx, store, contract, input, f)

	cc, err := registry.Call(entry, host)
	if err == nil {
		err = host.Commit(cc)
	}
	var out []byte
	if err == nil {
		out, err = host.Result()
	}

	if cl, ok := store.(CallLogger); ok {
		rec := CallRecord{
			ID:       uuid.NewString(),
			Contract: contract,
			Entry:    entry,
			Outcome:  "ok",
			Duration: time.Since(start),
		}
		if err != nil {
			rec.Outcome = "aborted"
			rec.Error = err.Error()
		}
		if logErr := cl.RecordCall(ctx, rec); logErr != nil {
			logger.Warnw("Failed to record call",
				logger.FieldEntry, entry,
				logger.FieldError, logErr)
		}
	}
	return out, err
}
