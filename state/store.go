// Package state persists contract receivers between calls and provides a
// native dispatch.Host that reads and writes them.
package state

import (
	"context"
	"sync"

	"github.com/teranos/callgen/errors"
)

// ErrNotFound is returned by Load when a contract has no persisted state.
var ErrNotFound = errors.New("contract state not found")

// Record is one persisted receiver.
type Record struct {
	// Format names the encoding of Data.
	Format   string
	Data     []byte
	Revision int64
}

// Store loads and saves receivers keyed by contract name.
type Store interface {
	Load(ctx context.Context, contract string) (Record, error)
	Save(ctx context.Context, contract string, rec Record) error
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Load(ctx context.Context, contract string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[contract]
	if !ok {
		return Record{}, errors.Wrapf(ErrNotFound, "contract %s", contract)
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, contract string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Revision = s.records[contract].Revision + 1
	rec.Data = append([]byte(nil), rec.Data...)
	s.records[contract] = rec
	return nil
}
