package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/callgen/db"
	"github.com/teranos/callgen/errors"
)

// SQLStore is a Store backed by the contract_state table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an opened, migrated database.
func NewSQLStore(database *sql.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) Load(ctx context.Context, contract string) (Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT format, data, revision FROM contract_state WHERE contract = ?`, contract).
		Scan(&rec.Format, &rec.Data, &rec.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.Wrapf(ErrNotFound, "contract %s", contract)
	}
	if err != nil {
		return Record{}, db.Classify(err, "load state of "+contract)
	}
	return rec, nil
}

func (s *SQLStore) Save(ctx context.Context, contract string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_state (contract, format, data)
		VALUES (?, ?, ?)
		ON CONFLICT(contract) DO UPDATE SET
			format = excluded.format,
			data = excluded.data,
			revision = contract_state.revision + 1,
			updated_at = CURRENT_TIMESTAMP`,
		contract, rec.Format, rec.Data)
	return db.Classify(err, "save state of "+contract)
}

// CallRecord is one row of the call log.
type CallRecord struct {
	ID       string
	Contract string
	Entry    string
	Outcome  string
	Error    string
	Duration time.Duration
}

// CallStats summarises the call log of one contract.
type CallStats struct {
	Total     int
	Succeeded int
	Aborted   int
}

// RecordCall appends a call to the call log.
func (s *SQLStore) RecordCall(ctx context.Context, rec CallRecord) error {
	var errMsg *string
	if rec.Error != "" {
		errMsg = &rec.Error
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO call_log (id, contract, entry, outcome, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Contract, rec.Entry, rec.Outcome, errMsg, rec.Duration.Milliseconds())
	return db.Classify(err, "record call")
}

// Stats returns call counts for contract.
func (s *SQLStore) Stats(ctx context.Context, contract string) (CallStats, error) {
	var st CallStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'aborted' THEN 1 ELSE 0 END), 0)
		FROM call_log WHERE contract = ?`, contract).
		Scan(&st.Total, &st.Succeeded, &st.Aborted)
	if err != nil {
		return CallStats{}, errors.Wrapf(err, "call stats of %s", contract)
	}
	return st, nil
}
