package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/callgen/errors"
)

// ErrDatabaseClosed marks operations on a database that was already closed.
var ErrDatabaseClosed = errors.New("database is closed")

// ErrBusy marks writes that timed out waiting for another connection's lock.
var ErrBusy = errors.New("database is locked")

// IsDatabaseClosed reports whether err comes from a closed database,
// either marked by this package or straight from database/sql.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDatabaseClosed) || strings.Contains(err.Error(), "database is closed")
}

// IsBusy reports whether err is SQLite's busy or locked condition.
func IsBusy(err error) bool {
	if errors.Is(err, ErrBusy) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Classify marks closed and busy driver errors with this package's
// sentinels and wraps everything with msg.
func Classify(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case IsDatabaseClosed(err):
		return errors.Mark(errors.Wrap(err, msg), ErrDatabaseClosed)
	case IsBusy(err):
		return errors.WithHint(errors.Mark(errors.Wrap(err, msg), ErrBusy),
			"another process holds the state database; retry when it finishes")
	default:
		return errors.Wrap(err, msg)
	}
}
