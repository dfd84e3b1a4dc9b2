package testing

import (
	"database/sql"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/callgen/db"
)

// StateDB returns an in-memory SQLite database with the contract state
// schema applied. It is closed when the test ends.
func StateDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenWithMigrations(":memory:", zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("open state db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}
