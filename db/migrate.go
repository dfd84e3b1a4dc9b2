package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/callgen/errors"
)

//go:embed sqlite/migrations/*.sql
var migrationFS embed.FS

// migration is one embedded schema step. Versions are the numeric file
// prefix; 000 creates schema_migrations itself.
type migration struct {
	version string
	file    string
}

func migrations() ([]migration, error) {
	files, err := fs.Glob(migrationFS, "sqlite/migrations/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "list migrations")
	}
	sort.Strings(files)

	ms := make([]migration, 0, len(files))
	for _, f := range files {
		base := f[strings.LastIndexByte(f, '/')+1:]
		version, _, ok := strings.Cut(base, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", base)
		}
		ms = append(ms, migration{version: version, file: f})
	}
	return ms, nil
}

// Applied returns the migration versions recorded in schema_migrations, in
// order. A database that was never migrated has none.
func Applied(db *sql.DB) ([]string, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`).Scan(&n)
	if err != nil {
		return nil, errors.Wrap(err, "inspect schema")
	}
	if n == 0 {
		return nil, nil
	}

	rows, err := db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema version")
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Migrate applies every embedded migration not yet recorded, each in its
// own transaction. If logger is nil it runs silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	ms, err := migrations()
	if err != nil {
		return err
	}
	applied, err := Applied(db)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	ran := 0
	for _, m := range ms {
		if done[m.version] {
			continue
		}
		if len(done) == 0 && m.version != "000" {
			return errors.Newf("schema_migrations missing before %s", m.file)
		}
		if err := apply(db, m); err != nil {
			return err
		}
		done[m.version] = true
		ran++
		if logger != nil {
			logger.Debugw("Applied migration", "version", m.version, "file", m.file)
		}
	}

	if logger != nil && ran > 0 {
		logger.Infow("State schema migrated", "applied", ran, "total", len(ms))
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	stmt, err := migrationFS.ReadFile(m.file)
	if err != nil {
		return errors.Wrapf(err, "read %s", m.file)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin %s", m.file)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(stmt)); err != nil {
		return errors.Wrapf(err, "execute %s", m.file)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
		return errors.Wrapf(err, "record %s", m.file)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.file)
}
