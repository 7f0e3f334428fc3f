// Package ledger is the durable bookkeeping layer behind the automation
// loops. It records which articles have been commented on, which headlines
// have been published, and every attempt to participate in an activity, so
// that repeated runs against the live site never act twice on the same item.
//
// A Ledger is constructed explicitly with Open and shared by handle; there is
// no package-level instance. All methods return explicit errors — deciding
// whether a bookkeeping failure is fatal belongs to the caller, and the
// orchestrator deliberately treats it as non-fatal because the external
// action may already have succeeded on the live platform.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Ledger handles all database operations.
type Ledger struct {
	db *sqlx.DB
}

// Open creates or opens the ledger database at path, creating parent
// directories as needed and ensuring the schema exists. Opening an existing
// database is a no-op beyond the create-if-absent checks.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create ledger dir %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	// One connection for the process lifetime; there is a single logical
	// thread of control and sqlite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger %s: %w", path, err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database connection. It must not be called concurrently
// with in-flight operations.
func (l *Ledger) Close() error {
	return l.db.Close()
}
