package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Event types recorded during a bootstrap run.
const (
	TypeRunStarted        = "run_started"
	TypeSessionsKilled    = "sessions_killed"
	TypeSessionCreated    = "session_created"
	TypeInstallerLaunched = "installer_launched"
	TypeRuleMatched       = "rule_matched"
	TypeRunFinished       = "run_finished"
	TypeRunFailed         = "run_failed"
)

// SchemaDDL creates the journal table. Safe to execute repeatedly.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    payload TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
`

// NewRunID returns a fresh identifier for one bootstrap run.
func NewRunID() string {
	return uuid.New().String()
}

// Journal appends run events to a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path with WAL mode and a
// 5-second busy timeout, and applies the schema.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		SchemaDDL,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal %s: %w", path, err)
		}
	}

	return &Journal{db: db}, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends one event.
func (j *Journal) Record(ctx context.Context, runID, evType, payload string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (run_id, type, payload) VALUES (?, ?, ?)`,
		runID, evType, payload,
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", evType, err)
	}
	return nil
}
