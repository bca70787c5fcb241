// Package eventlog records what each bootstrap run did in a SQLite journal
// and reads it back for the history command.
package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Event represents a single journal entry.
type Event struct {
	ID        int64
	RunID     string
	Type      string
	Payload   string
	CreatedAt time.Time
}

// QueryOpts specifies filter criteria for querying events.
type QueryOpts struct {
	// RunID filters events to a single run.
	RunID string

	// EventType filters to a specific event type (e.g., "rule_matched").
	EventType string

	// After filters events created after this time (inclusive)
	After *time.Time

	// Before filters events created before this time (inclusive)
	Before *time.Time

	// Limit restricts the number of results (0 = no limit)
	Limit int
}

// Reader provides read-only access to the journal.
type Reader struct {
	db *sql.DB
}

// NewReader opens the journal in read-only mode.
// Returns an error if the database doesn't exist or cannot be opened.
func NewReader(dbPath string) (*Reader, error) {
	// Verify database file exists before attempting to open
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Reader{db: db}, nil
}

// Close releases the database connection.
// Safe to call multiple times.
func (r *Reader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Query retrieves events matching opts, newest first.
// Returns an empty slice if no events match.
func (r *Reader) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	query, args := buildQuery(opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var createdAtStr string

		if err := rows.Scan(&e.ID, &e.RunID, &e.Type, &e.Payload, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		if createdAtStr != "" {
			parsedTime, err := time.Parse(time.DateTime, createdAtStr)
			if err != nil {
				parsedTime, err = time.Parse(time.RFC3339, createdAtStr)
				if err != nil {
					return nil, fmt.Errorf("parse created_at: %w", err)
				}
			}
			e.CreatedAt = parsedTime
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// LastRunID returns the run ID of the most recently recorded event, or ""
// if the journal is empty.
func (r *Reader) LastRunID(ctx context.Context) (string, error) {
	var runID string
	err := r.db.QueryRowContext(ctx, "SELECT run_id FROM events ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last run: %w", err)
	}
	return runID, nil
}

// buildQuery constructs the SQL query and arguments from QueryOpts.
func buildQuery(opts QueryOpts) (string, []any) {
	var conditions []string
	var args []any

	query := "SELECT id, run_id, type, payload, created_at FROM events WHERE 1=1"

	if opts.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, opts.RunID)
	}

	if opts.EventType != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, opts.EventType)
	}

	if opts.After != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.After.UTC().Format(time.DateTime))
	}

	if opts.Before != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, opts.Before.UTC().Format(time.DateTime))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return query, args
}

// HomeDir is the per-user state directory, relative to the user's home.
const HomeDir = ".nexusboot"

// DBFile is the journal file name inside the state directory.
const DBFile = "events.db"
