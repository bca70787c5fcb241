package eventlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nexusboot/pkg/eventlog"
)

// setupJournal creates a journal with two runs worth of events.
func setupJournal(t *testing.T) (dbPath, firstRun, secondRun string) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), "nested", "events.db")
	j, err := eventlog.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer j.Close()

	firstRun = eventlog.NewRunID()
	secondRun = eventlog.NewRunID()

	ctx := context.Background()
	events := []struct {
		run     string
		evType  string
		payload string
	}{
		{firstRun, eventlog.TypeRunStarted, "screen nexus"},
		{firstRun, eventlog.TypeSessionsKilled, "1"},
		{firstRun, eventlog.TypeRunFailed, "create session: exit status 1"},
		{secondRun, eventlog.TypeRunStarted, "screen nexus"},
		{secondRun, eventlog.TypeRuleMatched, "existing-account"},
		{secondRun, eventlog.TypeRuleMatched, "task-fetch"},
		{secondRun, eventlog.TypeRunFinished, "task-fetch"},
	}
	for _, e := range events {
		if err := j.Record(ctx, e.run, e.evType, e.payload); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	return dbPath, firstRun, secondRun
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath, _, _ := setupJournal(t)

	j, err := eventlog.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer j.Close()
}

func TestNewRunID_Unique(t *testing.T) {
	a, b := eventlog.NewRunID(), eventlog.NewRunID()
	if a == "" || a == b {
		t.Errorf("run IDs not unique: %q %q", a, b)
	}
}

func TestNewReader_MissingDB(t *testing.T) {
	reader, err := eventlog.NewReader("/nonexistent/path.db")
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	if reader != nil {
		reader.Close()
		t.Fatal("expected nil reader for missing database")
	}
}

func TestQuery(t *testing.T) {
	dbPath, firstRun, secondRun := setupJournal(t)

	reader, err := eventlog.NewReader(dbPath)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	ctx := context.Background()

	t.Run("all events newest first", func(t *testing.T) {
		events, err := reader.Query(ctx, eventlog.QueryOpts{})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 7 {
			t.Fatalf("expected 7 events, got %d", len(events))
		}
		if events[0].Type != eventlog.TypeRunFinished {
			t.Errorf("newest event = %s, want %s", events[0].Type, eventlog.TypeRunFinished)
		}
		for i := 1; i < len(events); i++ {
			if events[i].ID >= events[i-1].ID {
				t.Errorf("events not in descending order at %d", i)
			}
		}
		if events[0].CreatedAt.IsZero() {
			t.Error("expected created_at to be parsed")
		}
	})

	t.Run("filter by run", func(t *testing.T) {
		events, err := reader.Query(ctx, eventlog.QueryOpts{RunID: firstRun})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events for first run, got %d", len(events))
		}
		for _, e := range events {
			if e.RunID != firstRun {
				t.Errorf("event from run %s leaked into filter", e.RunID)
			}
		}
	})

	t.Run("filter by run and type", func(t *testing.T) {
		events, err := reader.Query(ctx, eventlog.QueryOpts{RunID: secondRun, EventType: eventlog.TypeRuleMatched})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 rule matches, got %d", len(events))
		}
		if events[0].Payload != "task-fetch" || events[1].Payload != "existing-account" {
			t.Errorf("payloads = %q, %q", events[0].Payload, events[1].Payload)
		}
	})

	t.Run("limit", func(t *testing.T) {
		events, err := reader.Query(ctx, eventlog.QueryOpts{Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 2 {
			t.Errorf("expected 2 events, got %d", len(events))
		}
	})

	t.Run("time window", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		events, err := reader.Query(ctx, eventlog.QueryOpts{After: &future})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 0 {
			t.Errorf("expected no events after %v, got %d", future, len(events))
		}
	})

	t.Run("last run", func(t *testing.T) {
		got, err := reader.LastRunID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != secondRun {
			t.Errorf("LastRunID = %q, want %q", got, secondRun)
		}
	})
}

func TestLastRunID_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	j, err := eventlog.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	j.Close()

	reader, err := eventlog.NewReader(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	got, err := reader.LastRunID(context.Background())
	if err != nil || got != "" {
		t.Errorf("LastRunID() = %q, %v; want empty", got, err)
	}
}
