package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"nexusboot/pkg/eventlog"

	"github.com/spf13/cobra"
)

// historyConfig holds configuration for the history command.
type historyConfig struct {
	run    string
	evType string
	limit  int
	all    bool
	since  time.Duration
	until  time.Duration
}

// newHistoryCmd creates the "nexusboot history" subcommand.
func newHistoryCmd() *cobra.Command {
	var cfg historyConfig

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled bootstrap runs",
		Long: `Displays the events recorded by "nexusboot run", oldest first.
By default only the most recent run is shown; --since and --until select a
time window across all runs instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}

			reader, err := eventlog.NewReader(paths.DBPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer reader.Close()

			return printHistory(cmd.Context(), reader, cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.run, "run", "", "show this run ID (default: the latest run)")
	cmd.Flags().StringVar(&cfg.evType, "type", "", "only show events of this type")
	cmd.Flags().IntVarP(&cfg.limit, "limit", "n", 50, "maximum number of events")
	cmd.Flags().BoolVarP(&cfg.all, "all", "a", false, "show events from every run")
	cmd.Flags().DurationVar(&cfg.since, "since", 0, "only events newer than this (e.g. 24h)")
	cmd.Flags().DurationVar(&cfg.until, "until", 0, "only events older than this (e.g. 1h)")

	return cmd
}

// printHistory writes matching events to w, oldest first.
func printHistory(ctx context.Context, reader *eventlog.Reader, w io.Writer, cfg historyConfig) error {
	windowed := cfg.since > 0 || cfg.until > 0
	runID := cfg.run
	if runID == "" && !cfg.all && !windowed {
		last, err := reader.LastRunID(ctx)
		if err != nil {
			return err
		}
		if last == "" {
			fmt.Fprintln(w, "no runs recorded")
			return nil
		}
		runID = last
	}

	opts := eventlog.QueryOpts{RunID: runID, EventType: cfg.evType, Limit: cfg.limit}
	now := time.Now()
	if cfg.since > 0 {
		after := now.Add(-cfg.since)
		opts.After = &after
	}
	if cfg.until > 0 {
		before := now.Add(-cfg.until)
		opts.Before = &before
	}

	events, err := reader.Query(ctx, opts)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "no events")
		return nil
	}

	theme := DefaultTheme()
	for i := len(events) - 1; i >= 0; i-- {
		fmt.Fprintln(w, formatEvent(theme, events[i]))
	}
	return nil
}

// formatEvent renders one event as "time  run  type  payload".
func formatEvent(theme Theme, e eventlog.Event) string {
	muted := theme.MutedStyle()
	style := theme.EventStyle(e.Type)
	line := muted.Render(e.CreatedAt.Format("2006-01-02 15:04:05")) + "  " + muted.Render(shortID(e.RunID)) + "  "
	if e.Payload == "" {
		return line + style.Render(e.Type)
	}
	return line + style.Render(fmt.Sprintf("%-18s", e.Type)) + "  " + e.Payload
}

// shortID truncates a run ID to its first 8 characters.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
