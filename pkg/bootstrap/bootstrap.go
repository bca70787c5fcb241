// Package bootstrap sequences a full unattended install: tear down every
// multiplexer session, wait for the multiplexer to settle, create a fresh
// logged session, start the installer in it and watch the log until the
// installer reports it is fetching work.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"nexusboot/pkg/eventlog"
	"nexusboot/pkg/logwatch"
)

// Sessions is the part of mux.Controller the bootstrap drives.
type Sessions interface {
	KillAll(ctx context.Context) (int, error)
	Create(ctx context.Context) error
}

// Launcher starts the installer.
type Launcher interface {
	Launch(ctx context.Context) error
}

// Monitor watches the session log.
type Monitor interface {
	Run(ctx context.Context) (logwatch.Result, error)
}

// Recorder journals run events. Record failures never abort a run.
type Recorder interface {
	Record(ctx context.Context, runID, evType, payload string) error
}

// Bootstrapper runs the install sequence once.
type Bootstrapper struct {
	Sessions Sessions
	Launcher Launcher
	Monitor  Monitor
	Settle   time.Duration // pause between teardown and create

	RunID    string
	Recorder Recorder  // optional
	Out      io.Writer // warnings; nil discards

	// Sleep waits for d or until ctx is done. nil means a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnStep is called after each completed step with a short description.
	OnStep func(step string)
}

// Run executes the sequence. It returns the monitor's result when the
// completion marker is seen; any setup failure is returned unrecovered.
func (b *Bootstrapper) Run(ctx context.Context) (logwatch.Result, error) {
	b.record(ctx, eventlog.TypeRunStarted, "")

	res, err := b.run(ctx)
	if err != nil {
		b.record(ctx, eventlog.TypeRunFailed, err.Error())
		return res, err
	}
	b.record(ctx, eventlog.TypeRunFinished, res.Rule)
	return res, nil
}

func (b *Bootstrapper) run(ctx context.Context) (logwatch.Result, error) {
	killed, err := b.Sessions.KillAll(ctx)
	if err != nil {
		return logwatch.Result{}, fmt.Errorf("terminate sessions: %w", err)
	}
	b.record(ctx, eventlog.TypeSessionsKilled, fmt.Sprint(killed))
	b.step(fmt.Sprintf("Terminated %d existing session(s)", killed))

	if err := b.sleep(ctx, b.Settle); err != nil {
		return logwatch.Result{}, err
	}

	if err := b.Sessions.Create(ctx); err != nil {
		return logwatch.Result{}, err
	}
	b.record(ctx, eventlog.TypeSessionCreated, "")
	b.step("Session created with logging enabled")

	if err := b.Launcher.Launch(ctx); err != nil {
		return logwatch.Result{}, err
	}
	b.record(ctx, eventlog.TypeInstallerLaunched, "")
	b.step("Installer launched")

	res, err := b.Monitor.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("monitor log: %w", err)
	}
	b.step(fmt.Sprintf("Installer finished (%s)", res.Rule))
	return res, nil
}

func (b *Bootstrapper) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		return b.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (b *Bootstrapper) step(msg string) {
	if b.OnStep != nil {
		b.OnStep(msg)
	}
}

func (b *Bootstrapper) record(ctx context.Context, evType, payload string) {
	if b.Recorder == nil {
		return
	}
	// A canceled run is still journaled.
	if err := b.Recorder.Record(context.WithoutCancel(ctx), b.RunID, evType, payload); err != nil && b.Out != nil {
		fmt.Fprintf(b.Out, "warning: journal: %v\n", err)
	}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsInterrupted reports whether err came from the run being canceled.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
