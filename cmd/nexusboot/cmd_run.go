package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"nexusboot/pkg/bootstrap"
	"nexusboot/pkg/config"
	"nexusboot/pkg/eventlog"
	"nexusboot/pkg/install"
	"nexusboot/pkg/logwatch"
	"nexusboot/pkg/mux"

	"github.com/spf13/cobra"
)

// runOpts holds the flags only "nexusboot run" accepts.
type runOpts struct {
	settle     time.Duration
	installCmd string
	noJournal  bool
}

// runConfig holds injectable dependencies for a bootstrap run.
type runConfig struct {
	cfg      *config.Config
	ctrl     *mux.Controller
	recorder bootstrap.Recorder // nil disables the journal
	runID    string
	w        io.Writer
	isTTY    bool
	sleep    func(context.Context, time.Duration) error // nil means bootstrap.SleepContext
	onReady  func()                                     // called once the log is being tailed
}

// newRunCmd creates the "nexusboot run" subcommand.
func newRunCmd(g *globalOpts, d *deps) *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Install the Nexus CLI and wait until it starts proving",
		Long: `Terminates every existing session, waits for the multiplexer to settle,
creates a fresh logged session, runs the installer in it and follows the
session log. Known prompts are answered automatically. The command exits
0 once the prover reports it is fetching a task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("settle") {
				cfg.SetSettle(opts.settle)
			}
			if cmd.Flags().Changed("install-cmd") {
				cfg.InstallCommand = opts.installCmd
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			ctrl, err := newController(cfg, d, w)
			if err != nil {
				return err
			}

			rc := &runConfig{
				cfg:   cfg,
				ctrl:  ctrl,
				runID: eventlog.NewRunID(),
				w:     w,
				isTTY: d.isTTY != nil && d.isTTY(),
			}

			if !opts.noJournal {
				j, closeJournal := openJournal(w)
				defer closeJournal()
				if j != nil {
					rc.recorder = j
				}
			}

			_, err = runBootstrap(cmd.Context(), rc)
			return err
		},
	}

	cmd.Flags().DurationVar(&opts.settle, "settle", config.DefaultSettle, "pause between teardown and session creation")
	cmd.Flags().StringVar(&opts.installCmd, "install-cmd", install.DefaultCommand, "command typed into the session to install the CLI")
	cmd.Flags().BoolVar(&opts.noJournal, "no-journal", false, "do not record this run in the history journal")

	return cmd
}

// openJournal opens the run journal. Failure is reported as a warning and
// yields a nil journal; the run proceeds without history.
func openJournal(w io.Writer) (*eventlog.Journal, func()) {
	paths, err := ResolvePaths()
	if err != nil {
		DefaultTheme().Warnf(w, "journal disabled: %v", err)
		return nil, func() {}
	}
	j, err := eventlog.Open(paths.DBPath)
	if err != nil {
		DefaultTheme().Warnf(w, "journal disabled: %v", err)
		return nil, func() {}
	}
	return j, func() { _ = j.Close() }
}

// runBootstrap wires the controller, launcher and monitor into a
// Bootstrapper and runs it once.
func runBootstrap(ctx context.Context, rc *runConfig) (logwatch.Result, error) {
	start := time.Now()
	log := newStartupLog(rc.w, rc.isTTY)

	mon := newMonitor(rc.cfg, rc.ctrl, rc.w)
	mon.OnReady = rc.onReady
	mon.OnMatch = func(r logwatch.Rule, _ string) {
		if rc.recorder == nil {
			return
		}
		if err := rc.recorder.Record(context.WithoutCancel(ctx), rc.runID, eventlog.TypeRuleMatched, r.Name); err != nil {
			DefaultTheme().Warnf(rc.w, "journal: %v", err)
		}
	}

	sleep := rc.sleep
	if sleep == nil {
		sleep = bootstrap.SleepContext
	}

	b := &bootstrap.Bootstrapper{
		Sessions: rc.ctrl,
		Launcher: &install.Launcher{Sender: rc.ctrl, Command: rc.cfg.InstallCommand, Out: rc.w},
		Monitor:  mon,
		Settle:   rc.cfg.SettleDuration(),
		RunID:    rc.runID,
		Recorder: rc.recorder,
		Out:      rc.w,
		OnStep:   log.Step,
		Sleep: func(ctx context.Context, d time.Duration) error {
			msg := fmt.Sprintf("Waiting %v for %s to settle", d, rc.cfg.Multiplexer)
			return log.sleepWithSpinner(ctx, msg, d, sleep)
		},
	}

	res, err := b.Run(ctx)
	if err != nil {
		return res, err
	}
	log.StepTimed("Nexus prover is fetching tasks", time.Since(start))
	return res, nil
}
