package main

import (
	"fmt"
	"os"
	"os/exec"

	"nexusboot/internal/version"
	"nexusboot/pkg/mux"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// deps holds the collaborators every subcommand shares. Tests swap them for
// fakes through newRootCmdWith.
type deps struct {
	runner   mux.CmdRunner
	lookPath func(string) (string, error)
	isTTY    func() bool
}

func defaultDeps() *deps {
	return &deps{
		runner:   &mux.ExecRunner{},
		lookPath: exec.LookPath,
		isTTY:    isStdoutTTY,
	}
}

// globalOpts are the persistent flags shared by all subcommands.
type globalOpts struct {
	configPath string
	session    string
	logFile    string
	mux        string
}

// newRootCmd creates the root nexusboot command with all subcommands attached.
func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultDeps())
}

func newRootCmdWith(d *deps) *cobra.Command {
	var g globalOpts

	cmd := &cobra.Command{
		Use:   "nexusboot",
		Short: "Unattended Nexus CLI installer",
		Long: "nexusboot installs the Nexus prover CLI inside a detached terminal\n" +
			"multiplexer session, answers its prompts and exits once the prover\n" +
			"starts fetching tasks.",
		Version:       fmt.Sprintf("nexusboot %s", version.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	pf.StringVarP(&g.session, "session", "s", "", "session name (default \"nexus\")")
	pf.StringVar(&g.logFile, "log-file", "", "session log path (default \"/tmp/nexus_screen.log\")")
	pf.StringVar(&g.mux, "mux", "", "terminal multiplexer: screen or tmux (default \"screen\")")

	cmd.AddCommand(
		newRunCmd(&g, d),
		newKillCmd(&g, d),
		newSessionsCmd(&g, d),
		newCreateCmd(&g, d),
		newSendCmd(&g, d),
		newWatchCmd(&g, d),
		newConfigCmd(&g),
		newHistoryCmd(),
	)

	return cmd
}

func isStdoutTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
