// Package mux drives an external terminal multiplexer (GNU screen or tmux)
// through its command-line interface.
//
// A Multiplexer translates the handful of operations nexusboot needs into
// multiplexer commands. Controller binds a Multiplexer to one session name
// and log path and implements the teardown/create/send sequence on top.
package mux

import (
	"context"
	"errors"
	"fmt"
)

// Supported multiplexer kinds.
const (
	KindScreen = "screen"
	KindTmux   = "tmux"
)

// ErrUnknownMultiplexer is returned by New for an unsupported kind.
var ErrUnknownMultiplexer = errors.New("unknown multiplexer")

// Multiplexer is the command surface of a terminal multiplexer.
type Multiplexer interface {
	// Kind returns the multiplexer name ("screen" or "tmux").
	Kind() string

	// List returns the raw session listing. A non-zero exit status from the
	// multiplexer is tolerated; an error means the command could not run.
	List(ctx context.Context) (string, error)

	// Tokens extracts the session tokens from List output, in order.
	Tokens(listing string) []string

	// Quit terminates the session identified by token.
	Quit(ctx context.Context, token string) error

	// Create starts a detached session running shell.
	Create(ctx context.Context, name, shell string) error

	// EnableLog makes the session append its output to logPath.
	EnableLog(ctx context.Context, name, logPath string) error

	// Send injects text literally into the session input, followed by a newline.
	Send(ctx context.Context, name, text string) error
}

// New returns the Multiplexer for kind, running commands through runner.
func New(kind string, runner CmdRunner) (Multiplexer, error) {
	if runner == nil {
		runner = &ExecRunner{}
	}
	switch kind {
	case KindScreen, "":
		return &Screen{Runner: runner}, nil
	case KindTmux:
		return &Tmux{Runner: runner}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMultiplexer, kind)
	}
}
