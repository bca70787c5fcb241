package mux

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// defaultShell is the interactive shell a new session runs.
const defaultShell = "bash"

// Controller manages the one named session nexusboot owns.
type Controller struct {
	Mux     Multiplexer
	Session string    // session name, e.g. "nexus"
	LogPath string    // file the session output is logged to
	Shell   string    // shell started in the session; "" means bash
	Out     io.Writer // progress and warnings; nil discards
}

// NewController creates a Controller for the given session and log path.
func NewController(m Multiplexer, session, logPath string, out io.Writer) *Controller {
	return &Controller{Mux: m, Session: session, LogPath: logPath, Out: out}
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// Sessions lists the tokens of every running session.
func (c *Controller) Sessions(ctx context.Context) ([]string, error) {
	listing, err := c.Mux.List(ctx)
	if err != nil {
		return nil, err
	}
	return c.Mux.Tokens(listing), nil
}

// Exists reports whether the controller's session is running.
func (c *Controller) Exists(ctx context.Context) (bool, error) {
	tokens, err := c.Sessions(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(tokens, c.matchesSession), nil
}

// matchesSession reports whether token names the controller's session.
// screen tokens carry a "<pid>." prefix; tmux tokens are the bare name.
func (c *Controller) matchesSession(token string) bool {
	if token == c.Session {
		return true
	}
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			return i > 0 && token[i+1:] == c.Session
		}
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return false
}

// KillAll terminates every session the multiplexer lists and returns how
// many were terminated. A failure to quit one session is reported as a
// warning and the remaining sessions are still attempted.
func (c *Controller) KillAll(ctx context.Context) (int, error) {
	fmt.Fprintf(c.out(), "listing %s sessions\n", c.Mux.Kind())
	tokens, err := c.Sessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	killed := 0
	for _, token := range tokens {
		fmt.Fprintf(c.out(), "terminating session %q\n", token)
		if err := c.Mux.Quit(ctx, token); err != nil {
			fmt.Fprintf(c.out(), "warning: failed to terminate session %q: %v\n", token, err)
			continue
		}
		killed++
	}
	return killed, nil
}

// Create starts the session detached and enables logging to LogPath.
// The session is unusable if any step fails, so every failure is returned.
func (c *Controller) Create(ctx context.Context) error {
	shell := c.Shell
	if shell == "" {
		shell = defaultShell
	}
	fmt.Fprintf(c.out(), "creating %s session %q\n", c.Mux.Kind(), c.Session)
	if err := c.Mux.Create(ctx, c.Session, shell); err != nil {
		return fmt.Errorf("create session %q: %w", c.Session, err)
	}
	if err := c.Mux.EnableLog(ctx, c.Session, c.LogPath); err != nil {
		return fmt.Errorf("enable log for session %q: %w", c.Session, err)
	}
	return nil
}

// Send injects text followed by a newline into the session. Delivery is not
// acknowledged.
func (c *Controller) Send(ctx context.Context, text string) error {
	if err := c.Mux.Send(ctx, c.Session, text); err != nil {
		return fmt.Errorf("send to session %q: %w", c.Session, err)
	}
	return nil
}
