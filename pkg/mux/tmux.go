package mux

import (
	"context"
	"fmt"
	"strings"
)

// Tmux drives tmux. Session output is captured with pipe-pane, tmux's
// counterpart of screen's logfile.
type Tmux struct {
	Runner CmdRunner
}

// Kind implements Multiplexer.
func (t *Tmux) Kind() string { return KindTmux }

// List prints one session name per line. tmux exits non-zero with "no server
// running" when there are no sessions; that is reported as an empty listing.
func (t *Tmux) List(ctx context.Context) (string, error) {
	out, err := t.Runner.Run(ctx, "tmux", "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if isExitError(err) {
			return "", nil
		}
		return "", fmt.Errorf("tmux list-sessions: %w", err)
	}
	return out, nil
}

// Tokens returns every non-empty line of the listing.
func (t *Tmux) Tokens(listing string) []string {
	var tokens []string
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens
}

// Quit implements Multiplexer.
func (t *Tmux) Quit(ctx context.Context, token string) error {
	if _, err := t.Runner.Run(ctx, "tmux", "kill-session", "-t", token); err != nil {
		return fmt.Errorf("tmux kill-session %s: %w", token, err)
	}
	return nil
}

// Create implements Multiplexer.
func (t *Tmux) Create(ctx context.Context, name, shell string) error {
	if _, err := t.Runner.Run(ctx, "tmux", "new-session", "-d", "-s", name, shell); err != nil {
		return fmt.Errorf("tmux new-session %s: %w", name, err)
	}
	return nil
}

// EnableLog pipes the pane output into logPath, appending.
func (t *Tmux) EnableLog(ctx context.Context, name, logPath string) error {
	if _, err := t.Runner.Run(ctx, "tmux", "pipe-pane", "-o", "-t", name, "cat >> "+escapeForShell(logPath)); err != nil {
		return fmt.Errorf("tmux pipe-pane %s: %w", name, err)
	}
	return nil
}

// Send types text literally (-l) and presses Enter separately, so key names
// inside text are never interpreted.
func (t *Tmux) Send(ctx context.Context, name, text string) error {
	if _, err := t.Runner.Run(ctx, "tmux", "send-keys", "-t", name, "-l", text); err != nil {
		return fmt.Errorf("tmux send-keys -l to %s: %w", name, err)
	}
	if _, err := t.Runner.Run(ctx, "tmux", "send-keys", "-t", name, "Enter"); err != nil {
		return fmt.Errorf("tmux send-keys Enter to %s: %w", name, err)
	}
	return nil
}

// escapeForShell wraps s in single quotes, escaping embedded single quotes.
func escapeForShell(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
