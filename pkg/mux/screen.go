package mux

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// screenTokenPattern matches a "<pid>.<name>" session token in screen -ls output.
var screenTokenPattern = regexp.MustCompile(`(\d+\.\S+)`)

// Screen drives GNU screen.
type Screen struct {
	Runner CmdRunner
}

// Kind implements Multiplexer.
func (s *Screen) Kind() string { return KindScreen }

// List runs screen -ls. screen exits non-zero both when there are no
// sessions and on most versions even when there are, so the output is
// returned regardless of exit status.
func (s *Screen) List(ctx context.Context) (string, error) {
	out, err := s.Runner.Run(ctx, "screen", "-ls")
	if err != nil && !isExitError(err) {
		return "", fmt.Errorf("screen -ls: %w", err)
	}
	return out, nil
}

// Tokens returns the first "<digits>.<name>" token on each line of a
// screen -ls listing. Lines without a token are skipped.
func (s *Screen) Tokens(listing string) []string {
	var tokens []string
	for _, line := range strings.Split(listing, "\n") {
		if tok := screenTokenPattern.FindString(strings.TrimSpace(line)); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Quit implements Multiplexer.
func (s *Screen) Quit(ctx context.Context, token string) error {
	if _, err := s.Runner.Run(ctx, "screen", "-S", token, "-X", "quit"); err != nil {
		return fmt.Errorf("screen quit %s: %w", token, err)
	}
	return nil
}

// Create implements Multiplexer.
func (s *Screen) Create(ctx context.Context, name, shell string) error {
	if _, err := s.Runner.Run(ctx, "screen", "-S", name, "-dm", shell); err != nil {
		return fmt.Errorf("screen create %s: %w", name, err)
	}
	return nil
}

// EnableLog sets the session logfile and turns logging on.
func (s *Screen) EnableLog(ctx context.Context, name, logPath string) error {
	if _, err := s.Runner.Run(ctx, "screen", "-S", name, "-X", "logfile", logPath); err != nil {
		return fmt.Errorf("screen logfile %s: %w", name, err)
	}
	if _, err := s.Runner.Run(ctx, "screen", "-S", name, "-X", "log", "on"); err != nil {
		return fmt.Errorf("screen log on %s: %w", name, err)
	}
	return nil
}

// Send stuffs text and a newline into the session input.
func (s *Screen) Send(ctx context.Context, name, text string) error {
	if _, err := s.Runner.Run(ctx, "screen", "-S", name, "-X", "stuff", text+"\n"); err != nil {
		return fmt.Errorf("screen stuff %s: %w", name, err)
	}
	return nil
}
