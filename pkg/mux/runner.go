package mux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CmdRunner abstracts command execution for testability.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExitError reports a command that ran but exited with a non-zero status.
// Output carries whatever the command printed before exiting.
type ExitError struct {
	Cmd    string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Cmd, e.Code, e.Output)
}

// ExecRunner implements CmdRunner using os/exec.
type ExecRunner struct{}

// Run executes a command and returns its combined output. A non-zero exit
// status is returned as *ExitError; any other error means the command could
// not be started at all.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &ExitError{
				Cmd:    name + " " + strings.Join(args, " "),
				Code:   exitErr.ExitCode(),
				Output: output,
			}
		}
		return output, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return output, nil
}

// isExitError reports whether err is a non-zero exit rather than a failure
// to run the command.
func isExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
