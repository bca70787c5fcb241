// Package install starts the Nexus CLI installer inside a session.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultCommand downloads the Nexus CLI install script and pipes it to sh.
const DefaultCommand = "curl https://cli.nexus.xyz/ | sh"

// ErrEmptyCommand is returned when there is no install command to run.
var ErrEmptyCommand = errors.New("install command is empty")

// Sender delivers a line of input into the session.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Launcher types the install command into a session.
type Launcher struct {
	Sender  Sender
	Command string
	Out     io.Writer
}

// Launch sends the install command once.
func (l *Launcher) Launch(ctx context.Context) error {
	if l.Command == "" {
		return ErrEmptyCommand
	}
	if l.Out != nil {
		fmt.Fprintf(l.Out, "running installer: %s\n", l.Command)
	}
	if err := l.Sender.Send(ctx, l.Command); err != nil {
		return fmt.Errorf("launch installer: %w", err)
	}
	return nil
}
