// Package main is the entry point for the nexusboot CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"nexusboot/pkg/bootstrap"
)

// exitInterrupted is the conventional status for a process stopped by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode maps a command error to the process status and reports it on w.
func exitCode(err error, w io.Writer) int {
	switch {
	case err == nil:
		return 0
	case bootstrap.IsInterrupted(err):
		fmt.Fprintln(w, "interrupted")
		return exitInterrupted
	default:
		fmt.Fprintf(w, "error: %v\n", err)
		return 1
	}
}
