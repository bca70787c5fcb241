package main

import "fmt"

// checkMultiplexer verifies the multiplexer binary is on PATH so a missing
// tool fails before any session is touched. A nil lookPath skips the check.
func checkMultiplexer(kind string, lookPath func(string) (string, error)) error {
	if lookPath == nil {
		return nil
	}
	if kind == "" {
		kind = "screen"
	}
	if _, err := lookPath(kind); err != nil {
		return fmt.Errorf("required tool '%s' not found in PATH; install it with your package manager", kind)
	}
	return nil
}
