package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// startupLog provides step-by-step progress output with spinner support.
type startupLog struct {
	w     io.Writer
	isTTY bool
	check string
	mu    sync.Mutex
}

// newStartupLog creates a progress logger that writes to w.
// isTTY controls whether to use animated spinners (true) or static output (false).
func newStartupLog(w io.Writer, isTTY bool) *startupLog {
	return &startupLog{
		w:     w,
		isTTY: isTTY,
		check: DefaultTheme().Check(),
	}
}

// Step prints a completed step with a checkmark.
func (s *startupLog) Step(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", s.check, msg)
}

// StepTimed prints a completed step with a checkmark and duration.
func (s *startupLog) StepTimed(msg string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s (%ds)\n", s.check, msg, int(d.Seconds()))
}

// StartSpinner starts an animated spinner for a wait of unknown length.
// The returned function stops it; ok reports whether the wait completed,
// and only then is the final checkmark printed.
func (s *startupLog) StartSpinner(msg string) func(ok bool) {
	if !s.isTTY {
		s.mu.Lock()
		fmt.Fprintf(s.w, "%s\n", msg)
		s.mu.Unlock()

		return func(ok bool) {
			if !ok {
				return
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			fmt.Fprintf(s.w, "%s %s\n", s.check, msg)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)

	frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
	frameIdx := 0

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%c %s", frames[frameIdx], msg)
				s.mu.Unlock()
				frameIdx = (frameIdx + 1) % len(frames)
			}
		}
	}()

	stopOnce := sync.Once{}
	return func(ok bool) {
		stopOnce.Do(func() {
			cancel()
			wg.Wait()

			s.mu.Lock()
			defer s.mu.Unlock()
			if ok {
				fmt.Fprintf(s.w, "\r%s %s\n", s.check, msg)
			} else {
				fmt.Fprint(s.w, "\r\n")
			}
		})
	}
}

// sleepWithSpinner waits for d under a spinner, returning early if ctx ends.
func (s *startupLog) sleepWithSpinner(ctx context.Context, msg string, d time.Duration, sleep func(context.Context, time.Duration) error) error {
	if d <= 0 {
		return sleep(ctx, d)
	}
	stop := s.StartSpinner(msg)
	err := sleep(ctx, d)
	stop(err == nil)
	return err
}
