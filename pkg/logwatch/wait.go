package logwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// waker sleeps for a poll interval but returns early when fsnotify reports
// activity on the watched path. Without a watcher it is a plain
// context-aware sleep, so observable polling behavior is the same either way.
type waker struct {
	watcher *fsnotify.Watcher
}

// newWaker watches target. If the watcher cannot be set up a warning is
// written to out and the waker falls back to polling only.
func newWaker(target string, enabled bool, out io.Writer) *waker {
	if !enabled {
		return &waker{}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(out, "warning: fsnotify: failed to create watcher: %v (falling back to polling)\n", err)
		return &waker{}
	}
	if err := watcher.Add(target); err != nil {
		_ = watcher.Close()
		fmt.Fprintf(out, "warning: fsnotify: failed to watch %s: %v (falling back to polling)\n", target, err)
		return &waker{}
	}
	return &waker{watcher: watcher}
}

// wait blocks for d, until a file system event arrives, or until ctx is done.
func (w *waker) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.watcher != nil {
		events = w.watcher.Events
		errs = w.watcher.Errors
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-events:
	case <-errs:
		// Watcher errors only cost the early wake-up; the next poll still runs.
	}
	return nil
}

func (w *waker) close() {
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

// WaitForFile polls every interval until path exists. It never times out;
// only ctx ends the wait early. When notify is set, creation events in the
// parent directory cut the current interval short.
func WaitForFile(ctx context.Context, path string, interval time.Duration, notify bool, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	var wk *waker
	defer func() {
		if wk != nil {
			wk.close()
		}
	}()

	for {
		_, err := os.Stat(path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if wk == nil {
			wk = newWaker(filepath.Dir(path), notify, out)
		}
		if err := wk.wait(ctx, interval); err != nil {
			return err
		}
	}
}
