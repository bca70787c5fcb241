package logwatch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes caps how much unterminated text is buffered. Longer runs are
// handed out as a line of their own.
const maxLineBytes = 64 << 10

// tailer reads lines appended to a file. '\n', '\r' and "\r\n" all end a
// line, so carriage-return redraws split into separate lines. The
// unterminated tail of the file is reported as partial text each time it
// grows, because interactive prompts never end in a newline.
type tailer struct {
	path     string
	f        *os.File
	r        *bufio.Reader
	offset   int64
	pending  []byte
	reported int  // len(pending) when it was last returned as partial
	skipLF   bool // last break was '\r'; a following '\n' belongs to it
}

// openTailer opens path positioned at its current end so only later appends
// are seen.
func openTailer(path string) (*tailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("seek to end of %s: %w", path, err)
	}
	return &tailer{path: path, f: f, r: bufio.NewReader(f), offset: offset}, nil
}

func (t *tailer) close() error {
	return t.f.Close()
}

// next returns the next piece of text. complete is true for a terminated
// line and false for the unterminated tail, which is returned only when it
// has grown since the last call. ok is false when there is nothing new.
func (t *tailer) next() (text string, complete, ok bool, err error) {
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", false, false, fmt.Errorf("read %s: %w", t.path, err)
			}
			if len(t.pending) > t.reported {
				t.reported = len(t.pending)
				return decodeLine(t.pending), false, true, nil
			}
			return "", false, false, t.checkReplaced()
		}
		t.offset++

		if t.skipLF {
			t.skipLF = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case '\r':
			t.skipLF = true
			return t.flush(), true, true, nil
		case '\n':
			return t.flush(), true, true, nil
		}

		t.pending = append(t.pending, b)
		if len(t.pending) >= maxLineBytes {
			return t.flush(), true, true, nil
		}
	}
}

func (t *tailer) flush() string {
	line := decodeLine(t.pending)
	t.pending = t.pending[:0]
	t.reported = 0
	return line
}

// checkReplaced restarts from the beginning when the log was truncated below
// what has been consumed, or when path now names a different file. In both
// cases everything in it was written after the monitor started.
func (t *tailer) checkReplaced() error {
	cur, err := t.f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	// A missing path means the log is between removal and recreation; keep
	// the old file until the new one shows up.
	if onDisk, err := os.Stat(t.path); err == nil && !os.SameFile(cur, onDisk) {
		f, err := os.Open(t.path)
		if err != nil {
			return fmt.Errorf("reopen %s: %w", t.path, err)
		}
		_ = t.f.Close()
		t.f = f
		t.restart()
		return nil
	}

	if cur.Size() >= t.offset {
		return nil
	}
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", t.path, err)
	}
	t.restart()
	return nil
}

func (t *tailer) restart() {
	t.r.Reset(t.f)
	t.offset = 0
	t.pending = t.pending[:0]
	t.reported = 0
	t.skipLF = false
}

// decodeLine drops invalid UTF-8.
func decodeLine(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}
