package logwatch

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type piece struct {
	text     string
	complete bool
}

// drain reads until the tailer reports nothing new twice in a row.
func drain(t *testing.T, tl *tailer) []piece {
	t.Helper()
	var got []piece
	idle := 0
	for idle < 2 {
		text, complete, ok, err := tl.next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			idle++
			continue
		}
		idle = 0
		got = append(got, piece{text, complete})
	}
	return got
}

func newTestTailer(t *testing.T, initial string) (*tailer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexus.log")
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		t.Fatal(err)
	}
	tl, err := openTailer(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tl.close() })
	return tl, path
}

func TestTailerLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []piece
	}{
		{"newline", "one\ntwo\n", []piece{{"one", true}, {"two", true}}},
		{"crlf is one break", "one\r\ntwo\r\n", []piece{{"one", true}, {"two", true}}},
		{"lone carriage returns", "a\rprompt\rprompt\n", []piece{{"a", true}, {"prompt", true}, {"prompt", true}}},
		{"blank line kept", "a\r\rb\n", []piece{{"a", true}, {"", true}, {"b", true}}},
		{"unterminated tail", "done\n(y/n) ", []piece{{"done", true}, {"(y/n) ", false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, path := newTestTailer(t, "stale\n")
			appendLog(t, path, tt.data)
			if got := drain(t, tl); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTailerCRLFSplitAcrossReads(t *testing.T) {
	tl, path := newTestTailer(t, "")

	appendLog(t, path, "progress 50%\r")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"progress 50%", true}}) {
		t.Fatalf("got %+v", got)
	}
	appendLog(t, path, "\nnext\n")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"next", true}}) {
		t.Errorf("the \\n completing \\r\\n must not add a blank line, got %+v", got)
	}
}

func TestTailerPartialReportedOncePerGrowth(t *testing.T) {
	tl, path := newTestTailer(t, "")

	appendLog(t, path, "abc")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"abc", false}}) {
		t.Fatalf("got %+v", got)
	}
	if got := drain(t, tl); len(got) != 0 {
		t.Fatalf("unchanged tail reported again: %+v", got)
	}

	appendLog(t, path, "def")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"abcdef", false}}) {
		t.Fatalf("got %+v", got)
	}

	appendLog(t, path, "\n")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"abcdef", true}}) {
		t.Errorf("got %+v", got)
	}
}

func TestTailerBoundsUnterminatedText(t *testing.T) {
	tl, path := newTestTailer(t, "")

	appendLog(t, path, strings.Repeat("#", 3*maxLineBytes+10))
	got := drain(t, tl)
	if len(got) != 4 {
		t.Fatalf("expected 3 capped lines and a partial tail, got %d pieces", len(got))
	}
	for i, p := range got[:3] {
		if !p.complete || len(p.text) != maxLineBytes {
			t.Errorf("piece %d: complete=%v len=%d", i, p.complete, len(p.text))
		}
	}
	if last := got[3]; last.complete || len(last.text) != 10 {
		t.Errorf("tail: complete=%v len=%d", last.complete, len(last.text))
	}
	if len(tl.pending) >= maxLineBytes {
		t.Errorf("pending grew to %d bytes", len(tl.pending))
	}
}

func TestTailerFollowsReplacedFile(t *testing.T) {
	tl, path := newTestTailer(t, "short\n")

	// The replacement is longer than the old offset, so a size check alone
	// would resume in the middle of it.
	staging := path + ".tmp"
	if err := os.WriteFile(staging, []byte("a completely new first line\nsecond\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(staging, path); err != nil {
		t.Fatal(err)
	}

	want := []piece{{"a completely new first line", true}, {"second", true}}
	if got := drain(t, tl); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTailerKeepsFileWhileMissing(t *testing.T) {
	tl, path := newTestTailer(t, "")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if got := drain(t, tl); len(got) != 0 {
		t.Errorf("got %+v from a removed log", got)
	}

	appendLog(t, path, "recreated\n")
	if got := drain(t, tl); !reflect.DeepEqual(got, []piece{{"recreated", true}}) {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeLine(t *testing.T) {
	if got := decodeLine([]byte("ok\xff\xfe!")); got != "ok!" {
		t.Errorf("decodeLine = %q", got)
	}
}
