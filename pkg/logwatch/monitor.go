// Package logwatch tails a log file that another process appends to and
// reacts to trigger phrases in newly written lines.
package logwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Default poll intervals.
const (
	DefaultFilePoll = 500 * time.Millisecond
	DefaultLinePoll = 200 * time.Millisecond
)

// Trigger phrases printed by the Nexus installer.
const (
	PhraseExistingAccount      = "Do you want to use the existing user account? (y/n)"
	PhraseExistingAccountShort = "you want to use the existing"
	PhraseTaskFetch            = "Fetching a task to prove from Nexus Orchestrator"
)

// ErrNoSender is returned when a rule wants to respond but the monitor has
// nowhere to send the response.
var ErrNoSender = errors.New("rule responds but monitor has no sender")

// Sender delivers a response into the watched session.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Rule reacts to lines containing any of its Match substrings. Respond, when
// set, is sent to the session. Done ends monitoring successfully; it is
// applied after Respond.
type Rule struct {
	Name    string
	Match   []string
	Respond string
	Done    bool
}

// Matches reports whether line contains any of the rule's substrings.
func (r Rule) Matches(line string) bool {
	for _, m := range r.Match {
		if m != "" && strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// DefaultRules answers the account prompt with "y" and finishes once the
// prover starts fetching tasks.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "existing-account",
			Match:   []string{PhraseExistingAccount, PhraseExistingAccountShort},
			Respond: "y",
		},
		{
			Name:  "task-fetch",
			Match: []string{PhraseTaskFetch},
			Done:  true,
		},
	}
}

// Result describes how monitoring finished.
type Result struct {
	Rule  string // name of the Done rule that fired
	Line  string // the line that fired it
	Lines int    // lines read since monitoring started
}

// Monitor watches one log file.
type Monitor struct {
	Path     string
	Rules    []Rule
	Sender   Sender
	Out      io.Writer     // echoed lines and progress; nil discards
	FilePoll time.Duration // wait-for-file interval; 0 means DefaultFilePoll
	LinePoll time.Duration // idle interval between reads; 0 means DefaultLinePoll

	// Notify lets fsnotify events cut poll intervals short.
	Notify bool

	// OnReady is called once the file is open and positioned at its end.
	OnReady func()
	// OnMatch is called for every rule that fires, before its action runs.
	OnMatch func(rule Rule, line string)
}

func (m *Monitor) out() io.Writer {
	if m.Out == nil {
		return io.Discard
	}
	return m.Out
}

// Run waits for the log file, skips its existing content and processes every
// line appended afterwards until a Done rule fires, an action fails, or ctx
// is canceled. Without a matching line it runs forever.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	filePoll := m.FilePoll
	if filePoll <= 0 {
		filePoll = DefaultFilePoll
	}
	linePoll := m.LinePoll
	if linePoll <= 0 {
		linePoll = DefaultLinePoll
	}

	fmt.Fprintf(m.out(), "monitoring log file %s\n", m.Path)
	if err := WaitForFile(ctx, m.Path, filePoll, m.Notify, m.out()); err != nil {
		return Result{}, fmt.Errorf("wait for log file: %w", err)
	}

	t, err := openTailer(m.Path)
	if err != nil {
		return Result{}, err
	}
	defer t.close()

	wk := newWaker(m.Path, m.Notify, m.out())
	defer wk.close()

	if m.OnReady != nil {
		m.OnReady()
	}

	var lines int
	// Rules already fired for the line being assembled. A prompt is matched
	// while still unterminated and must not fire again once its line ends.
	fired := make(map[int]bool)
	for {
		if err := ctx.Err(); err != nil {
			return Result{Lines: lines}, err
		}

		text, complete, ok, err := t.next()
		if err != nil {
			return Result{Lines: lines}, err
		}
		if !ok {
			if err := wk.wait(ctx, linePoll); err != nil {
				return Result{Lines: lines}, err
			}
			continue
		}
		if complete {
			if text == "" {
				clear(fired)
				continue
			}
			lines++
			fmt.Fprintf(m.out(), "[log] %s\n", strings.TrimSpace(text))
		}

		done, err := m.apply(ctx, text, fired)
		if complete {
			clear(fired)
		}
		if err != nil {
			return Result{Lines: lines}, err
		}
		if done != nil {
			if !complete {
				lines++
				fmt.Fprintf(m.out(), "[log] %s\n", strings.TrimSpace(text))
			}
			return Result{Rule: done.Name, Line: text, Lines: lines}, nil
		}
	}
}

// apply runs the rules against line in order and returns the Done rule that
// fired, if any. Rules in fired are skipped and every rule that matches is
// added to it. Rules after a Done rule are not evaluated.
func (m *Monitor) apply(ctx context.Context, line string, fired map[int]bool) (*Rule, error) {
	for i := range m.Rules {
		r := &m.Rules[i]
		if fired[i] || !r.Matches(line) {
			continue
		}
		fired[i] = true
		if m.OnMatch != nil {
			m.OnMatch(*r, line)
		}
		if r.Respond != "" {
			if m.Sender == nil {
				return nil, fmt.Errorf("rule %q: %w", r.Name, ErrNoSender)
			}
			fmt.Fprintf(m.out(), "rule %q matched, sending %q\n", r.Name, r.Respond)
			if err := m.Sender.Send(ctx, r.Respond); err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.Name, err)
			}
		}
		if r.Done {
			fmt.Fprintf(m.out(), "rule %q matched, monitoring finished\n", r.Name)
			return r, nil
		}
	}
	return nil, nil
}
