package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProcess matches every failure of a spawned process.
var ErrProcess = errors.New("process failed")

// ProcessError describes a process that could not start or exited
// unsuccessfully. Tail holds its last output lines, progress lines excluded.
type ProcessError struct {
	Executable string
	ExitCode   int
	Tail       []string
	Err        error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, "%s exited with code %d", e.Executable, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "%s failed: %v", e.Executable, e.Err)
	}
	if len(e.Tail) > 0 {
		b.WriteString(":\n  ")
		b.WriteString(strings.Join(e.Tail, "\n  "))
	}
	return b.String()
}

func (e *ProcessError) Unwrap() []error {
	return []error{ErrProcess, e.Err}
}

// tail keeps the last n lines written to it.
type tail struct {
	lines []string
	n     int
}

func newTail(n int) *tail {
	return &tail{n: n}
}

func (t *tail) add(line string) {
	if t.n <= 0 {
		return
	}
	if len(t.lines) == t.n {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.n-1]
	}
	t.lines = append(t.lines, line)
}

func (t *tail) snapshot() []string {
	return append([]string(nil), t.lines...)
}
