package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"mediapass/command"
)

// shellCommand runs a script through /bin/sh.
type shellCommand struct {
	script string
}

func (c shellCommand) Executable() string { return "/bin/sh" }
func (c shellCommand) BuildArgs() []string { return []string{"-c", c.script} }
func (c shellCommand) String() string { return command.FormatCommandLine("/bin/sh", c.BuildArgs()) }
func (c shellCommand) GetTaskType() command.TaskType { return command.TaskTypeEncode }
func (c shellCommand) GetInputPath() string { return "" }
func (c shellCommand) GetOutputPath() string { return "" }

func newTestExecutor() (*ProcessExecutor, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewProcessExecutor(ProcessPolicy{}, logger), hook
}

func TestSimulateExecutor(t *testing.T) {
	var out bytes.Buffer
	exec := New(true, &out, ProcessPolicy{}, nil)

	pass := command.NewPass("ffmpeg", command.TaskTypeEncode)
	pass.AddInput("in put.mkv")
	pass.Target = "out.webm"

	called := false
	if err := exec.RunLines(context.Background(), pass, func(string) { called = true }); err != nil {
		t.Fatalf("RunLines failed: %v", err)
	}
	if called {
		t.Error("Simulate must not produce output lines")
	}

	expected := "ffmpeg -i 'in put.mkv' out.webm\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestNew_Real(t *testing.T) {
	if _, ok := New(false, nil, ProcessPolicy{}, nil).(*ProcessExecutor); !ok {
		t.Error("Expected a ProcessExecutor")
	}
}

func TestProcessExecutor_RunLines(t *testing.T) {
	exec, _ := newTestExecutor()

	var lines []string
	err := exec.RunLines(context.Background(), shellCommand{script: "echo one; echo two 1>&2; printf 'frame=1\\rframe=2\\n'"}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("RunLines failed: %v", err)
	}

	expected := []string{"one", "two", "frame=1", "frame=2"}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("Expected %q, got %q", expected, lines)
	}
}

func TestProcessExecutor_Failure(t *testing.T) {
	exec, _ := newTestExecutor()
	exec.TailLines = 2

	err := exec.Run(context.Background(), shellCommand{script: "echo a; echo frame=10 fps=1.0; echo b; echo boom 1>&2; exit 3"})
	if !errors.Is(err, ErrProcess) {
		t.Fatalf("Expected ErrProcess, got %v", err)
	}

	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ProcessError, got %T", err)
	}
	if pe.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", pe.ExitCode)
	}
	if !reflect.DeepEqual(pe.Tail, []string{"b", "boom"}) {
		t.Errorf("Expected tail [b boom], got %q", pe.Tail)
	}
	if !strings.Contains(err.Error(), "exited with code 3") {
		t.Errorf("Expected exit code in message, got %q", err.Error())
	}
}

func TestProcessExecutor_MissingExecutable(t *testing.T) {
	exec, _ := newTestExecutor()

	pass := command.NewPass("/nonexistent/ffmpeg", command.TaskTypeEncode)
	err := exec.Run(context.Background(), pass)
	if !errors.Is(err, ErrProcess) {
		t.Errorf("Expected ErrProcess, got %v", err)
	}
}

func TestProcessExecutor_Cancelled(t *testing.T) {
	exec, _ := newTestExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Run(ctx, shellCommand{script: "sleep 5"})
	if !errors.Is(err, ErrProcess) {
		t.Errorf("Expected ErrProcess, got %v", err)
	}
}

func TestProcessExecutor_LogsProgress(t *testing.T) {
	exec, hook := newTestExecutor()

	if err := exec.Run(context.Background(), shellCommand{script: "echo 'frame=5 fps=10 time=00:00:01.00 speed=2.0x'"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "frame 5 |") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a progress debug entry")
	}
}

func TestProcessExecutor_ProgressWithExpectedDuration(t *testing.T) {
	exec, hook := newTestExecutor()
	exec.SetExpectedDuration(4 * time.Second)

	if err := exec.Run(context.Background(), shellCommand{script: "echo 'frame=5 fps=10 time=00:00:01.00 bitrate=800.0kbits/s speed=2.0x'"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "25.0% |") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a percentage progress entry, got %d entries", len(hook.AllEntries()))
	}
}

func TestProcessExecutor_NegativeDurationIsUnknown(t *testing.T) {
	exec, _ := newTestExecutor()
	exec.SetExpectedDuration(-time.Second)
	if exec.total != 0 {
		t.Errorf("Expected unknown duration, got %s", exec.total)
	}
}

func TestTail(t *testing.T) {
	tl := newTail(3)
	for _, l := range []string{"1", "2", "3", "4", "5"} {
		tl.add(l)
	}
	if got := tl.snapshot(); !reflect.DeepEqual(got, []string{"3", "4", "5"}) {
		t.Errorf("Expected [3 4 5], got %q", got)
	}

	empty := newTail(0)
	empty.add("x")
	if len(empty.snapshot()) != 0 {
		t.Error("Expected zero-size tail to stay empty")
	}
}
