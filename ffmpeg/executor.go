package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"mediapass/command"
	"mediapass/models"
)

const (
	defaultTailLines = 20
	progressInterval = 5 * time.Second
)

// Executor runs commands.
type Executor interface {
	// Run executes cmd and waits for it.
	Run(ctx context.Context, cmd command.Command) error

	// RunLines executes cmd, handing every stdout/stderr line to fn.
	RunLines(ctx context.Context, cmd command.Command, fn func(line string)) error

	// SetExpectedDuration sets the output length the following commands
	// produce. Zero means unknown.
	SetExpectedDuration(d time.Duration)
}

// New returns a SimulateExecutor writing to out when simulate is set and a
// ProcessExecutor otherwise.
func New(simulate bool, out io.Writer, policy ProcessPolicy, log logrus.FieldLogger) Executor {
	if simulate {
		return &SimulateExecutor{Out: out}
	}
	return NewProcessExecutor(policy, log)
}

// SimulateExecutor prints each command line instead of running it.
type SimulateExecutor struct {
	Out io.Writer
}

func (s *SimulateExecutor) Run(ctx context.Context, cmd command.Command) error {
	return s.RunLines(ctx, cmd, nil)
}

// SetExpectedDuration is a no-op; nothing runs.
func (s *SimulateExecutor) SetExpectedDuration(time.Duration) {}

// RunLines prints the command; fn is never called.
func (s *SimulateExecutor) RunLines(ctx context.Context, cmd command.Command, fn func(string)) error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, cmd.String())
	return err
}

// ProcessExecutor spawns real processes.
type ProcessExecutor struct {
	Policy    ProcessPolicy
	Log       logrus.FieldLogger
	TailLines int

	total time.Duration
}

// NewProcessExecutor creates an executor applying policy to every process.
func NewProcessExecutor(policy ProcessPolicy, log logrus.FieldLogger) *ProcessExecutor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProcessExecutor{
		Policy:    policy,
		Log:       log,
		TailLines: defaultTailLines,
	}
}

// SetExpectedDuration enables percentages and ETAs in progress logs.
func (e *ProcessExecutor) SetExpectedDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.total = d
}

func (e *ProcessExecutor) Run(ctx context.Context, cmd command.Command) error {
	return e.RunLines(ctx, cmd, nil)
}

// RunLines starts cmd with stdout and stderr on one pipe, applies the
// process policy, and streams the output until the process exits.
// ffmpeg stats lines update a progress tracker logged at debug level.
func (e *ProcessExecutor) RunLines(ctx context.Context, cmd command.Command, fn func(string)) error {
	log := e.Log.WithField("task", cmd.GetTaskType())
	log.WithField("command", cmd.String()).Debug("Starting process")

	r, w, err := os.Pipe()
	if err != nil {
		return &ProcessError{Executable: cmd.Executable(), Err: err}
	}
	defer r.Close()

	c := exec.CommandContext(ctx, cmd.Executable(), cmd.BuildArgs()...)
	c.Stdout = w
	c.Stderr = w

	start := time.Now()
	if err := c.Start(); err != nil {
		w.Close()
		return &ProcessError{Executable: cmd.Executable(), Err: err}
	}
	// Only the child keeps the write end open, so EOF means it exited.
	w.Close()

	if !e.Policy.IsZero() {
		if err := e.Policy.Apply(c.Process.Pid); err != nil {
			log.WithError(err).Warn("Could not apply process policy")
		}
	}

	lines := newTail(e.TailLines)
	parser := NewProgressParser()
	progress := models.NewProgress(e.total)
	var lastLogged time.Time

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if fn != nil {
			fn(line)
		}
		if parser.ParseLine(line, progress) {
			if time.Since(lastLogged) >= progressInterval {
				log.Debug(progress.Summary())
				lastLogged = time.Now()
			}
			continue
		}
		if line != "" {
			lines.add(line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep the pipe drained so the child cannot block on a full buffer
		io.Copy(io.Discard, r)
	}

	waitErr := c.Wait()
	log = log.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if waitErr != nil {
		if ctx.Err() != nil {
			waitErr = ctx.Err()
		}
		pe := &ProcessError{
			Executable: cmd.Executable(),
			Tail:       lines.snapshot(),
			Err:        waitErr,
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
		}
		log.WithError(pe).Debug("Process failed")
		return pe
	}
	if scanErr != nil {
		return fmt.Errorf("reading %s output: %w", cmd.Executable(), scanErr)
	}

	log.Debug("Process finished")
	return nil
}
