// Package orchestrator runs dependent commands strictly one at a time.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediapass/command"
	"mediapass/ffmpeg"
	"mediapass/models"
)

var (
	// ErrDependencyFailed marks tasks that never ran because a task they
	// depend on failed.
	ErrDependencyFailed = errors.New("dependency failed")
	// ErrStopped marks tasks that never ran because an unrelated task failed
	// first.
	ErrStopped = errors.New("run stopped after failure")
)

// Task is a unit of work with dependencies.
type Task struct {
	ID           string
	Command      command.Command
	Dependencies []string // IDs of tasks that must complete before this one
	Status       TaskStatus
	Error        error
	Result       *models.PassResult
	StartTime    time.Time
	EndTime      time.Time
}

// TaskStatus represents the current state of a task
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskCompleted
	TaskFailed
	TaskSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

// Sequence executes tasks in dependency order, never two at once. The first
// failure ends the run.
type Sequence struct {
	executor ffmpeg.Executor
	order    []string // insertion order, used as the tie breaker
	tasks    map[string]*Task

	onProgress func(completed, total int, task *Task)
}

// NewSequence creates an empty sequence running commands through executor.
func NewSequence(executor ffmpeg.Executor) *Sequence {
	return &Sequence{
		executor: executor,
		tasks:    make(map[string]*Task),
	}
}

// AddTask adds a task to the sequence.
func (s *Sequence) AddTask(task *Task) error {
	if task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if task.Command == nil {
		return fmt.Errorf("task %s has no command", task.ID)
	}
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}

	task.Status = TaskPending
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return nil
}

// AddPass adds every pass of main's chain, each depending on the one before.
// Task IDs are prefix plus the pass's task type.
func (s *Sequence) AddPass(prefix string, main *command.Pass) error {
	var prev string
	for _, p := range main.Chain() {
		task := &Task{
			ID:      prefix + string(p.GetTaskType()),
			Command: p,
		}
		if prev != "" {
			task.Dependencies = []string{prev}
		}
		if err := s.AddTask(task); err != nil {
			return err
		}
		prev = task.ID
	}
	return nil
}

// SetProgressCallback sets a callback invoked after every finished task.
func (s *Sequence) SetProgressCallback(callback func(completed, total int, task *Task)) {
	s.onProgress = callback
}

// Execute validates the graph and runs every task in dependency order. It
// returns one result per task in the order they were settled, and the first
// failure's error. Tasks that did not run carry ErrDependencyFailed or
// ErrStopped.
func (s *Sequence) Execute(ctx context.Context) ([]*models.PassResult, error) {
	order, err := s.plan()
	if err != nil {
		return nil, err
	}

	results := make([]*models.PassResult, 0, len(order))
	var firstErr error
	for i, task := range order {
		switch {
		case firstErr != nil && s.dependsOnFailure(task):
			s.settle(task, TaskFailed, fmt.Errorf("%w: %s", ErrDependencyFailed, s.failedDependency(task)))
		case firstErr != nil:
			s.settle(task, TaskSkipped, ErrStopped)
		case ctx.Err() != nil:
			firstErr = ctx.Err()
			s.settle(task, TaskSkipped, ctx.Err())
		default:
			if err := s.run(ctx, task); err != nil {
				firstErr = fmt.Errorf("task %s: %w", task.ID, err)
			}
		}
		results = append(results, task.Result)

		if s.onProgress != nil {
			s.onProgress(i+1, len(order), task)
		}
	}
	return results, firstErr
}

func (s *Sequence) run(ctx context.Context, task *Task) error {
	task.Status = TaskRunning
	task.StartTime = time.Now()

	err := s.executor.Run(ctx, task.Command)

	task.EndTime = time.Now()
	elapsed := task.EndTime.Sub(task.StartTime)
	if err != nil {
		task.Status = TaskFailed
		task.Error = err
		task.Result, _ = models.NewPassResultFailure(task.ID, err, elapsed)
		return err
	}

	task.Status = TaskCompleted
	task.Result = &models.PassResult{
		TaskID:     task.ID,
		OutputPath: task.Command.GetOutputPath(),
		Success:    true,
		Elapsed:    elapsed,
	}
	return nil
}

func (s *Sequence) settle(task *Task, status TaskStatus, err error) {
	task.Status = status
	task.Error = err
	task.Result = &models.PassResult{
		TaskID:  task.ID,
		Skipped: true,
		Error:   err,
	}
}

// dependsOnFailure reports whether any transitive dependency failed.
func (s *Sequence) dependsOnFailure(task *Task) bool {
	return s.failedDependency(task) != ""
}

func (s *Sequence) failedDependency(task *Task) string {
	for _, depID := range task.Dependencies {
		dep := s.tasks[depID]
		if dep.Status == TaskFailed {
			return depID
		}
		if id := s.failedDependency(dep); id != "" {
			return id
		}
	}
	return ""
}

// plan validates the graph and returns a topological order that keeps
// insertion order among independent tasks.
func (s *Sequence) plan() ([]*Task, error) {
	for _, id := range s.order {
		for _, depID := range s.tasks[id].Dependencies {
			if _, exists := s.tasks[depID]; !exists {
				return nil, fmt.Errorf("task %s depends on non-existent task %s", id, depID)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(s.tasks))
	order := make([]*Task, 0, len(s.tasks))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("cycle detected in task dependencies at %s", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, depID := range s.tasks[id].Dependencies {
			if err := visit(depID); err != nil {
				return err
			}
		}
		state[id] = done
		order = append(order, s.tasks[id])
		return nil
	}

	for _, id := range s.order {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Stats counts tasks per status.
type Stats struct {
	Total     int
	Pending   int
	Completed int
	Failed    int
	Skipped   int
}

// GetStats returns execution statistics
func (s *Sequence) GetStats() Stats {
	stats := Stats{Total: len(s.tasks)}
	for _, task := range s.tasks {
		switch task.Status {
		case TaskPending, TaskRunning:
			stats.Pending++
		case TaskCompleted:
			stats.Completed++
		case TaskFailed:
			stats.Failed++
		case TaskSkipped:
			stats.Skipped++
		}
	}
	return stats
}
