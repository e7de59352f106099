package models

import (
	"fmt"
	"strings"
	"time"
)

// PassResult represents the outcome of running one command of a pipeline.
//
// Successful results must carry an output path and no error; failed results
// must carry an error. Use NewPassResultSuccess or NewPassResultFailure to
// create validated instances.
type PassResult struct {
	TaskID     string        `json:"task_id"`
	OutputPath string        `json:"output_path"`
	Success    bool          `json:"success"`
	Skipped    bool          `json:"skipped"`
	Error      error         `json:"error"`
	Elapsed    time.Duration `json:"elapsed"`
}

// NewPassResultSuccess creates a successful PassResult with validation.
func NewPassResultSuccess(taskID, outputPath string, elapsed time.Duration) (*PassResult, error) {
	pr := &PassResult{
		TaskID:     taskID,
		OutputPath: outputPath,
		Success:    true,
		Elapsed:    elapsed,
	}
	if err := pr.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pass result: %w", err)
	}
	return pr, nil
}

// NewPassResultFailure creates a failed PassResult. The error must not be nil.
func NewPassResultFailure(taskID string, passErr error, elapsed time.Duration) (*PassResult, error) {
	if passErr == nil {
		return nil, fmt.Errorf("invalid pass result: error cannot be nil for failed result")
	}
	return &PassResult{
		TaskID:  taskID,
		Success: false,
		Error:   passErr,
		Elapsed: elapsed,
	}, nil
}

// Validate checks that the PassResult has consistent state.
//
// Returns an error if:
//   - Success is true but Error is not nil
//   - Success is false but Error is nil
//   - Success is true but OutputPath is empty
func (pr *PassResult) Validate() error {
	if pr.Success && pr.Error != nil {
		return fmt.Errorf("inconsistent state: Success is true but Error is not nil")
	}

	if !pr.Success && pr.Error == nil {
		return fmt.Errorf("failed result must have an error")
	}

	if pr.Success && strings.TrimSpace(pr.OutputPath) == "" {
		return fmt.Errorf("output_path cannot be empty for successful result")
	}

	return nil
}
