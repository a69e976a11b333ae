package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrMissingInput is returned when an optional input file does not exist.
	// Stages treat it as "skip", never as a run failure.
	ErrMissingInput = errors.New("missing input")

	// ErrUnparsableField is returned when a cell cannot be parsed into its typed value.
	// The offending row is excluded from the stage that needed the value.
	ErrUnparsableField = errors.New("unparsable field")

	// ErrInvalidInput is returned when configuration or request validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunNotFound is returned when a pipeline run is not found
	ErrRunNotFound = errors.New("run not found")

	// ErrTableNotFound is returned when a run has no table with the requested name
	ErrTableNotFound = errors.New("table not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")
)

// MissingInputError names the input file a stage could not find.
type MissingInputError struct {
	Stage string
	Path  string
}

func (e *MissingInputError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("input '%s' for stage '%s' not found", e.Path, e.Stage)
	}
	return fmt.Sprintf("input '%s' not found", e.Path)
}

func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// NewMissingInputError creates a new MissingInputError
func NewMissingInputError(stage, path string) *MissingInputError {
	return &MissingInputError{Stage: stage, Path: path}
}

// UnparsableFieldError describes a cell that could not be parsed.
type UnparsableFieldError struct {
	Field string
	Value string
	Err   error
}

func (e *UnparsableFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse field '%s' value '%s': %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot parse field '%s' value '%s'", e.Field, e.Value)
}

func (e *UnparsableFieldError) Is(target error) bool {
	return target == ErrUnparsableField
}

func (e *UnparsableFieldError) Unwrap() error {
	return e.Err
}

// NewUnparsableFieldError creates a new UnparsableFieldError
func NewUnparsableFieldError(field, value string, err error) *UnparsableFieldError {
	return &UnparsableFieldError{Field: field, Value: value, Err: err}
}

// RunNotFoundError represents a run not found error with context
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run with ID '%s' not found", e.RunID)
}

func (e *RunNotFoundError) Is(target error) bool {
	return target == ErrRunNotFound
}

// NewRunNotFoundError creates a new RunNotFoundError
func NewRunNotFoundError(runID string) *RunNotFoundError {
	return &RunNotFoundError{RunID: runID}
}

// TableNotFoundError represents a request for a table a run does not produce
type TableNotFoundError struct {
	Table string
	RunID string
}

func (e *TableNotFoundError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("table '%s' not found in run '%s'", e.Table, e.RunID)
	}
	return fmt.Sprintf("table '%s' not found", e.Table)
}

func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

// NewTableNotFoundError creates a new TableNotFoundError
func NewTableNotFoundError(table string, runID ...string) *TableNotFoundError {
	err := &TableNotFoundError{Table: table}
	if len(runID) > 0 {
		err.RunID = runID[0]
	}
	return err
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
