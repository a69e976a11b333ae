package errors

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

func TestMissingInputError(t *testing.T) {
	err := NewMissingInputError("research", "data/osti.csv")

	expectedMsg := "input 'data/osti.csv' for stage 'research' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewMissingInputError("", "lookups/keywords.txt")
	expectedMsg2 := "input 'lookups/keywords.txt' not found"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrMissingInput) {
		t.Error("Expected error to match ErrMissingInput sentinel")
	}

	// Test that it doesn't match other sentinels
	if errors.Is(err, ErrInvalidInput) {
		t.Error("Error should not match ErrInvalidInput")
	}
}

func TestUnparsableFieldError(t *testing.T) {
	_, parseErr := strconv.ParseFloat("north", 64)
	err := NewUnparsableFieldError("lat", "north", parseErr)

	if !errors.Is(err, ErrUnparsableField) {
		t.Error("Expected error to match ErrUnparsableField sentinel")
	}

	// The underlying parse error stays reachable
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Error("Expected to unwrap to *strconv.NumError")
	}

	err2 := NewUnparsableFieldError("date_time", "yesterday", nil)
	expectedMsg := "cannot parse field 'date_time' value 'yesterday'"
	if err2.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err2.Error())
	}
}

func TestRunNotFoundError(t *testing.T) {
	err := NewRunNotFoundError("run-123")

	expectedMsg := "run with ID 'run-123' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrRunNotFound) {
		t.Error("Expected error to match ErrRunNotFound sentinel")
	}
	if errors.Is(err, ErrJobNotFound) {
		t.Error("Error should not match ErrJobNotFound")
	}
}

func TestTableNotFoundError(t *testing.T) {
	err := NewTableNotFoundError("widgets")
	expectedMsg := "table 'widgets' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewTableNotFoundError("widgets", "run-1")
	expectedMsg2 := "table 'widgets' not found in run 'run-1'"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err2, ErrTableNotFound) {
		t.Error("Expected error to match ErrTableNotFound sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	jobID := "job-456"
	err := NewJobNotFoundError(jobID)

	expectedMsg := "job with ID 'job-456' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("deconflict.max_distance_m", "must be positive")

	expectedMsg := "validation error for field 'deconflict.max_distance_m': must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", "must be positive")
	expectedMsg2 := "validation error: must be positive"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
	if !errors.Is(err2, ErrInvalidInput) {
		t.Error("Expected error without field to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewMissingInputError("sbir", "data/sbir.csv")
	wrappedErr := fmt.Errorf("loading awards: %w", originalErr)

	if !errors.Is(wrappedErr, ErrMissingInput) {
		t.Error("Expected wrapped error to still match ErrMissingInput sentinel")
	}

	var missing *MissingInputError
	if !errors.As(wrappedErr, &missing) {
		t.Fatal("Expected to be able to unwrap to MissingInputError")
	}
	if missing.Path != "data/sbir.csv" {
		t.Errorf("Expected path 'data/sbir.csv', got '%s'", missing.Path)
	}

	joined := errors.Join(NewRunNotFoundError("r1"), errors.New("additional context"))
	if !errors.Is(joined, ErrRunNotFound) {
		t.Error("Expected joined error to still match ErrRunNotFound sentinel")
	}
}
