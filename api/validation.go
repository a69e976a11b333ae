// Package api provides the read-only results API and its request validation.
package api

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gcbaptista/go-linkage-engine/model"
)

// Pagination limits for table listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRunID validates a run ID path parameter
func ValidateRunID(runID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if runID == "" {
		result.AddError("runId", "Run ID is required")
		return result
	}
	if strings.TrimSpace(runID) != runID {
		result.AddError("runId", "Run ID cannot have leading or trailing whitespace")
	}
	return result
}

// ValidateTableName validates a table path parameter against the known tables
func ValidateTableName(table string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if table == "" {
		result.AddError("table", "Table name is required")
		return result
	}
	if !slices.Contains(model.Tables, table) {
		result.AddError("table", "Unknown table '"+table+"' (must be one of: "+strings.Join(model.Tables, ", ")+")")
	}
	return result
}

// ValidatePagination parses page and page_size query values. Blank values
// take the defaults: page 1 and DefaultPageSize.
func ValidatePagination(pageRaw, sizeRaw string) (int, int, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	page, size := 1, DefaultPageSize

	if pageRaw != "" {
		v, err := strconv.Atoi(pageRaw)
		switch {
		case err != nil:
			result.AddError("page", "page must be an integer")
		case v < 1:
			result.AddError("page", "page must be at least 1")
		default:
			page = v
		}
	}

	if sizeRaw != "" {
		v, err := strconv.Atoi(sizeRaw)
		switch {
		case err != nil:
			result.AddError("page_size", "page_size must be an integer")
		case v < 1 || v > MaxPageSize:
			result.AddError("page_size", "page_size must be between 1 and "+strconv.Itoa(MaxPageSize))
		default:
			size = v
		}
	}

	return page, size, result
}

// ValidateResolveName validates the name query parameter of a resolve request
func ValidateResolveName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(name) == "" {
		result.AddError("name", "name query parameter is required")
	}
	return result
}

// ValidateJobStatus validates an optional job status filter
func ValidateJobStatus(status string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if status == "" {
		return result
	}
	switch model.JobStatus(status) {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelling, model.JobStatusCancelled:
	default:
		result.AddError("status", "Invalid job status '"+status+"'")
	}
	return result
}

// RunRequest is the optional body of a run request.
type RunRequest struct {
	Label string `json:"label"`
}

// ValidateRunRequest validates a run request body
func ValidateRunRequest(req *RunRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Label) > 128 {
		result.AddError("label", "label must be at most 128 characters")
	}
	if strings.TrimSpace(req.Label) != req.Label {
		result.AddError("label", "label cannot have leading or trailing whitespace")
	}
	return result
}
