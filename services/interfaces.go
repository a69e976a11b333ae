package services

import (
	"github.com/gcbaptista/go-linkage-engine/internal/jobs"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// TablePage is one page of an output table.
type TablePage struct {
	RunID    string           `json:"run_id"`
	Table    string           `json:"table"`
	Header   []string         `json:"header"`
	Rows     []map[string]any `json:"rows"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ResolveResult is the outcome of resolving a free-text organization name
// against a run's entity roster.
type ResolveResult struct {
	RunID         string  `json:"run_id"`
	Name          string  `json:"name"`
	CanonicalName string  `json:"canonical_name"`
	EntityID      *string `json:"entity_id"`
	DisplayName   string  `json:"display_name,omitempty"`
	EntityType    string  `json:"entity_type,omitempty"`

	// Suggestions lists near-miss roster names when the name did not resolve.
	Suggestions []model.EntitySuggestion `json:"suggestions,omitempty"`
}

// Runner starts pipeline runs.
type Runner interface {
	StartRunAsync(label string) (string, error) // Returns job ID
}

// ResultReader gives read access to completed runs. runID may be "latest".
type ResultReader interface {
	GetRun(runID string) (*model.RunResult, error)
	ListRuns() []model.RunSummary
	Table(runID, table string, page, pageSize int) (*TablePage, error)
	Resolve(runID, name string) (*ResolveResult, error)
}

// RunService combines starting runs and reading their results.
type RunService interface {
	Runner
	ResultReader
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(label string, status *model.JobStatus) []*model.Job
	GetMetrics() jobs.MetricsData
}
