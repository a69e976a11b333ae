package engine

import (
	"context"
	"sync"

	"github.com/gcbaptista/go-linkage-engine/config"
	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/jobs"
	"github.com/gcbaptista/go-linkage-engine/internal/logging"
	"github.com/gcbaptista/go-linkage-engine/internal/pipeline"
	"github.com/gcbaptista/go-linkage-engine/model"
	"github.com/gcbaptista/go-linkage-engine/store"
)

// maxConcurrentRuns bounds how many pipeline runs execute at once.
const maxConcurrentRuns = 1

// Engine owns the pipeline, the completed runs and the background jobs.
// It implements services.RunService and services.JobManager.
type Engine struct {
	mu         sync.RWMutex
	settings   *config.Settings
	pipeline   *pipeline.Pipeline
	results    *store.ResultStore
	resolvers  map[string]*index.EntityIndex // Run ID to rebuilt entity index
	jobManager *jobs.Manager
	persistMu  sync.Mutex // serializes writes of the result store file
}

// NewEngine creates an engine for validated settings and restores the runs
// persisted in the output directory.
func NewEngine(settings *config.Settings) *Engine {
	jobManager := jobs.NewManager(maxConcurrentRuns)
	jobManager.Start()

	eng := &Engine{
		settings:   settings,
		pipeline:   pipeline.New(settings),
		results:    store.NewResultStore(store.DefaultMaxRuns),
		resolvers:  make(map[string]*index.EntityIndex),
		jobManager: jobManager,
	}
	eng.loadSnapshotFromDisk()
	return eng
}

// Settings returns the engine settings.
func (e *Engine) Settings() *config.Settings {
	return e.settings
}

// Stop cancels running jobs and waits for them.
func (e *Engine) Stop() {
	e.jobManager.Stop()
}

// RunPipeline runs the pipeline synchronously and stores the result.
func (e *Engine) RunPipeline(ctx context.Context, label string, progress pipeline.ProgressFunc) (*model.RunResult, error) {
	result, err := e.pipeline.Run(ctx, pipeline.Options{Label: label, Progress: progress})
	if err != nil {
		return nil, err
	}
	e.storeRun(result)
	return result, nil
}

// GetRun returns a completed run by ID, or the latest run for "latest".
func (e *Engine) GetRun(runID string) (*model.RunResult, error) {
	return e.results.Get(runID)
}

// LatestRun returns the most recent run, if any.
func (e *Engine) LatestRun() (*model.RunResult, bool) {
	return e.results.Latest()
}

// ListRuns returns summaries of the stored runs, newest first.
func (e *Engine) ListRuns() []model.RunSummary {
	return e.results.List()
}

// GetJob returns a background job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the jobs with a label, or every job for an empty label.
func (e *Engine) ListJobs(label string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(label, status)
}

// GetMetrics returns the job counters.
func (e *Engine) GetMetrics() jobs.MetricsData {
	return e.jobManager.GetMetrics()
}

// CancelJob asks a running job to stop.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}

func (e *Engine) storeRun(result *model.RunResult) {
	e.results.Put(result)

	e.mu.Lock()
	// Resolvers of evicted runs are rebuilt on demand; drop them here.
	for id := range e.resolvers {
		if _, err := e.results.Get(id); err != nil {
			delete(e.resolvers, id)
		}
	}
	e.mu.Unlock()

	logging.Default().Debug().Str("run_id", result.ID).Int("stored_runs", e.results.Len()).Msg("Run stored")
	e.saveResults()
}
