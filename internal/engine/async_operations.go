package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-linkage-engine/internal/pipeline"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// StartRunAsync starts a pipeline run in the background and returns its job ID.
func (e *Engine) StartRunAsync(label string) (string, error) {
	jobID := e.jobManager.CreateJob(model.JobTypeRunPipeline, label, map[string]string{
		"operation":  "run_pipeline",
		"output_dir": e.settings.Output.Dir,
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeRunJob(ctx, label, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start pipeline run job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeRunJob(ctx context.Context, label, jobID string) error {
	e.jobManager.UpdateJobProgress(jobID, 0, len(pipeline.Stages), "Starting pipeline run")

	result, err := e.RunPipeline(ctx, label, func(current, total int, message string) {
		e.jobManager.UpdateJobProgress(jobID, current, total, message)
	})
	if err != nil {
		return err
	}
	e.jobManager.SetRunID(jobID, result.ID)
	return nil
}

// LoadSnapshotAsync loads a run snapshot in the background. An empty path
// loads the snapshot of the configured output directory.
func (e *Engine) LoadSnapshotAsync(path string) (string, error) {
	if path == "" {
		path = e.SnapshotPath()
	}
	jobID := e.jobManager.CreateJob(model.JobTypeLoadSnapshot, "", map[string]string{
		"operation": "load_snapshot",
		"path":      path,
	})

	err := e.jobManager.ExecuteJob(jobID, func(_ context.Context, job *model.Job) error {
		result, err := e.LoadSnapshot(path)
		if err != nil {
			return err
		}
		e.jobManager.SetRunID(job.ID, result.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start load snapshot job: %w", err)
	}
	return jobID, nil
}
