package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/model"
)

func waitForStatus(t *testing.T, m *Manager, jobID string, status model.JobStatus) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.GetJob(jobID)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRunPipeline, "nightly", map[string]string{"trigger": "test"})
	require.NotEmpty(t, jobID)

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeRunPipeline, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "nightly", job.Label)
	assert.Equal(t, "test", job.Metadata["trigger"])

	// Returned jobs are copies.
	job.Metadata["trigger"] = "changed"
	again, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "test", again.Metadata["trigger"])
}

func TestManager_GetJobNotFound(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	assert.True(t, errors.Is(err, apperrors.ErrJobNotFound))
}

func TestManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(job.ID, 3, 7, "research ran")
		manager.UpdateJobProgress(job.ID, 7, 7, "deconflict ran")
		manager.SetRunID(job.ID, "run-1")
		return nil
	})
	require.NoError(t, err)

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 7, job.Progress.Current)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())
	assert.Equal(t, "run-1", job.RunID)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)

	metrics := manager.GetMetrics()
	assert.Equal(t, int64(1), metrics.JobsCreated)
	assert.Equal(t, int64(1), metrics.JobsCompleted)
	assert.Equal(t, 1.0, metrics.SuccessRate)
	assert.Equal(t, int64(0), metrics.CurrentWorkload)
}

func TestManager_ExecuteJobFailure(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(context.Context, *model.Job) error {
		return errors.New("output directory not writable")
	}))

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	assert.Equal(t, "output directory not writable", job.Error)

	metrics := manager.GetMetrics()
	assert.Equal(t, int64(1), metrics.JobsFailed)
	assert.Equal(t, 0.0, metrics.SuccessRate)
}

func TestManager_ExecuteJobTwice(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(context.Context, *model.Job) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	err := manager.ExecuteJob(jobID, func(context.Context, *model.Job) error { return nil })
	assert.Error(t, err)

	err = manager.ExecuteJob("missing", func(context.Context, *model.Job) error { return nil })
	assert.True(t, errors.Is(err, apperrors.ErrJobNotFound))
}

func TestManager_CancelJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, _ *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	require.NoError(t, manager.CancelJob(jobID))
	waitForStatus(t, manager, jobID, model.JobStatusCancelled)

	assert.Error(t, manager.CancelJob(jobID))
}

func TestManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1)

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, _ *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	manager.Stop()
	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, job.Status)

	other := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	assert.Error(t, manager.ExecuteJob(other, func(context.Context, *model.Job) error { return nil }))
}

func TestManager_ListJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeRunPipeline, "nightly", nil)
	time.Sleep(2 * time.Millisecond)
	second := manager.CreateJob(model.JobTypeRunPipeline, "nightly", nil)
	manager.CreateJob(model.JobTypeLoadSnapshot, "adhoc", nil)

	nightly := manager.ListJobs("nightly", nil)
	require.Len(t, nightly, 2)
	assert.Equal(t, second, nightly[0].ID)
	assert.Equal(t, first, nightly[1].ID)

	assert.Len(t, manager.ListJobs("", nil), 3)

	pending := model.JobStatusPending
	assert.Len(t, manager.ListJobs("adhoc", &pending), 1)
	done := model.JobStatusCompleted
	assert.Empty(t, manager.ListJobs("", &done))
}

func TestManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeRunPipeline, "", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(context.Context, *model.Job) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	manager.CreateJob(model.JobTypeRunPipeline, "", nil)

	assert.Equal(t, 0, manager.CleanupOldJobs(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, manager.CleanupOldJobs(time.Millisecond))
	assert.Len(t, manager.ListJobs("", nil), 1)
}
