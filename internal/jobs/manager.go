// Package jobs runs pipeline runs in the background and tracks their status
// so API clients can poll for completion.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/logging"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// DefaultRetention is how long finished jobs are kept before cleanup.
const DefaultRetention = 24 * time.Hour

// Func is the work of one job. It should return promptly once ctx is done.
type Func func(ctx context.Context, job *model.Job) error

// Manager executes jobs on a bounded number of workers.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	cancels map[string]context.CancelFunc
	workers chan struct{}
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
	metrics *Metrics
}

// NewManager creates a manager running at most maxWorkers jobs at once.
func NewManager(maxWorkers int) *Manager {
	return &Manager{
		jobs:    make(map[string]*model.Job),
		cancels: make(map[string]context.CancelFunc),
		workers: make(chan struct{}, max(1, maxWorkers)),
		stop:    make(chan struct{}),
		metrics: NewMetrics(),
	}
}

// Start launches the periodic cleanup of finished jobs.
func (m *Manager) Start() {
	logging.Default().Info().Int("max_workers", cap(m.workers)).Msg("Job manager started")
	m.wg.Add(1)
	go m.cleanupLoop()
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.stopped.Do(func() {
		close(m.stop)
		m.mu.Lock()
		for _, cancel := range m.cancels {
			cancel()
		}
		m.mu.Unlock()
		m.wg.Wait()
		logging.Default().Info().Msg("Job manager stopped")
	})
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, label string, metadata map[string]string) string {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Label:     label,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.metrics.RecordJobCreated(jobType)
	logging.Default().Debug().Str("job_id", job.ID).Str("type", string(jobType)).Str("label", label).Msg("Job created")
	return job.ID
}

// GetJob returns a copy of the job.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return snapshot(job), nil
}

// ListJobs returns copies of the jobs with the given label, newest first. An
// empty label matches every job; a nil status matches every status.
func (m *Manager) ListJobs(label string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	out := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if label != "" && job.Label != label {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		out = append(out, snapshot(job))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ExecuteJob starts a pending job. The job waits for a free worker in the
// background; ExecuteJob itself never blocks on the pool.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	select {
	case <-m.stop:
		m.mu.Unlock()
		return fmt.Errorf("job manager is shutting down")
	default:
	}
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[jobID] = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "job manager shutting down", 0)
			return
		}
		defer func() { <-m.workers }()

		m.setStatus(jobID, model.JobStatusRunning)
		log := logging.Default().With().Str("job_id", jobID).Logger()
		ctx = logging.WithLogger(ctx, &log)

		started := time.Now()
		err := fn(ctx, m.snapshotOf(jobID))
		elapsed := time.Since(started)

		switch {
		case err != nil && ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error(), elapsed)
			log.Warn().Err(err).Dur("elapsed", elapsed).Msg("Job cancelled")
		case err != nil:
			m.finish(jobID, model.JobStatusFailed, err.Error(), elapsed)
			log.Error().Err(err).Dur("elapsed", elapsed).Msg("Job failed")
		default:
			m.finish(jobID, model.JobStatusCompleted, "", elapsed)
			log.Info().Dur("elapsed", elapsed).Msg("Job completed")
		}
	}()
	return nil
}

// CancelJob asks a pending or running job to stop.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return errors.NewJobNotFoundError(jobID)
	}
	cancel, running := m.cancels[jobID]
	if !running {
		return fmt.Errorf("job with ID '%s' is not active (current: %s)", jobID, job.Status)
	}
	m.metrics.RecordJobStatusChange(job.Status, model.JobStatusCancelling)
	job.Status = model.JobStatusCancelling
	cancel()
	return nil
}

// UpdateJobProgress records how far a running job has come.
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// SetRunID attaches the produced run to a job.
func (m *Manager) SetRunID(jobID, runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[jobID]; ok {
		job.RunID = runID
	}
}

func (m *Manager) snapshotOf(jobID string) *model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.jobs[jobID])
}

func (m *Manager) setStatus(jobID string, status model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status == model.JobStatusCancelling {
		return
	}
	m.metrics.RecordJobStatusChange(job.Status, status)
	job.Status = status
	if status == model.JobStatusRunning {
		now := time.Now()
		job.StartedAt = &now
	}
}

func (m *Manager) finish(jobID string, status model.JobStatus, message string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cancels, jobID)
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	m.metrics.RecordJobStatusChange(job.Status, status)
	job.Status = status
	job.Error = message
	now := time.Now()
	job.CompletedAt = &now

	switch status {
	case model.JobStatusCompleted:
		m.metrics.RecordJobCompleted(job.Type, elapsed)
	case model.JobStatusFailed:
		m.metrics.RecordJobFailed(job.Type)
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(DefaultRetention)
		case <-m.stop:
			return
		}
	}
}

// CleanupOldJobs drops finished jobs that completed more than maxAge ago.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		logging.Default().Info().Int("removed", removed).Msg("Cleaned up old jobs")
	}
	return removed
}

// GetMetrics returns a copy of the job counters.
func (m *Manager) GetMetrics() MetricsData {
	return m.metrics.Snapshot()
}

func snapshot(job *model.Job) *model.Job {
	cp := *job
	if job.Progress != nil {
		progress := *job.Progress
		cp.Progress = &progress
	}
	if job.Metadata != nil {
		cp.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
