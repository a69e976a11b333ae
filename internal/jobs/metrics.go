package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/go-linkage-engine/model"
)

// MetricsData is a point-in-time copy of the job counters.
type MetricsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	SuccessRate          float64                   `json:"success_rate"`
	CurrentWorkload      int64                     `json:"current_workload"`
	TotalExecutionTime   time.Duration             `json:"total_execution_time_ns"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]string  `json:"average_by_type"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// Metrics aggregates job counters and execution times.
type Metrics struct {
	mu            sync.RWMutex
	created       int64
	completed     int64
	failed        int64
	totalTime     time.Duration
	byType        map[model.JobType]int64
	byStatus      map[model.JobStatus]int64
	timeByType    map[model.JobType]time.Duration
	successByType map[model.JobType]int64
	lastUpdated   time.Time
}

// NewMetrics returns empty job metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		byType:        make(map[model.JobType]int64),
		byStatus:      make(map[model.JobStatus]int64),
		timeByType:    make(map[model.JobType]time.Duration),
		successByType: make(map[model.JobType]int64),
		lastUpdated:   time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *Metrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status counters.
func (m *Metrics) RecordJobStatusChange(from, to model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if from != "" && m.byStatus[from] > 0 {
		m.byStatus[from]--
	}
	m.byStatus[to]++
	m.lastUpdated = time.Now()
}

// RecordJobCompleted counts a successful job and its execution time.
func (m *Metrics) RecordJobCompleted(jobType model.JobType, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalTime += elapsed
	m.timeByType[jobType] += elapsed
	m.successByType[jobType]++
	m.lastUpdated = time.Now()
}

// RecordJobFailed counts a failed job.
func (m *Metrics) RecordJobFailed(model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := MetricsData{
		JobsCreated:        m.created,
		JobsCompleted:      m.completed,
		JobsFailed:         m.failed,
		SuccessRate:        1.0,
		CurrentWorkload:    m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		TotalExecutionTime: m.totalTime,
		AverageByType:      make(map[model.JobType]string, len(m.timeByType)),
		JobsByType:         make(map[model.JobType]int64, len(m.byType)),
		JobsByStatus:       make(map[model.JobStatus]int64, len(m.byStatus)),
		LastUpdated:        m.lastUpdated,
	}
	if finished := m.completed + m.failed; finished > 0 {
		data.SuccessRate = float64(m.completed) / float64(finished)
	}
	if m.completed > 0 {
		data.AverageExecutionTime = m.totalTime / time.Duration(m.completed)
	}
	for k, v := range m.timeByType {
		data.AverageByType[k] = (v / time.Duration(m.successByType[k])).String()
	}
	for k, v := range m.byType {
		data.JobsByType[k] = v
	}
	for k, v := range m.byStatus {
		data.JobsByStatus[k] = v
	}
	return data
}
