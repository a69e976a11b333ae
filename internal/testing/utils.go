// Package testing provides fixtures and helpers for testing the linkage engine.
package testing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-linkage-engine/config"
	"github.com/gcbaptista/go-linkage-engine/model"
	"github.com/gcbaptista/go-linkage-engine/services"
)

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// WriteCSV writes a header and rows to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, header []string, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))
	return path
}

// ReadCSV reads every record of a CSV file, header included.
func ReadCSV(t testing.TB, path string) [][]string {
	t.Helper()
	f, err := os.Open(path) // #nosec G304 -- test fixture path
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// FixtureSettings writes a small complete input set into a temporary
// directory and returns settings pointing at it. Outputs go to a separate
// temporary directory.
//
// The fixture exercises every stage: the roster has one canonical-name
// collision ("ACME LABS" shadowed by "Acme Labs"), the first research record
// scores 0.80 with an "anomaly" hit, and sighting S1 matches the single
// confound at about 1444 m while S2 has an unparsable timestamp.
func FixtureSettings(t testing.TB) *config.Settings {
	t.Helper()
	in := t.TempDir()

	s := config.DefaultSettings()
	s.Pipeline.Workers = 2
	s.Output.Dir = filepath.Join(t.TempDir(), "processed")
	s.Keywords.File = WriteFile(t, in, "keywords.txt", "anomaly\nradar\n")
	s.Keywords.WeightsFile = WriteCSV(t, in, "weights.csv", []string{"keyword", "weight"},
		[]string{"anomaly", "2.0"},
		[]string{"radar", "oops"},
	)
	s.Inputs = config.InputSettings{
		Entities: WriteCSV(t, in, "entities.csv", []string{"name", "entity_id", "type"},
			[]string{"Acme Labs", "E1", ""},
			[]string{"Acme Laboratories", "E2", "research"},
			[]string{"ACME LABS", "E9", ""},
			[]string{"Globex Corporation", "E3", ""},
		),
		Research: WriteCSV(t, in, "research.csv",
			[]string{"osti_id", "contract_numbers", "research_org", "sponsor_org", "title", "notes"},
			[]string{"12345", "DE-AC02-05CH11231", "ACME LABS", "", "Characterizing an atmospheric anomaly", "keep me"},
			[]string{"", "", "Initech", "Globex Corporation", "Radar survey", ""},
		),
		SBIR: WriteCSV(t, in, "sbir.csv",
			[]string{"company", "title", "abstract", "phase", "year", "award_amount"},
			[]string{"Acme Labs", "Compact radar sensor", "Low power radar", "I", "2020", "150000"},
			[]string{"Hooli", "Battery chemistry", "Solid state cells", "II", "2021", "900000"},
		),
		Projects: WriteCSV(t, in, "projects.csv", []string{"project_title", "program_hint", "url"},
			[]string{"Globex Corporation fusion reactor", "ARPA-E", "https://example.org/p/1"},
		),
		Forecast: WriteCSV(t, in, "forecast.csv", []string{"title", "naics"},
			[]string{"Radar sensor development", "541715"},
		),
		Sightings: WriteCSV(t, in, "sightings.csv", []string{"id", "date_time", "lat", "lon"},
			[]string{"S1", "2021-06-01 20:00:00", "34.05", "-118.25"},
			[]string{"S2", "not a date", "34.05", "-118.25"},
		),
		Confounds: WriteCSV(t, in, "confounds.csv", []string{"date_time", "lat", "lon", "description", "location"},
			[]string{"2021-06-01 20:30:00", "34.06", "-118.24", "Drone survey", "Los Angeles"},
		),
	}
	return &s
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 20 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJob polls a job until it reaches a terminal status or times out.
func WaitForJob(t testing.TB, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
				return job
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// WaitForJobCompletion polls a job until it completes and fails the test if
// the job fails or is cancelled.
func WaitForJobCompletion(t testing.TB, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	job := WaitForJob(t, jobManager, jobID, opts)
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("Job %s ended with status %s: %s", jobID, job.Status, job.Error)
	}
	return job
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t testing.TB, job *model.Job, expectedType model.JobType, expectedLabel string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedLabel, job.Label, "Job label should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
