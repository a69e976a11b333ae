package model

import "time"

// RunResult holds every output table of one pipeline run.
type RunResult struct {
	ID          string            `json:"id"`
	Label       string            `json:"label,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Entities    []Entity          `json:"entities"`
	Research    []ResearchOutput  `json:"research"`
	Awards      []Award           `json:"sbir"`
	Projects    []ExternalProject `json:"projects"`
	Candidates  []LinkCandidate   `json:"candidates"`
	Matches     []MatchPair       `json:"matches"`
	Manifest    Manifest          `json:"manifest"`

	// Headers keeps the input column order of each scored table, keyed by table name.
	Headers map[string][]string `json:"headers"`
}

// RunSummary is the lightweight view of a run used for listings.
type RunSummary struct {
	ID          string         `json:"id"`
	Label       string         `json:"label,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Duration    time.Duration  `json:"duration_ns"`
	Counts      map[string]int `json:"counts"`
}

// Summary builds the listing view of a run.
func (r *RunResult) Summary() RunSummary {
	return RunSummary{
		ID:          r.ID,
		Label:       r.Label,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Duration:    r.CompletedAt.Sub(r.StartedAt),
		Counts: map[string]int{
			"entities":   len(r.Entities),
			"research":   len(r.Research),
			"sbir":       len(r.Awards),
			"projects":   len(r.Projects),
			"candidates": len(r.Candidates),
			"matches":    len(r.Matches),
		},
	}
}

// Table names of a run, as used by the export files and the results API.
const (
	TableEntities   = "entities"
	TableResearch   = "research"
	TableSBIR       = "sbir"
	TableProjects   = "projects"
	TableCandidates = "candidates"
	TableMatches    = "matches"
)

// Tables lists every table name in export order.
var Tables = []string{TableEntities, TableResearch, TableSBIR, TableProjects, TableCandidates, TableMatches}
