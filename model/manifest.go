package model

import "time"

// StageStatus describes what happened to a pipeline stage.
type StageStatus string

const (
	StageStatusRan     StageStatus = "ran"
	StageStatusSkipped StageStatus = "skipped"
)

// Stage names, in execution order.
const (
	StageKeywords   = "keywords"
	StageEntities   = "entities"
	StageResearch   = "research"
	StageSBIR       = "sbir"
	StageProjects   = "projects"
	StageForecasts  = "forecasts"
	StageDeconflict = "deconflict"
)

// StageReport records the outcome of one stage so empty outputs can be
// diagnosed without reading logs.
type StageReport struct {
	Stage    string      `json:"stage" yaml:"stage"`
	Status   StageStatus `json:"status" yaml:"status"`
	Reason   string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	Input    string      `json:"input,omitempty" yaml:"input,omitempty"`
	Rows     int         `json:"rows" yaml:"rows"`
	Excluded int         `json:"excluded,omitempty" yaml:"excluded,omitempty"` // Rows dropped for unparsable fields
	Output   int         `json:"output" yaml:"output"`
}

// EntityCollision is a roster entry shadowed by an earlier entry with the same
// canonical name but a different entity id.
type EntityCollision struct {
	CanonicalName       string `json:"canonical_name" yaml:"canonical_name"`
	KeptEntityID        string `json:"kept_entity_id" yaml:"kept_entity_id"`
	ShadowedEntityID    string `json:"shadowed_entity_id" yaml:"shadowed_entity_id"`
	ShadowedDisplayName string `json:"shadowed_display_name" yaml:"shadowed_display_name"`
}

// Manifest summarises a pipeline run and the files it produced.
type Manifest struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Label      string            `json:"label,omitempty" yaml:"label,omitempty"`
	Generated  time.Time         `json:"generated" yaml:"generated"`
	Files      []string          `json:"files" yaml:"files"`
	Stages     []StageReport     `json:"stages" yaml:"stages"`
	Collisions []EntityCollision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}

// Stage returns the report for a stage name, if any.
func (m *Manifest) Stage(name string) (StageReport, bool) {
	for _, s := range m.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}
