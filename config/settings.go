// Package config provides the configuration structures for a linkage run.
// It defines input locations, scoring profiles, matching windows and the
// output, server and logging options.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Settings is the full configuration of a pipeline run and of the serve mode.
type Settings struct {
	Inputs     InputSettings      `mapstructure:"inputs" json:"inputs" yaml:"inputs"`
	Keywords   KeywordSettings    `mapstructure:"keywords" json:"keywords" yaml:"keywords"`
	Scoring    ScoringSettings    `mapstructure:"scoring" json:"scoring" yaml:"scoring"`
	Deconflict DeconflictSettings `mapstructure:"deconflict" json:"deconflict" yaml:"deconflict"`
	Linking    LinkingSettings    `mapstructure:"linking" json:"linking" yaml:"linking"`
	Pipeline   PipelineSettings   `mapstructure:"pipeline" json:"pipeline" yaml:"pipeline"`
	Output     OutputSettings     `mapstructure:"output" json:"output" yaml:"output"`
	Server     ServerSettings     `mapstructure:"server" json:"server" yaml:"server"`
	Log        LogSettings        `mapstructure:"log" json:"log" yaml:"log"`
}

// InputSettings holds the paths of the input tables. Every input is optional;
// a blank or missing path skips the stages that need it.
type InputSettings struct {
	Entities  string `mapstructure:"entities" json:"entities" yaml:"entities"`
	Research  string `mapstructure:"research" json:"research" yaml:"research"`
	SBIR      string `mapstructure:"sbir" json:"sbir" yaml:"sbir"`
	Projects  string `mapstructure:"projects" json:"projects" yaml:"projects"`
	Forecast  string `mapstructure:"forecast" json:"forecast" yaml:"forecast"`
	Sightings string `mapstructure:"sightings" json:"sightings" yaml:"sightings"`
	Confounds string `mapstructure:"confounds" json:"confounds" yaml:"confounds"`
}

// KeywordSettings locates the keyword list and its optional weight table.
type KeywordSettings struct {
	File        string `mapstructure:"file" json:"file" yaml:"file"`                         // Newline-delimited keywords
	WeightsFile string `mapstructure:"weights_file" json:"weights_file" yaml:"weights_file"` // CSV with keyword,weight columns
}

// FieldBonus adds Bonus to the score when Field is present on the record.
type FieldBonus struct {
	Field string  `mapstructure:"field" json:"field" yaml:"field"`
	Bonus float64 `mapstructure:"bonus" json:"bonus" yaml:"bonus"`
}

// SourceProfile is the additive scoring model of one source kind.
type SourceProfile struct {
	Base       float64      `mapstructure:"base" json:"base" yaml:"base"`
	Bonuses    []FieldBonus `mapstructure:"bonuses" json:"bonuses" yaml:"bonuses"`             // Presence bonuses, applied in order
	Cap        float64      `mapstructure:"cap" json:"cap" yaml:"cap"`                         // Upper bound of the keyword bonus
	TextFields []string     `mapstructure:"text_fields" json:"text_fields" yaml:"text_fields"` // Joined with a space before keyword matching
}

// ScoringSettings maps a source kind ("research", "sbir", "project") to its profile.
type ScoringSettings struct {
	ProfilesFile string                   `mapstructure:"profiles_file" json:"profiles_file" yaml:"profiles_file"`
	Profiles     map[string]SourceProfile `mapstructure:"profiles" json:"profiles" yaml:"profiles"`
}

// DeconflictSettings bounds the sighting/confound matching window.
type DeconflictSettings struct {
	MaxDistanceMeters float64       `mapstructure:"max_distance_m" json:"max_distance_m" yaml:"max_distance_m"`
	MaxTimeDelta      time.Duration `mapstructure:"max_time_delta" json:"max_time_delta" yaml:"max_time_delta"`
}

// LinkingSettings tunes cross-source linkage.
type LinkingSettings struct {
	TopK              int `mapstructure:"top_k" json:"top_k" yaml:"top_k"`
	MinTitleEntityLen int `mapstructure:"min_title_entity_len" json:"min_title_entity_len" yaml:"min_title_entity_len"` // Shortest canonical entity name matched inside a project title
}

// PipelineSettings controls fan-out.
type PipelineSettings struct {
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`
}

// OutputSettings controls what a run writes to disk.
type OutputSettings struct {
	Dir            string `mapstructure:"dir" json:"dir" yaml:"dir"`
	JSON           bool   `mapstructure:"json" json:"json" yaml:"json"`                                  // Mirror every CSV as JSON
	JSONLimit      int    `mapstructure:"json_limit" json:"json_limit" yaml:"json_limit"`                // Max rows per JSON mirror, 0 = all
	Snapshot       bool   `mapstructure:"snapshot" json:"snapshot" yaml:"snapshot"`                      // Write run.gob for the serve mode
	ManifestFormat string `mapstructure:"manifest_format" json:"manifest_format" yaml:"manifest_format"` // "json" or "yaml"
}

// ServerSettings configures the read-only results API.
type ServerSettings struct {
	Port         int   `mapstructure:"port" json:"port" yaml:"port"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes"`
}

// LogSettings configures zerolog output.
type LogSettings struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "json", "console" or "auto"
}

var knownKinds = map[string]bool{"research": true, "sbir": true, "project": true}

// DefaultProfiles returns the built-in scoring profiles.
func DefaultProfiles() map[string]SourceProfile {
	return map[string]SourceProfile{
		"research": {
			Base: 0.40,
			Bonuses: []FieldBonus{
				{Field: "osti_id", Bonus: 0.10},
				{Field: "award_dois", Bonus: 0.05},
				{Field: "contract_numbers", Bonus: 0.15},
				{Field: "sponsor_org", Bonus: 0.10},
				{Field: "research_org", Bonus: 0.05},
			},
			Cap:        0.25,
			TextFields: []string{"title", "subject"},
		},
		"sbir": {
			Base: 0.35,
			Bonuses: []FieldBonus{
				{Field: "solicitation_number", Bonus: 0.15},
				{Field: "award_amount", Bonus: 0.10},
				{Field: "award_start_date", Bonus: 0.05},
				{Field: "program", Bonus: 0.05},
				{Field: "phase", Bonus: 0.05},
			},
			Cap:        0.30,
			TextFields: []string{"title", "abstract"},
		},
		"project": {
			Base: 0.30,
			Bonuses: []FieldBonus{
				{Field: "program_hint", Bonus: 0.05},
				{Field: "url", Bonus: 0.05},
			},
			Cap:        0.40,
			TextFields: []string{"project_title"},
		},
	}
}

// DefaultSettings returns a fully populated configuration.
func DefaultSettings() Settings {
	s := Settings{
		Output: OutputSettings{JSON: true, Snapshot: true},
	}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills in zero values. Boolean options cannot be told apart
// from an explicit false here; DefaultSettings and the viper defaults cover them.
func (s *Settings) ApplyDefaults() {
	if s.Keywords.File == "" {
		s.Keywords.File = "lookups/keywords_deduped.txt"
	}
	if s.Keywords.WeightsFile == "" {
		s.Keywords.WeightsFile = "lookups/keyword_weights.csv"
	}

	if s.Scoring.Profiles == nil {
		s.Scoring.Profiles = make(map[string]SourceProfile)
	}
	for kind, profile := range DefaultProfiles() {
		if _, ok := s.Scoring.Profiles[kind]; !ok {
			s.Scoring.Profiles[kind] = profile
		}
	}

	if s.Deconflict.MaxDistanceMeters == 0 {
		s.Deconflict.MaxDistanceMeters = 5000
	}
	if s.Deconflict.MaxTimeDelta == 0 {
		s.Deconflict.MaxTimeDelta = 60 * time.Minute
	}

	if s.Linking.TopK == 0 {
		s.Linking.TopK = 5
	}
	if s.Linking.MinTitleEntityLen == 0 {
		s.Linking.MinTitleEntityLen = 5
	}

	if s.Pipeline.Workers == 0 {
		s.Pipeline.Workers = runtime.NumCPU()
	}

	if s.Output.Dir == "" {
		s.Output.Dir = "processed"
	}
	if s.Output.ManifestFormat == "" {
		s.Output.ManifestFormat = "json"
	}

	if s.Server.Port == 0 {
		s.Server.Port = 8080
	}
	if s.Server.MaxBodyBytes == 0 {
		s.Server.MaxBodyBytes = 1 << 20
	}

	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.Log.Format == "" {
		s.Log.Format = "auto"
	}
}

// Validate returns every configuration conflict found. An empty result means
// the settings can drive a run.
func (s *Settings) Validate() []string {
	var conflicts []string

	if s.Deconflict.MaxDistanceMeters < 0 {
		conflicts = append(conflicts, "deconflict.max_distance_m must not be negative")
	}
	switch d := s.Deconflict.MaxTimeDelta; {
	case d < 0:
		conflicts = append(conflicts, "deconflict.max_time_delta must not be negative")
	case d > 0 && d < time.Second:
		// A bare number decodes as nanoseconds.
		conflicts = append(conflicts, "deconflict.max_time_delta of "+d.String()+" is below one second; give a unit, e.g. '60m'")
	}
	if s.Linking.TopK < 1 {
		conflicts = append(conflicts, "linking.top_k must be at least 1")
	}
	if s.Linking.MinTitleEntityLen < 1 {
		conflicts = append(conflicts, "linking.min_title_entity_len must be at least 1")
	}
	if s.Pipeline.Workers < 1 {
		conflicts = append(conflicts, "pipeline.workers must be at least 1")
	}
	if strings.TrimSpace(s.Output.Dir) == "" {
		conflicts = append(conflicts, "output.dir cannot be empty")
	}
	if s.Output.JSONLimit < 0 {
		conflicts = append(conflicts, "output.json_limit must not be negative")
	}
	if s.Output.ManifestFormat != "json" && s.Output.ManifestFormat != "yaml" {
		conflicts = append(conflicts, "Invalid output.manifest_format '"+s.Output.ManifestFormat+"' (must be 'json' or 'yaml')")
	}

	for _, kind := range sortedKinds(s.Scoring.Profiles) {
		if !knownKinds[kind] {
			conflicts = append(conflicts, "Unknown source kind '"+kind+"' in scoring.profiles (must be 'research', 'sbir' or 'project')")
			continue
		}
		conflicts = append(conflicts, s.Scoring.Profiles[kind].validate(kind)...)
	}
	for _, kind := range []string{"research", "sbir", "project"} {
		if _, ok := s.Scoring.Profiles[kind]; !ok {
			conflicts = append(conflicts, "scoring.profiles is missing a profile for '"+kind+"'")
		}
	}

	return conflicts
}

func (p SourceProfile) validate(kind string) []string {
	var errors []string
	prefix := "scoring.profiles." + kind

	if p.Base < 0 || p.Base > 1 {
		errors = append(errors, fmt.Sprintf("%s.base %.2f must be within [0, 1]", prefix, p.Base))
	}
	if p.Cap < 0 {
		errors = append(errors, prefix+".cap must not be negative")
	}
	if len(p.TextFields) == 0 {
		errors = append(errors, prefix+".text_fields must name at least one field")
	}

	fields := make([]string, 0, len(p.Bonuses))
	for _, b := range p.Bonuses {
		if strings.TrimSpace(b.Field) == "" {
			errors = append(errors, "Field name cannot be empty or whitespace-only in "+prefix+".bonuses")
		}
		if b.Bonus < 0 {
			errors = append(errors, "Bonus for field '"+b.Field+"' in "+prefix+".bonuses must not be negative")
		}
		fields = append(fields, b.Field)
	}
	errors = append(errors, checkDuplicates(prefix+".bonuses", fields)...)
	errors = append(errors, checkDuplicates(prefix+".text_fields", p.TextFields)...)
	return errors
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, fields []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, field := range fields {
		if seen[field] {
			errors = append(errors, "Duplicate field '"+field+"' found in "+fieldName)
		}
		seen[field] = true
	}

	return errors
}

func sortedKinds(profiles map[string]SourceProfile) []string {
	kinds := make([]string, 0, len(profiles))
	for kind := range profiles {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
