package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. LINKAGE_LINKING_TOP_K.
const EnvPrefix = "LINKAGE"

// NewViper returns a viper instance with every scalar setting registered as
// a default so environment overrides resolve even without a config file.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the defaults of DefaultSettings with v.
func SetDefaults(v *viper.Viper) {
	d := DefaultSettings()

	for key, value := range map[string]any{
		"inputs.entities":              d.Inputs.Entities,
		"inputs.research":              d.Inputs.Research,
		"inputs.sbir":                  d.Inputs.SBIR,
		"inputs.projects":              d.Inputs.Projects,
		"inputs.forecast":              d.Inputs.Forecast,
		"inputs.sightings":             d.Inputs.Sightings,
		"inputs.confounds":             d.Inputs.Confounds,
		"keywords.file":                d.Keywords.File,
		"keywords.weights_file":        d.Keywords.WeightsFile,
		"scoring.profiles_file":        d.Scoring.ProfilesFile,
		"deconflict.max_distance_m":    d.Deconflict.MaxDistanceMeters,
		"deconflict.max_time_delta":    d.Deconflict.MaxTimeDelta,
		"linking.top_k":                d.Linking.TopK,
		"linking.min_title_entity_len": d.Linking.MinTitleEntityLen,
		"pipeline.workers":             d.Pipeline.Workers,
		"output.dir":                   d.Output.Dir,
		"output.json":                  d.Output.JSON,
		"output.json_limit":            d.Output.JSONLimit,
		"output.snapshot":              d.Output.Snapshot,
		"output.manifest_format":       d.Output.ManifestFormat,
		"server.port":                  d.Server.Port,
		"server.max_body_bytes":        d.Server.MaxBodyBytes,
		"log.level":                    d.Log.Level,
		"log.format":                   d.Log.Format,
	} {
		v.SetDefault(key, value)
	}
}

// ReadConfigFile points v at an explicit config file, or searches the
// working directory for linkage.yaml when path is empty. A missing
// searched-for file is not an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("linkage")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// LoadEnvFiles loads .env files into the process environment. Earlier files
// win, and variables already set in the environment are never replaced.
// It returns the files that were loaded.
func LoadEnvFiles(files ...string) []string {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// Load decodes v into Settings, merges the scoring profiles file, applies
// defaults and validates. Validation conflicts are returned as a single
// ValidationError.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if s.Scoring.ProfilesFile != "" {
		profiles, err := LoadProfiles(s.Scoring.ProfilesFile)
		if err != nil {
			return nil, err
		}
		if s.Scoring.Profiles == nil {
			s.Scoring.Profiles = make(map[string]SourceProfile, len(profiles))
		}
		for kind, p := range profiles {
			s.Scoring.Profiles[kind] = p
		}
	}

	s.ApplyDefaults()
	if conflicts := s.Validate(); len(conflicts) > 0 {
		return nil, errors.NewValidationError("", strings.Join(conflicts, "; "))
	}
	return &s, nil
}
