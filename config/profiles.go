package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// LoadProfiles reads a YAML file of scoring profiles keyed by source kind:
//
//	sbir:
//	  base: 0.35
//	  cap: 0.30
//	  text_fields: [title, abstract]
//	  bonuses:
//	    - field: solicitation_number
//	      bonus: 0.15
func LoadProfiles(path string) (map[string]SourceProfile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading profiles file %s: %w", path, err)
	}
	profiles := make(map[string]SourceProfile)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("unmarshaling profiles from %s: %w", path, err)
	}
	return profiles, nil
}

// MarshalProfiles renders profiles in the format LoadProfiles reads.
func MarshalProfiles(profiles map[string]SourceProfile) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(profiles, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("marshaling profiles: %w", err)
	}
	return data, nil
}
