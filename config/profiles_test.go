package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
project:
  base: 0.25
  cap: 0.5
  text_fields: [project_title, program_hint]
  bonuses:
    - field: url
      bonus: 0.1
`), 0o600))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Contains(t, profiles, "project")

	p := profiles["project"]
	assert.Equal(t, 0.25, p.Base)
	assert.Equal(t, 0.5, p.Cap)
	assert.Equal(t, []string{"project_title", "program_hint"}, p.TextFields)
	assert.Equal(t, []FieldBonus{{Field: "url", Bonus: 0.1}}, p.Bonuses)
}

func TestLoadProfiles_Errors(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("project: [unclosed"), 0o600))
	_, err = LoadProfiles(bad)
	assert.Error(t, err)
}

func TestMarshalProfiles_ReadsBack(t *testing.T) {
	data, err := MarshalProfiles(DefaultProfiles())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfiles(), profiles)
}

func TestLoad_MergesProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sbir:
  base: 0.2
  cap: 0.3
  text_fields: [title]
`), 0o600))

	v := NewViper()
	v.Set("scoring.profiles_file", path)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 0.2, s.Scoring.Profiles["sbir"].Base)
	assert.Empty(t, s.Scoring.Profiles["sbir"].Bonuses)
	assert.Equal(t, 0.40, s.Scoring.Profiles["research"].Base)
}
