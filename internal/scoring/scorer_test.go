package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-linkage-engine/config"
	apperrors "github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/keywords"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// fieldMap is a Scorable backed by a plain map.
type fieldMap map[string]string

func (f fieldMap) Field(name string) *string {
	return model.Optional(f[name])
}

func str(s string) *string { return &s }

func defaultScorer(table *keywords.Table) *Scorer {
	return NewScorer(config.ScoringSettings{Profiles: config.DefaultProfiles()}, table)
}

func TestScore_WeightedKeywordResearch(t *testing.T) {
	table := keywords.NewTable([]string{"anomaly"}, map[string]float64{"anomaly": 2.0})
	rec := &model.ResearchOutput{
		OstiID:          str("12345"),
		ContractNumbers: str("DE-AC02-05CH11231"),
		Title:           str("Characterizing an atmospheric anomaly"),
	}

	got, err := defaultScorer(table).Score(model.SourceKindResearch, rec)
	require.NoError(t, err)
	assert.Equal(t, 0.75, got.Score)
	assert.Equal(t, []string{"anomaly"}, got.TopHits)
}

func TestScore_Profiles(t *testing.T) {
	table := keywords.NewTable([]string{"sensor", "radar", "lidar", "uap", "propulsion"}, nil)
	scorer := defaultScorer(table)

	tests := []struct {
		name     string
		kind     model.SourceKind
		rec      model.Scorable
		expected float64
		hits     []string
	}{
		{
			name:     "bare research",
			kind:     model.SourceKindResearch,
			rec:      &model.ResearchOutput{},
			expected: 0.40,
			hits:     []string{},
		},
		{
			name: "sbir all bonuses and capped keywords",
			kind: model.SourceKindSBIR,
			rec: &model.Award{
				SolicitationNumber: str("AF231-001"),
				AwardAmount:        str("149999"),
				AwardStartDate:     str("2023-01-01"),
				Program:            str("SBIR"),
				Phase:              str("Phase I"),
				Title:              str("Radar and lidar sensor fusion"),
				Abstract:           str("UAP propulsion study"),
			},
			// 0.35 + 0.40 + min(0.25, 0.30) = 1.00
			expected: 1.00,
			hits:     []string{"sensor", "radar", "lidar"},
		},
		{
			name:     "blank fields are absent",
			kind:     model.SourceKindSBIR,
			rec:      fieldMap{"solicitation_number": "   ", "phase": "II"},
			expected: 0.40,
			hits:     []string{},
		},
		{
			name: "project keyword bonus",
			kind: model.SourceKindProject,
			rec: &model.ExternalProject{
				ProjectTitle: str("Compact radar for UAP tracking"),
				URL:          str("https://example.org/p/1"),
			},
			// 0.30 + 0.05 + 0.10
			expected: 0.45,
			hits:     []string{"radar", "uap"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(tt.kind, tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Score)
			assert.Equal(t, tt.hits, got.TopHits)
		})
	}
}

func TestScore_AlwaysWithinUnitInterval(t *testing.T) {
	table := keywords.NewTable(
		[]string{"alpha", "beta", "gamma", "delta"},
		map[string]float64{"alpha": 50, "beta": -40, "gamma": 0.5},
	)
	scorer := defaultScorer(table)
	texts := []string{"", "alpha", "beta", "alpha beta gamma delta", "beta beta"}

	for kind, profile := range config.DefaultProfiles() {
		fields := make([]string, 0, len(profile.Bonuses))
		for _, b := range profile.Bonuses {
			fields = append(fields, b.Field)
		}
		for mask := 0; mask < 1<<len(fields); mask++ {
			for _, text := range texts {
				rec := fieldMap{}
				for i, f := range fields {
					if mask&(1<<i) != 0 {
						rec[f] = "x"
					}
				}
				for _, tf := range profile.TextFields {
					rec[tf] = text
				}
				got, err := scorer.Score(model.SourceKind(kind), rec)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got.Score, 0.0, "kind %s mask %b text %q", kind, mask, text)
				assert.LessOrEqual(t, got.Score, 1.0, "kind %s mask %b text %q", kind, mask, text)
			}
		}
	}
}

func TestScore_ClampsNegativeTotals(t *testing.T) {
	table := keywords.NewTable([]string{"doubt"}, map[string]float64{"doubt": -100})
	scorer := NewScorer(config.ScoringSettings{Profiles: map[string]config.SourceProfile{
		"project": {Base: 0.1, Cap: 1, TextFields: []string{"project_title"}},
	}}, table)

	got, err := scorer.Score(model.SourceKindProject, fieldMap{"project_title": "doubt"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Score)
}

func TestScore_UnknownKind(t *testing.T) {
	_, err := defaultScorer(nil).Score("patents", fieldMap{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestKeywordBonus(t *testing.T) {
	table := keywords.NewTable([]string{"a1", "b2", "c3", "d4"}, map[string]float64{"b2": 3})

	bonus, hits := KeywordBonus("d4 c3 b2 a1", table, 1)
	assert.InDelta(t, 0.3, bonus, 1e-9)
	assert.Equal(t, []string{"a1", "b2", "c3"}, hits)

	bonus, _ = KeywordBonus("b2", table, 0.1)
	assert.Equal(t, 0.1, bonus)

	bonus, hits = KeywordBonus("nothing here", table, 1)
	assert.Equal(t, 0.0, bonus)
	assert.Empty(t, hits)
}

func TestRound2AndClamp(t *testing.T) {
	assert.Equal(t, 0.75, Round2(0.4+0.1+0.15+0.1))
	assert.Equal(t, 0.33, Round2(1.0/3))
	assert.Equal(t, 1.0, Clamp01(1.2))
	assert.Equal(t, 0.0, Clamp01(-0.2))
}
