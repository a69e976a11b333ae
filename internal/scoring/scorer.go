// Package scoring computes credibility scores for candidate records.
package scoring

import (
	"math"
	"strings"

	"github.com/gcbaptista/go-linkage-engine/config"
	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/keywords"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// KeywordStep is the bonus contributed by one keyword hit of weight 1.0.
const KeywordStep = 0.05

// MaxTopHits is how many keyword hits a score reports.
const MaxTopHits = 3

// Scorer applies the per-kind additive scoring model. It is safe for
// concurrent use.
type Scorer struct {
	profiles map[model.SourceKind]config.SourceProfile
	table    *keywords.Table
}

// NewScorer builds a scorer from scoring settings and a keyword table. A nil
// table scores without keyword bonuses.
func NewScorer(settings config.ScoringSettings, table *keywords.Table) *Scorer {
	profiles := make(map[model.SourceKind]config.SourceProfile, len(settings.Profiles))
	for kind, p := range settings.Profiles {
		profiles[model.SourceKind(kind)] = p
	}
	if table == nil {
		table = keywords.NewTable(nil, nil)
	}
	return &Scorer{profiles: profiles, table: table}
}

// Score returns the credibility score of rec under the profile for kind.
func (s *Scorer) Score(kind model.SourceKind, rec model.Scorable) (model.ScoreResult, error) {
	profile, ok := s.profiles[kind]
	if !ok {
		return model.ScoreResult{}, errors.NewValidationError("kind", "no scoring profile for source kind '"+string(kind)+"'")
	}

	score := profile.Base
	for _, b := range profile.Bonuses {
		if rec.Field(b.Field) != nil {
			score += b.Bonus
		}
	}

	bonus, hits := KeywordBonus(TextOf(rec, profile.TextFields), s.table, profile.Cap)
	score += bonus

	return model.ScoreResult{Score: Round2(Clamp01(score)), TopHits: hits}, nil
}

// KeywordBonus sums KeywordStep × weight over every keyword found in text,
// capped at limit. It also returns up to MaxTopHits hit terms in table order.
func KeywordBonus(text string, table *keywords.Table, limit float64) (float64, []string) {
	hits := table.Hits(text)
	top := make([]string, 0, MaxTopHits)
	bonus := 0.0
	for _, k := range hits {
		bonus += KeywordStep * k.Weight
		if len(top) < MaxTopHits {
			top = append(top, k.Term)
		}
	}
	return math.Min(bonus, limit), top
}

// TextOf joins the present text fields of rec with single spaces.
func TextOf(rec model.Scorable, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := rec.Field(f); v != nil {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, " ")
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
