package linking

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// DefaultTopK is how many candidates are kept per reference record.
const DefaultTopK = 5

// Overlap is the share of a's distinct tokens that also occur in b. It is
// not symmetric: it measures how much of the reference text a is covered.
func Overlap(a, b string) float64 {
	ta := tokenizer.TokenSet(a)
	if len(ta) == 0 {
		return 0
	}
	tb := tokenizer.TokenSet(b)
	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta))
}

// Candidate is a ranked document from a TokenIndex.
type Candidate struct {
	Ordinal int     // Position of the document in the indexed slice
	Overlap float64 // Overlap of the reference text with the document
}

// RankTopK returns the k documents of ti with the highest overlap against
// reference, ties broken by document order. Documents sharing no token with
// the reference rank after all others in document order, so the result is
// the same as a stable sort over every document.
func RankTopK(reference string, ti *index.TokenIndex, k int) []Candidate {
	if k <= 0 || ti.Docs == 0 {
		return nil
	}
	tokens := tokenizer.TokenSet(reference)
	denom := float64(max(1, len(tokens)))

	shared := ti.SharedTokens(tokens)
	ranked := make([]Candidate, 0, len(shared))
	for doc, n := range shared {
		ranked = append(ranked, Candidate{Ordinal: int(doc), Overlap: float64(n) / denom})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Overlap != ranked[j].Overlap {
			return ranked[i].Overlap > ranked[j].Overlap
		}
		return ranked[i].Ordinal < ranked[j].Ordinal
	})
	if len(ranked) >= k {
		return ranked[:k]
	}

	for doc := 0; doc < ti.Docs && len(ranked) < k; doc++ {
		if _, ok := shared[uint32(doc)]; ok {
			continue
		}
		ranked = append(ranked, Candidate{Ordinal: doc})
	}
	return ranked
}

// AwardText is the text an award is ranked on: title and abstract.
func AwardText(a *model.Award) string {
	return strings.TrimSpace(model.Deref(a.Title) + " " + model.Deref(a.Abstract))
}

// LinkForecasts ranks the awards against every forecast title and returns
// the top k per forecast, forecast order first, rank order second.
// Awards should already carry their entity attachment.
func LinkForecasts(ctx context.Context, forecasts []model.Forecast, awards []model.Award, k, workers int) ([]model.LinkCandidate, error) {
	if len(forecasts) == 0 || len(awards) == 0 {
		return []model.LinkCandidate{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	texts := make([]string, len(awards))
	for i := range awards {
		texts[i] = AwardText(&awards[i])
	}
	ti := index.BuildTokenIndex(texts)

	perForecast := make([][]model.LinkCandidate, len(forecasts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for fi := range forecasts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := forecasts[fi]
			ranked := RankTopK(model.Deref(f.Title), ti, k)
			rows := make([]model.LinkCandidate, len(ranked))
			for rank, c := range ranked {
				a := awards[c.Ordinal]
				rows[rank] = model.LinkCandidate{
					ForecastTitle:     model.Deref(f.Title),
					ForecastNAICS:     model.Deref(f.NAICS),
					Rank:              rank + 1,
					SBIRCompany:       model.Deref(a.Company),
					SBIRTitle:         model.Deref(a.Title),
					SBIRYear:          model.Deref(a.Year),
					SBIRPhase:         model.Deref(a.Phase),
					SBIRAwardAmount:   model.Deref(a.AwardAmount),
					SBIRMatchEntityID: model.Deref(a.MatchEntityID),
					TextOverlap:       c.Overlap,
					ForecastOrdinal:   fi,
					CandidateOrdinal:  c.Ordinal,
				}
			}
			perForecast[fi] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.LinkCandidate, 0, len(forecasts)*min(k, len(awards)))
	for _, rows := range perForecast {
		out = append(out, rows...)
	}
	return out, nil
}
