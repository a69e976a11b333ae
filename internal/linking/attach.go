// Package linking ties candidate records to roster entities and to each
// other across sources.
package linking

import (
	"strings"

	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// Attach resolves the first organization name that is present and known to
// the index. Later names are fallbacks for absent or unresolved earlier ones.
func Attach(idx *index.EntityIndex, names ...*string) *string {
	for _, name := range names {
		if id := idx.ResolvePtr(name); id != nil {
			return id
		}
	}
	return nil
}

// AttachByTitle returns the first roster entity, in roster order, whose
// canonical name is at least minLen characters long and occurs inside the
// canonical title.
func AttachByTitle(idx *index.EntityIndex, title *string, minLen int) *string {
	canonical := tokenizer.Canonicalize(model.Deref(title))
	if canonical == "" {
		return nil
	}

	idx.Mu.RLock()
	defer idx.Mu.RUnlock()
	for _, e := range idx.Roster {
		if len(e.CanonicalName) < minLen {
			continue
		}
		if strings.Contains(canonical, e.CanonicalName) {
			id := e.EntityID
			return &id
		}
	}
	return nil
}

// AttachResearch links a research output through its research organization,
// falling back to its sponsor.
func AttachResearch(idx *index.EntityIndex, r *model.ResearchOutput) *string {
	return Attach(idx, r.ResearchOrg, r.SponsorOrg)
}

// AttachAward links an award through its company.
func AttachAward(idx *index.EntityIndex, a *model.Award) *string {
	return Attach(idx, a.Company)
}
