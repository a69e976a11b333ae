package index

import (
	"sync"

	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
	"github.com/gcbaptista/go-linkage-engine/internal/typoutil"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// EntityIndex maps canonical organization names to entity ids. It is built
// once from a roster and is read-only afterwards, so concurrent Resolve calls
// are safe.
type EntityIndex struct {
	Mu         sync.RWMutex
	Index      map[string]string // canonical name -> entity id
	Roster     []model.Entity    // indexed entities, roster order, canonical name filled in
	collisions []model.EntityCollision
}

// NewEntityIndex returns an empty index.
func NewEntityIndex() *EntityIndex {
	return &EntityIndex{Index: make(map[string]string)}
}

// BuildEntityIndex indexes a roster in input order. Entities with a blank
// display name are skipped. When two entities canonicalize to the same name
// the first one wins; later entities with a different id are recorded as
// collisions.
func BuildEntityIndex(entities []model.Entity) *EntityIndex {
	ei := NewEntityIndex()
	for _, e := range entities {
		canonical := tokenizer.Canonicalize(e.DisplayName)
		if canonical == "" {
			continue
		}
		e.CanonicalName = canonical

		if kept, exists := ei.Index[canonical]; exists {
			if kept != e.EntityID {
				ei.collisions = append(ei.collisions, model.EntityCollision{
					CanonicalName:       canonical,
					KeptEntityID:        kept,
					ShadowedEntityID:    e.EntityID,
					ShadowedDisplayName: e.DisplayName,
				})
			}
			continue
		}
		ei.Index[canonical] = e.EntityID
		ei.Roster = append(ei.Roster, e)
	}
	return ei
}

// Resolve returns the entity id whose canonical name equals the canonical
// form of name.
func (ei *EntityIndex) Resolve(name string) (string, bool) {
	canonical := tokenizer.Canonicalize(name)
	if canonical == "" {
		return "", false
	}
	ei.Mu.RLock()
	defer ei.Mu.RUnlock()
	id, ok := ei.Index[canonical]
	return id, ok
}

// ResolvePtr is Resolve for optional values. It returns nil when name is
// absent or does not resolve.
func (ei *EntityIndex) ResolvePtr(name *string) *string {
	if !model.Present(name) {
		return nil
	}
	id, ok := ei.Resolve(*name)
	if !ok {
		return nil
	}
	return &id
}

// Suggest returns roster entries whose canonical name is a few edits away
// from the canonical form of name, nearest first. It never returns an exact
// match, so it is only useful after Resolve fails.
func (ei *EntityIndex) Suggest(name string, limit int) []model.EntitySuggestion {
	canonical := tokenizer.Canonicalize(name)

	ei.Mu.RLock()
	defer ei.Mu.RUnlock()
	names := make([]string, len(ei.Roster))
	for i, e := range ei.Roster {
		names[i] = e.CanonicalName
	}

	near := typoutil.Closest(canonical, names, typoutil.MaxDistanceFor(canonical), limit)
	out := make([]model.EntitySuggestion, len(near))
	for i, s := range near {
		out[i] = model.EntitySuggestion{CanonicalName: s.Term, EntityID: ei.Index[s.Term], Distance: s.Distance}
	}
	return out
}

// Collisions returns the roster entries shadowed by an earlier entity.
func (ei *EntityIndex) Collisions() []model.EntityCollision {
	ei.Mu.RLock()
	defer ei.Mu.RUnlock()
	out := make([]model.EntityCollision, len(ei.collisions))
	copy(out, ei.collisions)
	return out
}

// Len returns the number of distinct canonical names.
func (ei *EntityIndex) Len() int {
	ei.Mu.RLock()
	defer ei.Mu.RUnlock()
	return len(ei.Index)
}
