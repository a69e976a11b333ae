package engine

import (
	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/export"
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
	"github.com/gcbaptista/go-linkage-engine/model"
	"github.com/gcbaptista/go-linkage-engine/services"
)

// Table returns one page of a run's output table. page is 1-based.
func (e *Engine) Table(runID, table string, page, pageSize int) (*services.TablePage, error) {
	run, err := e.results.Get(runID)
	if err != nil {
		return nil, err
	}
	sheet, err := export.SheetFor(run, table)
	if err != nil {
		return nil, err
	}

	page = max(page, 1)
	pageSize = max(pageSize, 1)
	// Pages past the end start at the end; the bound also keeps the
	// multiplication from overflowing.
	offset := sheet.Len()
	if page-1 <= sheet.Len()/pageSize {
		offset = (page - 1) * pageSize
	}
	return &services.TablePage{
		RunID:    run.ID,
		Table:    table,
		Header:   sheet.Header,
		Rows:     sheet.Records(offset, pageSize),
		Total:    sheet.Len(),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// maxSuggestions bounds the near-miss names returned for an unresolved name.
const maxSuggestions = 3

// Resolve looks a free-text name up in a run's entity roster. Unresolved
// names carry near-miss suggestions.
func (e *Engine) Resolve(runID, name string) (*services.ResolveResult, error) {
	run, err := e.results.Get(runID)
	if err != nil {
		return nil, err
	}

	res := &services.ResolveResult{
		RunID:         run.ID,
		Name:          name,
		CanonicalName: tokenizer.Canonicalize(name),
	}
	idx := e.resolverFor(run)
	id, ok := idx.Resolve(name)
	if !ok {
		res.Suggestions = idx.Suggest(name, maxSuggestions)
		return res, nil
	}
	res.EntityID = &id
	for _, entity := range run.Entities {
		if entity.EntityID == id {
			res.DisplayName = entity.DisplayName
			res.EntityType = entity.EntityType
			break
		}
	}
	return res, nil
}

func (e *Engine) resolverFor(run *model.RunResult) *index.EntityIndex {
	e.mu.RLock()
	idx, ok := e.resolvers[run.ID]
	e.mu.RUnlock()
	if ok {
		return idx
	}

	idx = index.BuildEntityIndex(run.Entities)
	e.mu.Lock()
	e.resolvers[run.ID] = idx
	e.mu.Unlock()
	return idx
}
