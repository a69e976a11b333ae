package index

import (
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
)

// TokenIndex is an inverted index from canonical token to the documents that
// contain it. Documents are identified by their position in the slice passed
// to BuildTokenIndex. It is built once per linkage pass and never modified,
// so concurrent reads need no locking.
type TokenIndex struct {
	Index map[string]PostingList
	Docs  int // number of indexed documents
}

// BuildTokenIndex records one posting per distinct token of each text.
// Posting lists come out in ascending DocID order.
func BuildTokenIndex(texts []string) *TokenIndex {
	ti := &TokenIndex{
		Index: make(map[string]PostingList),
		Docs:  len(texts),
	}
	for i, text := range texts {
		for _, tok := range tokenizer.UniqueTokens(text) {
			ti.Index[tok] = append(ti.Index[tok], PostingEntry{DocID: uint32(i)})
		}
	}
	return ti
}

// SharedTokens returns, for every document sharing at least one token with
// the given token set, the number of distinct tokens they have in common.
// Documents sharing nothing are absent from the result.
func (ti *TokenIndex) SharedTokens(tokens map[string]struct{}) map[uint32]int {
	shared := make(map[uint32]int)
	for tok := range tokens {
		for _, p := range ti.Index[tok] {
			shared[p.DocID]++
		}
	}
	return shared
}
