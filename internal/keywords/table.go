// Package keywords holds the weighted keyword list used for credibility
// scoring.
package keywords

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/loader"
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// DefaultWeight applies to keywords without a valid weight entry.
const DefaultWeight = 1.0

// Keyword is one entry of the keyword list.
type Keyword struct {
	Term    string  `json:"term"`    // Lowercased keyword as listed; reported in top hits
	Pattern string  `json:"pattern"` // Canonical token sequence matched against text
	Weight  float64 `json:"weight"`
}

// Table is the ordered keyword list with weights resolved. Order is the
// keyword file's order with duplicates removed, and it decides which hits
// are reported first.
type Table struct {
	Keywords []Keyword
}

// NewTable builds a table from keywords in priority order and a weight map
// keyed by lowercased keyword. Blank and duplicate keywords are dropped.
func NewTable(terms []string, weights map[string]float64) *Table {
	t := &Table{Keywords: make([]Keyword, 0, len(terms))}
	seen := make(map[string]struct{}, len(terms))
	for _, raw := range terms {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		pattern := tokenizer.Canonicalize(term)
		if pattern == "" {
			continue
		}
		weight, ok := weights[term]
		if !ok {
			weight = DefaultWeight
		}
		t.Keywords = append(t.Keywords, Keyword{Term: term, Pattern: pattern, Weight: weight})
	}
	return t
}

// Len returns the number of keywords.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Keywords)
}

// Hits returns the keywords found as whole-token phrases in text, in table order.
func (t *Table) Hits(text string) []Keyword {
	if t.Len() == 0 {
		return nil
	}
	canonical := tokenizer.Canonicalize(text)
	if canonical == "" {
		return nil
	}
	var hits []Keyword
	for _, k := range t.Keywords {
		if tokenizer.ContainsPhrase(canonical, k.Pattern) {
			hits = append(hits, k)
		}
	}
	return hits
}

// Load reads the keyword list and the weight table. A missing keyword list
// yields an empty table; a missing weights file means every weight is 1.0.
// Both conditions are returned as MissingInputErrors alongside a usable table.
func Load(keywordsPath, weightsPath string) (*Table, []error) {
	var problems []error

	terms, err := ReadKeywords(keywordsPath)
	if err != nil {
		problems = append(problems, err)
	}
	weights, err := ReadWeights(weightsPath)
	if err != nil {
		problems = append(problems, err)
	}
	return NewTable(terms, weights), problems
}

// ReadKeywords reads a newline-delimited keyword file.
func ReadKeywords(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from run configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError(model.StageKeywords, path)
		}
		return nil, fmt.Errorf("open keywords %s: %w", path, err)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line != "" {
			terms = append(terms, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keywords %s: %w", path, err)
	}
	return terms, nil
}

// ReadWeights reads a keyword,weight CSV. Weights that do not parse as a
// finite number fall back to DefaultWeight.
func ReadWeights(path string) (map[string]float64, error) {
	t, err := loader.ReadTable(model.StageKeywords, path)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		key, _ := row.Get("keyword")
		key = strings.ToLower(strings.TrimSpace(key))
		raw, _ := row.Get("weight")
		weights[key] = parseWeight(raw)
	}
	return weights, nil
}

func parseWeight(raw string) float64 {
	w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return DefaultWeight
	}
	return w
}
