// Package tokenizer reduces free-text names and titles to canonical lowercase
// alphanumeric tokens. Every identity comparison across sources goes through it.
package tokenizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nonAlphanumericRegex matches sequences of characters outside [a-z0-9].
// It is applied after lowercasing, so upper-case ASCII never reaches it.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Canonicalize converts a name into its canonical form: NFKC-normalized,
// lowercased, every run of non-alphanumeric characters replaced by a single
// space, and trimmed. The result is pure ASCII, which makes the function
// idempotent.
//
//	Canonicalize("ACME, Inc.") == "acme inc"
func Canonicalize(text string) string {
	if text == "" {
		return ""
	}
	lowerText := strings.ToLower(norm.NFKC.String(text))
	return strings.TrimSpace(nonAlphanumericRegex.ReplaceAllString(lowerText, " "))
}

// CanonicalizePtr is Canonicalize for optional values. An absent value stays absent.
func CanonicalizePtr(text *string) *string {
	if text == nil {
		return nil
	}
	canonical := Canonicalize(*text)
	return &canonical
}

// Tokens splits the canonical form of text on whitespace.
func Tokens(text string) []string {
	canonical := Canonicalize(text)
	if canonical == "" {
		return make([]string, 0) // Initialize as empty slice, not nil
	}
	return strings.Split(canonical, " ")
}

// TokenSet returns the distinct canonical tokens of text. Order and
// duplicates are irrelevant to the callers.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// UniqueTokens returns the distinct canonical tokens of text in first-seen order.
func UniqueTokens(text string) []string {
	tokens := Tokens(text)
	result := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}

// ContainsPhrase reports whether phrase occurs in canonicalText as a whole
// token sequence. Both arguments must already be canonical; "lab" does not
// match inside "labs".
func ContainsPhrase(canonicalText, phrase string) bool {
	if phrase == "" || canonicalText == "" {
		return false
	}
	return strings.Contains(" "+canonicalText+" ", " "+phrase+" ")
}
