package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcbaptista/go-linkage-engine/model"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", model.EntityTypeUnknown},
		{"whitespace", "   ", model.EntityTypeUnknown},
		{"government department", "Department of Energy", model.EntityTypeGovernment},
		{"agency acronym", "DARPA", model.EntityTypeGovernment},
		{"investment", "Blue Ridge Ventures", model.EntityTypeInvestment},
		{"capital", "Northstar Capital", model.EntityTypeInvestment},
		{"laboratory", "Acme Labs", model.EntityTypeResearch},
		{"university", "State University", model.EntityTypeResearch},
		{"corporation suffix", "Globex Inc.", model.EntityTypeCorporation},
		{"llc", "Widget LLC", model.EntityTypeCorporation},
		{"systems", "Orbital Systems", model.EntityTypeCorporation},
		{"no keyword", "Zephyr", model.EntityTypeOrganization},
		{"government beats research", "Naval Research Agency", model.EntityTypeGovernment},
		{"research beats corporation", "Research Systems", model.EntityTypeResearch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferType(tt.input))
		})
	}
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "Government Agency", NormalizeType("government agency", "x"))
	assert.Equal(t, "Government Agency", NormalizeType("  GOVERNMENT   agency ", "x"))
	assert.Equal(t, model.EntityTypeResearch, NormalizeType("", "Acme Labs"))
	assert.Equal(t, model.EntityTypeUnknown, NormalizeType(" ", ""))
}
