// Package entities classifies roster organizations.
package entities

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gcbaptista/go-linkage-engine/model"
)

type typeRule struct {
	entityType string
	terms      []string
}

// Rules are checked in order; the first rule with a term occurring anywhere
// in the lowercased name decides the type.
var typeRules = []typeRule{
	{model.EntityTypeGovernment, []string{"government", "dept", "department", "agency", "administration", "nga", "dod", "nasa", "darpa"}},
	{model.EntityTypeInvestment, []string{"capital", "partners", "ventures", "investment", "equity"}},
	{model.EntityTypeResearch, []string{"laboratories", "research", "institute", "university", "lab"}},
	{model.EntityTypeCorporation, []string{"inc.", "inc", "llc", "corp", "corporation", "company", "technologies", "systems", "solutions", "services", "group"}},
}

var titleCaser = cases.Title(language.English)

// InferType guesses an entity type from its display name.
func InferType(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return model.EntityTypeUnknown
	}
	for _, rule := range typeRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.entityType
			}
		}
	}
	return model.EntityTypeOrganization
}

// NormalizeType title-cases a roster-supplied type so "government agency"
// and "GOVERNMENT AGENCY" compare equal. Blank types are inferred from name.
func NormalizeType(rawType, name string) string {
	fields := strings.Fields(rawType)
	if len(fields) == 0 {
		return InferType(name)
	}
	return titleCaser.String(strings.Join(fields, " "))
}
