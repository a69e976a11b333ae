package model

// Entity types assigned to roster entries, either from the roster's own
// type column or inferred from the display name.
const (
	EntityTypeGovernment   = "Government Agency"
	EntityTypeInvestment   = "Investment Firm"
	EntityTypeResearch     = "Research Institution"
	EntityTypeCorporation  = "Corporation"
	EntityTypeOrganization = "Organization"
	EntityTypeUnknown      = "Unknown"
)

// Entity is one organization from the reference roster. It is immutable for
// the duration of a pipeline run.
type Entity struct {
	EntityID      string `json:"entity_id"`
	DisplayName   string `json:"display_name"`
	CanonicalName string `json:"canonical_name"` // Always tokenizer.Canonicalize(DisplayName)
	EntityType    string `json:"entity_type,omitempty"`
}

// EntitySuggestion is a roster name close to, but not equal to, a name that
// failed to resolve.
type EntitySuggestion struct {
	CanonicalName string `json:"canonical_name"`
	EntityID      string `json:"entity_id"`
	Distance      int    `json:"distance"` // Edit distance between canonical names
}
