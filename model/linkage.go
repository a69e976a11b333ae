package model

// LinkCandidate is one row of the ranked cross-source association between a
// forecast opportunity and a historical award.
type LinkCandidate struct {
	ForecastTitle     string  `json:"forecast_title"`
	ForecastNAICS     string  `json:"forecast_naics"`
	Rank              int     `json:"rank"` // 1-based within the forecast
	SBIRCompany       string  `json:"sbir_company"`
	SBIRTitle         string  `json:"sbir_title"`
	SBIRYear          string  `json:"sbir_year"`
	SBIRPhase         string  `json:"sbir_phase"`
	SBIRAwardAmount   string  `json:"sbir_award_amount"`
	SBIRMatchEntityID string  `json:"sbir_match_entity_id"`
	TextOverlap       float64 `json:"text_overlap"`
	ForecastOrdinal   int     `json:"-"`
	CandidateOrdinal  int     `json:"-"`
}
