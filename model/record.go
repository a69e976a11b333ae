package model

// SourceKind identifies the source table a candidate record came from. Each
// kind has its own scoring profile.
type SourceKind string

const (
	SourceKindResearch SourceKind = "research"
	SourceKindSBIR     SourceKind = "sbir"
	SourceKindProject  SourceKind = "project"
)

// SourceKinds lists the scored kinds in pipeline order.
var SourceKinds = []SourceKind{SourceKindResearch, SourceKindSBIR, SourceKindProject}

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	for _, known := range SourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Column names read by the scoring and linking stages.
const (
	ColOstiID             = "osti_id"
	ColAwardDOIs          = "award_dois"
	ColContractNumbers    = "contract_numbers"
	ColSponsorOrg         = "sponsor_org"
	ColResearchOrg        = "research_org"
	ColTitle              = "title"
	ColSubject            = "subject"
	ColCompany            = "company"
	ColAbstract           = "abstract"
	ColSolicitationNumber = "solicitation_number"
	ColAwardAmount        = "award_amount"
	ColAwardStartDate     = "award_start_date"
	ColProgram            = "program"
	ColPhase              = "phase"
	ColYear               = "year"
	ColProjectTitle       = "project_title"
	ColProgramHint        = "program_hint"
	ColURL                = "url"
	ColNAICS              = "naics"
)

// Scorable is a candidate record whose fields can be looked up by column name.
// Field returns nil when the field is absent or blank.
type Scorable interface {
	Field(name string) *string
}

// Linkage is the augmentation every scored record receives.
type Linkage struct {
	MatchEntityID    *string  `json:"match_entity_id"`
	CredibilityScore float64  `json:"credibility_score"`
	TopKeywordHits   []string `json:"kw_top3"`
}

// Link returns the linkage augmentation. It is promoted to every record type
// that embeds Linkage.
func (l Linkage) Link() Linkage {
	return l
}

// ScoredRecord is a candidate record after scoring: its raw row plus the
// linkage columns appended on export.
type ScoredRecord interface {
	Row() Columns
	Link() Linkage
}

// ScoreResult is the output of the credibility scorer for one record.
type ScoreResult struct {
	Score   float64  `json:"score"`
	TopHits []string `json:"top_hits"`
}

// ResearchOutput is a research-output (OSTI-style) record.
type ResearchOutput struct {
	OstiID          *string `json:"osti_id,omitempty"`
	AwardDOIs       *string `json:"award_dois,omitempty"`
	ContractNumbers *string `json:"contract_numbers,omitempty"`
	SponsorOrg      *string `json:"sponsor_org,omitempty"`
	ResearchOrg     *string `json:"research_org,omitempty"`
	Title           *string `json:"title,omitempty"`
	Subject         *string `json:"subject,omitempty"`
	Raw             Columns `json:"-"`
	Linkage
}

// Field implements Scorable.
func (r *ResearchOutput) Field(name string) *string {
	switch name {
	case ColOstiID:
		return present(r.OstiID)
	case ColAwardDOIs:
		return present(r.AwardDOIs)
	case ColContractNumbers:
		return present(r.ContractNumbers)
	case ColSponsorOrg:
		return present(r.SponsorOrg)
	case ColResearchOrg:
		return present(r.ResearchOrg)
	case ColTitle:
		return present(r.Title)
	case ColSubject:
		return present(r.Subject)
	}
	return r.Raw.Optional(name)
}

// Row returns the record's raw cells.
func (r ResearchOutput) Row() Columns {
	return r.Raw
}

// Award is an SBIR/STTR award record.
type Award struct {
	Company            *string `json:"company,omitempty"`
	Title              *string `json:"title,omitempty"`
	Abstract           *string `json:"abstract,omitempty"`
	SolicitationNumber *string `json:"solicitation_number,omitempty"`
	AwardAmount        *string `json:"award_amount,omitempty"`
	AwardStartDate     *string `json:"award_start_date,omitempty"`
	Program            *string `json:"program,omitempty"`
	Phase              *string `json:"phase,omitempty"`
	Year               *string `json:"year,omitempty"`
	Raw                Columns `json:"-"`
	Linkage
}

// Field implements Scorable.
func (a *Award) Field(name string) *string {
	switch name {
	case ColCompany:
		return present(a.Company)
	case ColTitle:
		return present(a.Title)
	case ColAbstract:
		return present(a.Abstract)
	case ColSolicitationNumber:
		return present(a.SolicitationNumber)
	case ColAwardAmount:
		return present(a.AwardAmount)
	case ColAwardStartDate:
		return present(a.AwardStartDate)
	case ColProgram:
		return present(a.Program)
	case ColPhase:
		return present(a.Phase)
	case ColYear:
		return present(a.Year)
	}
	return a.Raw.Optional(name)
}

// Row returns the record's raw cells.
func (a Award) Row() Columns {
	return a.Raw
}

// ExternalProject is a project listing scraped from a program page. It has no
// organization column; entity attachment goes through the title.
type ExternalProject struct {
	ProjectTitle *string `json:"project_title,omitempty"`
	ProgramHint  *string `json:"program_hint,omitempty"`
	URL          *string `json:"url,omitempty"`
	Raw          Columns `json:"-"`
	Linkage
}

// Field implements Scorable.
func (p *ExternalProject) Field(name string) *string {
	switch name {
	case ColProjectTitle:
		return present(p.ProjectTitle)
	case ColProgramHint:
		return present(p.ProgramHint)
	case ColURL:
		return present(p.URL)
	}
	return p.Raw.Optional(name)
}

// Row returns the record's raw cells.
func (p ExternalProject) Row() Columns {
	return p.Raw
}

// Forecast is a forecasted procurement opportunity. Forecasts are not scored;
// they are the reference side of cross-source linkage.
type Forecast struct {
	Title *string `json:"title,omitempty"`
	NAICS *string `json:"naics,omitempty"`
	Raw   Columns `json:"-"`
}

func present(v *string) *string {
	if !Present(v) {
		return nil
	}
	return v
}
