// Package export renders run results as flat tables and writes them to disk.
package export

import (
	"strconv"
	"strings"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// Output file names, without extension.
const (
	FileEntities   = "entities_resolved"
	FileResearch   = "research_outputs_scored"
	FileSBIR       = "sbir_scored"
	FileProjects   = "arpae_projects_scored"
	FileCandidates = "pipeline_candidates"
	FileMatches    = "deconflicted_matches"
)

// Columns appended to every scored table.
var LinkageColumns = []string{"match_entity_id", "credibility_score", "kw_top3"}

// CandidateColumns is the header of the ranked linkage table.
var CandidateColumns = []string{
	"forecast_title", "forecast_naics", "sbir_company", "sbir_title", "sbir_year",
	"sbir_phase", "sbir_award_amount", "sbir_match_entity_id", "text_overlap",
}

// MatchColumns is the header of the deconflicted matches table.
var MatchColumns = []string{
	"sighting_id", "sighting_time", "sighting_lat", "sighting_lon",
	"confound_time", "confound_lat", "confound_lon", "confound_desc",
	"confound_location", "dist_m",
}

// EntityColumns is the header of the resolved roster table.
var EntityColumns = []string{"entity_id", "name", "canonical_name", "type"}

// Sheet is a table of string cells ready to be written as CSV or JSON.
type Sheet struct {
	Name   string     `json:"name"`
	File   string     `json:"file"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ScoredSheet renders scored records: the input columns in their original
// order followed by LinkageColumns.
func ScoredSheet[T model.ScoredRecord](name, file string, header []string, records []T) *Sheet {
	s := &Sheet{
		Name:   name,
		File:   file,
		Header: append(append([]string{}, header...), LinkageColumns...),
		Rows:   make([][]string, len(records)),
	}
	for i, rec := range records {
		raw := rec.Row()
		row := make([]string, 0, len(s.Header))
		for c := range header {
			if c < len(raw.Values) {
				row = append(row, raw.Values[c])
			} else {
				row = append(row, "")
			}
		}
		link := rec.Link()
		row = append(row,
			model.Deref(link.MatchEntityID),
			strconv.FormatFloat(link.CredibilityScore, 'f', 2, 64),
			strings.Join(link.TopKeywordHits, ";"),
		)
		s.Rows[i] = row
	}
	return s
}

// CandidatesSheet renders the ranked forecast/award linkage.
func CandidatesSheet(rows []model.LinkCandidate) *Sheet {
	s := &Sheet{Name: model.TableCandidates, File: FileCandidates, Header: CandidateColumns, Rows: make([][]string, len(rows))}
	for i, c := range rows {
		s.Rows[i] = []string{
			c.ForecastTitle, c.ForecastNAICS, c.SBIRCompany, c.SBIRTitle, c.SBIRYear,
			c.SBIRPhase, c.SBIRAwardAmount, c.SBIRMatchEntityID, formatFloat(c.TextOverlap),
		}
	}
	return s
}

// MatchesSheet renders deconfliction match pairs.
func MatchesSheet(rows []model.MatchPair) *Sheet {
	s := &Sheet{Name: model.TableMatches, File: FileMatches, Header: MatchColumns, Rows: make([][]string, len(rows))}
	for i, m := range rows {
		s.Rows[i] = []string{
			m.SightingID, m.SightingTime, formatFloat(m.SightingLat), formatFloat(m.SightingLon),
			m.ConfoundTime, formatFloat(m.ConfoundLat), formatFloat(m.ConfoundLon), m.ConfoundDesc,
			m.ConfoundLocation, formatFloat(m.DistanceMeters),
		}
	}
	return s
}

// EntitiesSheet renders the indexed roster with canonical names and types.
func EntitiesSheet(entities []model.Entity) *Sheet {
	s := &Sheet{Name: model.TableEntities, File: FileEntities, Header: EntityColumns, Rows: make([][]string, len(entities))}
	for i, e := range entities {
		s.Rows[i] = []string{e.EntityID, e.DisplayName, e.CanonicalName, e.EntityType}
	}
	return s
}

// SheetFor renders one table of a run by name.
func SheetFor(run *model.RunResult, name string) (*Sheet, error) {
	switch name {
	case model.TableEntities:
		return EntitiesSheet(run.Entities), nil
	case model.TableResearch:
		return ScoredSheet(name, FileResearch, run.Headers[name], run.Research), nil
	case model.TableSBIR:
		return ScoredSheet(name, FileSBIR, run.Headers[name], run.Awards), nil
	case model.TableProjects:
		return ScoredSheet(name, FileProjects, run.Headers[name], run.Projects), nil
	case model.TableCandidates:
		return CandidatesSheet(run.Candidates), nil
	case model.TableMatches:
		return MatchesSheet(run.Matches), nil
	}
	return nil, errors.NewTableNotFoundError(name, run.ID)
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}

// Records returns up to limit rows from offset (all when limit <= 0) as column-keyed
// objects. Blank cells become null.
func (s *Sheet) Records(offset, limit int) []map[string]any {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Rows) {
		offset = len(s.Rows)
	}
	end := len(s.Rows)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	out := make([]map[string]any, 0, end-offset)
	for _, row := range s.Rows[offset:end] {
		rec := make(map[string]any, len(s.Header))
		for c, h := range s.Header {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				rec[h] = row[c]
			} else {
				rec[h] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
