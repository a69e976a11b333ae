package loader

import (
	"strconv"
	"time"

	"github.com/gcbaptista/go-linkage-engine/internal/entities"
	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/internal/geo"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// LoadEntities reads the entity roster. The name and entity_id columns are
// required; type is optional and inferred from the name when blank.
func LoadEntities(path string) ([]model.Entity, Meta, error) {
	t, err := ReadTable(model.StageEntities, path)
	if err != nil {
		return nil, Meta{}, err
	}
	for _, col := range []string{"name", "entity_id"} {
		if !t.HasColumn(col) && t.Len() > 0 {
			return nil, Meta{}, errors.NewValidationError(col, "entity roster "+path+" has no '"+col+"' column")
		}
	}

	out := make([]model.Entity, 0, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		name := model.Deref(row.Optional("name"))
		id := model.Deref(row.Optional("entity_id"))
		if name == "" || id == "" {
			continue
		}
		rawType, _ := row.Get("type")
		out = append(out, model.Entity{
			EntityID:    id,
			DisplayName: name,
			EntityType:  entities.NormalizeType(rawType, name),
		})
	}
	return out, t.Meta(), nil
}

// LoadResearch reads research-output records.
func LoadResearch(path string) ([]model.ResearchOutput, Meta, error) {
	t, err := ReadTable(model.StageResearch, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.ResearchOutput, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		out[i] = model.ResearchOutput{
			OstiID:          row.Optional(model.ColOstiID),
			AwardDOIs:       row.Optional(model.ColAwardDOIs),
			ContractNumbers: row.Optional(model.ColContractNumbers),
			SponsorOrg:      row.Optional(model.ColSponsorOrg),
			ResearchOrg:     row.Optional(model.ColResearchOrg),
			Title:           row.Optional(model.ColTitle),
			Subject:         row.Optional(model.ColSubject),
			Raw:             row,
		}
	}
	return out, t.Meta(), nil
}

// LoadAwards reads SBIR/STTR award records.
func LoadAwards(path string) ([]model.Award, Meta, error) {
	t, err := ReadTable(model.StageSBIR, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.Award, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		out[i] = model.Award{
			Company:            row.Optional(model.ColCompany),
			Title:              row.Optional(model.ColTitle),
			Abstract:           row.Optional(model.ColAbstract),
			SolicitationNumber: row.Optional(model.ColSolicitationNumber),
			AwardAmount:        row.Optional(model.ColAwardAmount),
			AwardStartDate:     row.Optional(model.ColAwardStartDate),
			Program:            row.Optional(model.ColProgram),
			Phase:              row.Optional(model.ColPhase),
			Year:               row.Optional(model.ColYear),
			Raw:                row,
		}
	}
	return out, t.Meta(), nil
}

// LoadProjects reads external project listings.
func LoadProjects(path string) ([]model.ExternalProject, Meta, error) {
	t, err := ReadTable(model.StageProjects, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.ExternalProject, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		out[i] = model.ExternalProject{
			ProjectTitle: row.Optional(model.ColProjectTitle),
			ProgramHint:  row.Optional(model.ColProgramHint),
			URL:          row.Optional(model.ColURL),
			Raw:          row,
		}
	}
	return out, t.Meta(), nil
}

// LoadForecasts reads forecasted procurement opportunities.
func LoadForecasts(path string) ([]model.Forecast, Meta, error) {
	t, err := ReadTable(model.StageForecasts, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.Forecast, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		out[i] = model.Forecast{
			Title: row.Optional(model.ColTitle),
			NAICS: row.Optional(model.ColNAICS),
			Raw:   row,
		}
	}
	return out, t.Meta(), nil
}

// LoadSightings reads sightings. Rows whose time or coordinates do not parse
// are kept with the unparsed values nil so they can be counted; they never
// take part in matching.
func LoadSightings(path string) ([]model.Sighting, Meta, error) {
	t, err := ReadTable(model.StageDeconflict, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.Sighting, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		id, _ := row.Get("id")
		sourceID, _ := row.Get("source_id")
		raw, _ := row.Get("date_time")
		s := model.Sighting{ID: id, SourceID: sourceID, RawTime: raw}
		if s.ID == "" {
			s.ID = strconv.Itoa(i + 1)
		}
		s.Time, s.Lat, s.Lon = parseEvent(row)
		out[i] = s
	}
	return out, t.Meta(), nil
}

// LoadConfounds reads confound reports. The id column is optional; rows
// without one are numbered from 1 in file order.
func LoadConfounds(path string) ([]model.Confound, Meta, error) {
	t, err := ReadTable(model.StageDeconflict, path)
	if err != nil {
		return nil, Meta{}, err
	}
	out := make([]model.Confound, t.Len())
	for i := range t.Rows {
		row := t.Columns(i)
		id, _ := row.Get("id")
		raw, _ := row.Get("date_time")
		desc, _ := row.Get("description")
		location, _ := row.Get("location")
		c := model.Confound{ID: id, RawTime: raw, Description: desc, Location: location}
		if c.ID == "" {
			c.ID = strconv.Itoa(i + 1)
		}
		c.Time, c.Lat, c.Lon = parseEvent(row)
		out[i] = c
	}
	return out, t.Meta(), nil
}

func parseEvent(row model.Columns) (*time.Time, *float64, *float64) {
	raw, _ := row.Get("date_time")
	latRaw, _ := row.Get("lat")
	lonRaw, _ := row.Get("lon")

	var at *time.Time
	if t, err := geo.ParseTimestamp(raw); err == nil {
		at = &t
	}
	var lat, lon *float64
	if v, err := geo.ParseCoordinate("lat", latRaw, 90); err == nil {
		lat = &v
	}
	if v, err := geo.ParseCoordinate("lon", lonRaw, 180); err == nil {
		lon = &v
	}
	return at, lat, lon
}
