package model

import "time"

// Sighting is a reported aerial sighting. Time, Lat and Lon are nil when the
// raw cell could not be parsed; such sightings never take part in matching.
type Sighting struct {
	ID       string     `json:"id"`
	SourceID string     `json:"source_id,omitempty"`
	RawTime  string     `json:"date_time"`
	Time     *time.Time `json:"-"`
	Lat      *float64   `json:"lat"`
	Lon      *float64   `json:"lon"`
}

// Matchable reports whether the sighting has a parsed time and coordinates.
func (s Sighting) Matchable() bool {
	return s.Time != nil && s.Lat != nil && s.Lon != nil
}

// Confound is a mundane aerial activity report (drone flight, aircraft
// operation) that might explain a sighting.
type Confound struct {
	ID          string     `json:"id"`
	RawTime     string     `json:"date_time"`
	Time        *time.Time `json:"-"`
	Lat         *float64   `json:"lat"`
	Lon         *float64   `json:"lon"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
}

// Matchable reports whether the confound has a parsed time and coordinates.
func (c Confound) Matchable() bool {
	return c.Time != nil && c.Lat != nil && c.Lon != nil
}

// MatchPair is one candidate explanation: a confound within the distance and
// time window of a sighting. Many confounds may match one sighting and vice versa.
type MatchPair struct {
	SightingID       string        `json:"sighting_id"`
	SightingTime     string        `json:"sighting_time"`
	SightingLat      float64       `json:"sighting_lat"`
	SightingLon      float64       `json:"sighting_lon"`
	ConfoundID       string        `json:"confound_id"`
	ConfoundTime     string        `json:"confound_time"`
	ConfoundLat      float64       `json:"confound_lat"`
	ConfoundLon      float64       `json:"confound_lon"`
	ConfoundDesc     string        `json:"confound_desc"`
	ConfoundLocation string        `json:"confound_location"`
	DistanceMeters   float64       `json:"dist_m"`
	TimeDelta        time.Duration `json:"-"` // Derived: confound time minus sighting time
}
