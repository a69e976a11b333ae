package geo

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-linkage-engine/model"
)

// Options bound the deconfliction window.
type Options struct {
	MaxDistanceMeters float64       // inclusive
	MaxTimeDelta      time.Duration // inclusive on both sides of the sighting
	Workers           int           // concurrent sightings; <= 0 means runtime.NumCPU()
}

// DefaultOptions returns a 5 km, 60 minute window.
func DefaultOptions() Options {
	return Options{
		MaxDistanceMeters: 5000,
		MaxTimeDelta:      60 * time.Minute,
		Workers:           runtime.NumCPU(),
	}
}

type timedConfound struct {
	ordinal int
	at      time.Time
}

// Matcher finds confounds near a sighting. Confounds are sorted by time once
// so each lookup only scans its time window.
type Matcher struct {
	confounds []model.Confound
	byTime    []timedConfound
	opts      Options
}

// NewMatcher indexes the matchable confounds. Confounds without a parsed time
// or coordinates are left out.
func NewMatcher(confounds []model.Confound, opts Options) *Matcher {
	m := &Matcher{confounds: confounds, opts: opts}
	for i, c := range confounds {
		if !c.Matchable() {
			continue
		}
		m.byTime = append(m.byTime, timedConfound{ordinal: i, at: *c.Time})
	}
	sort.SliceStable(m.byTime, func(a, b int) bool {
		return m.byTime[a].at.Before(m.byTime[b].at)
	})
	return m
}

// Indexed returns how many confounds take part in matching.
func (m *Matcher) Indexed() int {
	return len(m.byTime)
}

// Match returns every confound within the distance and time window of s, in
// confound input order. A sighting that is not matchable matches nothing.
func (m *Matcher) Match(s model.Sighting) []model.MatchPair {
	if !s.Matchable() {
		return nil
	}
	from := s.Time.Add(-m.opts.MaxTimeDelta)
	to := s.Time.Add(m.opts.MaxTimeDelta)

	start := sort.Search(len(m.byTime), func(i int) bool {
		return !m.byTime[i].at.Before(from)
	})

	var ordinals []int
	for i := start; i < len(m.byTime) && !m.byTime[i].at.After(to); i++ {
		c := m.confounds[m.byTime[i].ordinal]
		if Haversine(*s.Lat, *s.Lon, *c.Lat, *c.Lon) <= m.opts.MaxDistanceMeters {
			ordinals = append(ordinals, m.byTime[i].ordinal)
		}
	}
	if len(ordinals) == 0 {
		return nil
	}
	sort.Ints(ordinals)

	pairs := make([]model.MatchPair, 0, len(ordinals))
	for _, ord := range ordinals {
		c := m.confounds[ord]
		pairs = append(pairs, model.MatchPair{
			SightingID:       s.ID,
			SightingTime:     s.RawTime,
			SightingLat:      *s.Lat,
			SightingLon:      *s.Lon,
			ConfoundID:       c.ID,
			ConfoundTime:     c.RawTime,
			ConfoundLat:      *c.Lat,
			ConfoundLon:      *c.Lon,
			ConfoundDesc:     c.Description,
			ConfoundLocation: c.Location,
			DistanceMeters:   Haversine(*s.Lat, *s.Lon, *c.Lat, *c.Lon),
			TimeDelta:        c.Time.Sub(*s.Time),
		})
	}
	return pairs
}

// Deconflict matches every sighting against the confounds. Output is in
// sighting input order, then confound input order. Sightings are matched
// concurrently; the context stops outstanding work.
func Deconflict(ctx context.Context, sightings []model.Sighting, confounds []model.Confound, opts Options) ([]model.MatchPair, error) {
	m := NewMatcher(confounds, opts)
	if m.Indexed() == 0 {
		return []model.MatchPair{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perSighting := make([][]model.MatchPair, len(sightings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range sightings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perSighting[i] = m.Match(sightings[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range perSighting {
		total += len(p)
	}
	out := make([]model.MatchPair, 0, total)
	for _, p := range perSighting {
		out = append(out, p...)
	}
	return out, nil
}
