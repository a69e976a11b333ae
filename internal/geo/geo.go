// Package geo matches sightings against mundane aerial activity that
// happened close by in space and time.
package geo

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371000.0

// TimestampLayouts are tried in order by ParseTimestamp. Each zero-padded
// layout is followed by one that also accepts single-digit months and days.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-1-2 15:04:05",
	"2006-01-02",
	"2006-1-2",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// Haversine returns the great-circle distance in meters between two points
// given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push a fractionally above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// ParseTimestamp parses a timestamp cell with the first layout that fits.
// Surrounding whitespace is ignored.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value != "" {
		for _, layout := range TimestampLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.NewUnparsableFieldError("date_time", raw, nil)
}

// ParseCoordinate parses a latitude or longitude cell. limit is the largest
// absolute value allowed (90 for latitude, 180 for longitude).
func ParseCoordinate(field, raw string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.NewUnparsableFieldError(field, raw, err)
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, errors.NewUnparsableFieldError(field, raw, nil)
	}
	return v, nil
}
