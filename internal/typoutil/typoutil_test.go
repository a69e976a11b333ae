package typoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		limit int
		want  int
	}{
		{"both empty", "", "", -1, 0},
		{"a empty", "", "acme", -1, 4},
		{"b empty", "acme", "", -1, 4},
		{"identical", "acme labs", "acme labs", -1, 0},
		{"substitution", "acme labs", "acme labz", -1, 1},
		{"insertion", "globex", "globexx", -1, 1},
		{"deletion", "initech", "intech", -1, 1},
		{"transposition", "acme", "amce", -1, 1},
		{"multiple edits", "saturday", "sunday", -1, 3},
		{"unicode runes", "résumé", "resume", -1, 2},
		{"length cutoff", "acme", "acme laboratories", 2, 3},
		{"row cutoff", "abcdef", "uvwxyz", 2, 3},
		{"within limit", "acme labs", "acme lab", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b, tt.limit))
			if tt.limit < 0 {
				assert.Equal(t, tt.want, Distance(tt.b, tt.a, tt.limit), "distance is symmetric")
			}
		})
	}
}

func TestClosest(t *testing.T) {
	roster := []string{"acme labs", "acme laboratories", "globex corporation", "acme lab", "hooli"}

	tests := []struct {
		name        string
		term        string
		maxDistance int
		limit       int
		want        []Suggestion
	}{
		{
			name: "nearest first", term: "acme labz", maxDistance: 2,
			want: []Suggestion{{"acme labs", 1}, {"acme lab", 1}},
		},
		{
			name: "limit", term: "acme labz", maxDistance: 2, limit: 1,
			want: []Suggestion{{"acme labs", 1}},
		},
		{
			name: "exact match skipped", term: "acme labs", maxDistance: 1,
			want: []Suggestion{{"acme lab", 1}},
		},
		{"nothing close", "initech", 2, 0, []Suggestion{}},
		{"zero budget", "acme labz", 0, 0, []Suggestion{}},
		{"empty term", "", 2, 0, []Suggestion{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Closest(tt.term, roster, tt.maxDistance, tt.limit))
		})
	}
}

func TestMaxDistanceFor(t *testing.T) {
	assert.Equal(t, 0, MaxDistanceFor("ibm"))
	assert.Equal(t, 1, MaxDistanceFor("globex"))
	assert.Equal(t, 2, MaxDistanceFor("acme laboratories"))
}
