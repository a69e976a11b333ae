package keywords

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gcbaptista/go-linkage-engine/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewTable(t *testing.T) {
	table := NewTable(
		[]string{"Anomaly", "  ", "directed-energy", "anomaly", "UAP", "--"},
		map[string]float64{"anomaly": 2.0},
	)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, Keyword{Term: "anomaly", Pattern: "anomaly", Weight: 2.0}, table.Keywords[0])
	assert.Equal(t, Keyword{Term: "directed-energy", Pattern: "directed energy", Weight: DefaultWeight}, table.Keywords[1])
	assert.Equal(t, "uap", table.Keywords[2].Term)
}

func TestTable_Hits(t *testing.T) {
	table := NewTable([]string{"sensor", "directed energy", "uap", "array"}, nil)

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"phrase across punctuation", "Directed-Energy sensor ARRAY", []string{"sensor", "directed energy", "array"}},
		{"no partial tokens", "Sensors and arrays", nil},
		{"table order not text order", "array of UAP sensor", []string{"sensor", "uap", "array"}},
		{"empty text", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var terms []string
			for _, k := range table.Hits(tt.text) {
				terms = append(terms, k.Term)
			}
			assert.Equal(t, tt.expected, terms)
		})
	}

	var empty *Table
	assert.Nil(t, empty.Hits("sensor"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	kw := writeFile(t, dir, "keywords.txt", "\ufeffanomaly\n\nsensor\r\nANOMALY\nuap\n")
	weights := writeFile(t, dir, "weights.csv", "keyword,weight\nAnomaly,2.0\nsensor,not-a-number\nuap,NaN\n")

	table, problems := Load(kw, weights)
	assert.Empty(t, problems)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, 2.0, table.Keywords[0].Weight)
	assert.Equal(t, DefaultWeight, table.Keywords[1].Weight)
	assert.Equal(t, DefaultWeight, table.Keywords[2].Weight)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	kw := writeFile(t, dir, "keywords.txt", "sensor\n")

	table, problems := Load(kw, filepath.Join(dir, "missing.csv"))
	require.Len(t, problems, 1)
	assert.True(t, errors.Is(problems[0], apperrors.ErrMissingInput))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, DefaultWeight, table.Keywords[0].Weight)

	table, problems = Load(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "missing.csv"))
	assert.Len(t, problems, 2)
	assert.Equal(t, 0, table.Len())
}
