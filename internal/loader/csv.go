// Package loader reads the pipeline's CSV inputs into typed records.
package loader

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gcbaptista/go-linkage-engine/internal/errors"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// Table is a CSV file held in memory: a header and its data rows.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
	// Malformed counts data rows dropped because they could not be parsed
	// or carried values past the last header column.
	Malformed int
}

// Meta describes how an input file was read.
type Meta struct {
	Header    []string
	Malformed int
}

// Meta returns the table's header and malformed row count.
func (t *Table) Meta() Meta {
	return Meta{Header: t.Header, Malformed: t.Malformed}
}

// ReadTable reads a CSV file with a header row. A file that does not exist is
// reported as a MissingInputError for the given stage; an empty file yields
// an empty table.
func ReadTable(stage, path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewMissingInputError(stage, path)
	}
	f, err := os.Open(path) // #nosec G304 -- input paths come from run configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError(stage, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table.Path = path
	return table, nil
}

// ParseTable reads CSV data with a header row from r. Malformed data rows
// are skipped and counted; only a read failure or an unparsable header
// aborts the table.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{}
	header, err := reader.Read()
	if err == io.EOF {
		return table, nil
	}
	if err != nil {
		return nil, err
	}
	table.Header = make([]string, len(header))
	for i, cell := range header {
		table.Header[i] = cleanHeader(cell)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			table.Malformed++
			continue
		}
		if err != nil {
			return nil, err
		}
		if blankRow(row) {
			continue
		}
		if len(row) > len(table.Header) && !blankRow(row[len(table.Header):]) {
			table.Malformed++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Columns returns row i bound to the header.
func (t *Table) Columns(i int) model.Columns {
	return model.Columns{Header: t.Header, Values: t.Rows[i]}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

func cleanHeader(cell string) string {
	return strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
