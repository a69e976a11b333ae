package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/gcbaptista/go-linkage-engine/model"
)

// ManifestName is the manifest file name without extension.
const ManifestName = "_manifest"

// Options controls what a Writer produces besides the CSV files.
type Options struct {
	JSON           bool   // Mirror every sheet as a JSON array of records
	JSONLimit      int    // Row cap per JSON mirror; 0 means all rows
	ManifestFormat string // "json" (default) or "yaml"
}

// Writer writes sheets into one output directory and remembers the files it
// produced.
type Writer struct {
	dir   string
	opts  Options
	files []string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string, opts Options) (*Writer, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, opts: opts}, nil
}

// Files returns the names of the files written so far, relative to the
// output directory, in write order.
func (w *Writer) Files() []string {
	out := make([]string, len(w.files))
	copy(out, w.files)
	return out
}

// WriteSheet writes s as CSV and, when enabled, as a JSON mirror.
func (w *Writer) WriteSheet(s *Sheet) error {
	csvName := s.File + ".csv"
	if err := w.writeCSV(csvName, s); err != nil {
		return err
	}
	w.files = append(w.files, csvName)

	if !w.opts.JSON {
		return nil
	}
	jsonName := s.File + ".json"
	if err := w.writeJSON(jsonName, s.Records(0, w.opts.JSONLimit), false); err != nil {
		return err
	}
	w.files = append(w.files, jsonName)
	return nil
}

// WriteManifest writes the run manifest listing every file written so far.
// It returns the manifest file name.
func (w *Writer) WriteManifest(m *model.Manifest) (string, error) {
	m.Files = w.Files()

	if w.opts.ManifestFormat == "yaml" {
		name := ManifestName + ".yaml"
		data, err := yaml.MarshalWithOptions(m, yaml.Indent(2), yaml.IndentSequence(true))
		if err != nil {
			return "", fmt.Errorf("marshaling manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(w.dir, name), data, 0600); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
		return name, nil
	}

	name := ManifestName + ".json"
	if err := w.writeJSON(name, m, true); err != nil {
		return "", err
	}
	return name, nil
}

func (w *Writer) writeCSV(name string, s *Sheet) (err error) {
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path) // #nosec G304 -- output directory comes from run configuration
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file %s: %w", path, closeErr)
		}
	}()

	cw := csv.NewWriter(file)
	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeJSON(name string, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
