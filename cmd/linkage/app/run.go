package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-linkage-engine/internal/logging"
	"github.com/gcbaptista/go-linkage-engine/internal/pipeline"
	"github.com/gcbaptista/go-linkage-engine/model"
)

// NewRunCommand creates the run command.
func (a *App) NewRunCommand() *cobra.Command {
	var (
		label    string
		noExport bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the linkage pipeline once and write the output tables",
		Long: `Run executes every stage in order: keywords, entities, research, sbir,
projects, forecasts and deconflict. A stage whose input is missing is
skipped and recorded in the manifest; the run itself still succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), a.logger)
			result, err := pipeline.New(a.settings).Run(ctx, pipeline.Options{
				Label:    label,
				NoExport: noExport,
			})
			if err != nil {
				return err
			}
			return writeManifest(cmd.OutOrStdout(), &result.Manifest, format)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "label recorded with the run")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "compute results without writing files")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "summary format: text, json, yaml")

	for _, input := range []struct{ flag, key, usage string }{
		{"entities", "inputs.entities", "entity roster CSV"},
		{"research", "inputs.research", "research outputs CSV"},
		{"sbir", "inputs.sbir", "SBIR/STTR awards CSV"},
		{"projects", "inputs.projects", "external projects CSV"},
		{"forecast", "inputs.forecast", "forecast opportunities CSV"},
		{"sightings", "inputs.sightings", "sightings CSV"},
		{"confounds", "inputs.confounds", "confound reports CSV"},
		{"keywords", "keywords.file", "newline-delimited keyword list"},
		{"weights", "keywords.weights_file", "keyword,weight CSV"},
	} {
		cmd.Flags().String(input.flag, "", input.usage)
		if err := a.viper.BindPFlag(input.key, cmd.Flags().Lookup(input.flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func writeManifest(w io.Writer, m *model.Manifest, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "yaml":
		data, err := yaml.MarshalWithOptions(m, yaml.Indent(2), yaml.IndentSequence(true))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text", "":
	default:
		return fmt.Errorf("unknown format %q (must be text, json or yaml)", format)
	}

	fmt.Fprintf(w, "run %s", m.RunID)
	if m.Label != "" {
		fmt.Fprintf(w, " (%s)", m.Label)
	}
	fmt.Fprintln(w)
	for _, s := range m.Stages {
		line := fmt.Sprintf("  %-10s %-7s rows=%d output=%d", s.Stage, s.Status, s.Rows, s.Output)
		if s.Excluded > 0 {
			line += fmt.Sprintf(" excluded=%d", s.Excluded)
		}
		if s.Reason != "" {
			line += "  " + s.Reason
		}
		fmt.Fprintln(w, line)
	}
	if n := len(m.Collisions); n > 0 {
		fmt.Fprintf(w, "  %d entity name collision(s); see manifest\n", n)
	}
	for _, f := range m.Files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	return nil
}
