package app

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command. Settings are validated
// before any command runs, so reaching RunE means they are valid.
func (a *App) NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.MarshalWithOptions(a.settings, yaml.Indent(2), yaml.IndentSequence(true))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
