package app

import (
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-linkage-engine/index"
	"github.com/gcbaptista/go-linkage-engine/internal/loader"
	"github.com/gcbaptista/go-linkage-engine/internal/tokenizer"
)

// NewResolveCommand creates the resolve command.
func (a *App) NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Resolve organization names against the entity roster",
		Example: `  linkage resolve "ACME LABS" "Globex Corp."
  LINKAGE_INPUTS_ENTITIES=lookups/entities.csv linkage resolve "Initech"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, meta, err := loader.LoadEntities(a.settings.Inputs.Entities)
			if err != nil {
				return err
			}
			if meta.Malformed > 0 {
				a.logger.Warn().Int("rows", meta.Malformed).Msg("Skipped malformed entity rows")
			}
			idx := index.BuildEntityIndex(roster)
			for _, c := range idx.Collisions() {
				a.logger.Warn().
					Str("canonical_name", c.CanonicalName).
					Str("kept_entity_id", c.KeptEntityID).
					Str("shadowed_entity_id", c.ShadowedEntityID).
					Msg("Entity name collision; first entity wins")
			}

			config := tablewriter.Config{}
			config.Row.Alignment = tw.CellAlignment{PerColumn: []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight}}
			table := tablewriter.NewTable(cmd.OutOrStdout(), tablewriter.WithConfig(config))
			table.Header("NAME", "CANONICAL", "ENTITY_ID")
			for _, name := range args {
				id, ok := idx.Resolve(name)
				if !ok {
					id = "-"
				}
				if err := table.Append(name, tokenizer.Canonicalize(name), id); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
