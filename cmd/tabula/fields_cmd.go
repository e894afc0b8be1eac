package main

import (
	"github.com/spf13/cobra"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/schema"
)

func newFieldsCmd(c *cli) *cobra.Command {
	var synonyms string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Print the canonical fields and the header spellings each accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.Paths.SynonymsFile
			override(cmd.Flags(), "synonyms", &path, synonyms)

			table := schema.DefaultSynonyms()
			if path != "" {
				var err error
				if table, err = schema.LoadSynonymOverlay(path, table); err != nil {
					return apperrors.NewConfigError("invalid synonym overlay", err).WithContext("path", path)
				}
			}
			return c.printer().Fields(table)
		},
	}

	cmd.Flags().StringVar(&synonyms, "synonyms", "", "YAML file with extra header synonyms")
	return cmd
}
