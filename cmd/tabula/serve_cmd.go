package main

import (
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/tabula/internal/app"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts"
)

func newServeCmd(c *cli) *cobra.Command {
	var out, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated datasets and run history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			override(cmd.Flags(), "out", &cfg.Paths.OutputDir, out)
			override(cmd.Flags(), "addr", &cfg.Server.Addr, addr)
			if err := cfg.Validate(); err != nil {
				return apperrors.NewConfigError("invalid server options", err)
			}

			paths, err := cfg.ResolvePaths("")
			if err != nil {
				return err
			}

			application, err := app.NewApplication(cfg, paths, contracts.Version, c.logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Directory holding the generated datasets")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	return cmd
}
