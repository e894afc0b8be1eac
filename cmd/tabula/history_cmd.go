package main

import (
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/tabula/internal/config"
	"github.com/carlosrabelo/tabula/internal/db"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/internal/services"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or show the datasets of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := c.cfg.ResolvePaths("")
			if err != nil {
				return err
			}
			path := paths.HistoryDB
			if path == "" {
				path = config.DefaultHistoryFile
			}
			if !config.FileExists(path) {
				return apperrors.NewNotFoundError("run history").WithContext("path", path)
			}

			database, err := db.OpenDB(path)
			if err != nil {
				return apperrors.NewStorageError("failed to open history database", err).WithContext("path", path)
			}
			defer database.Close()
			repo := repository.NewSQLiteRunRepo(database)

			if len(args) == 1 {
				m, err := repo.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.printer().Results(m)
			}

			runs, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.printer().Runs(runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", services.DefaultRunLimit, "Maximum number of runs to list")
	return cmd
}
