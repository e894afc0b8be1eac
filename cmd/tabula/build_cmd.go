package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/tabula/internal/db"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/internal/services"
	"github.com/carlosrabelo/tabula/pkg/contracts"
)

func newBuildCmd(c *cli) *cobra.Command {
	var (
		in, out, sheet, synonyms, reference string
		only                                []string
		workers, rowWorkers                 int
		bom                                 bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the dataset catalogue from an enrollment export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			flags := cmd.Flags()
			override(flags, "in", &cfg.Paths.InputFile, in)
			override(flags, "out", &cfg.Paths.OutputDir, out)
			override(flags, "sheet", &cfg.Paths.Sheet, sheet)
			override(flags, "synonyms", &cfg.Paths.SynonymsFile, synonyms)
			override(flags, "only", &cfg.Datasets.Only, only)
			override(flags, "reference-date", &cfg.Datasets.ReferenceDate, reference)
			override(flags, "workers", &cfg.Datasets.Workers, workers)
			override(flags, "row-workers", &cfg.Datasets.RowWorkers, rowWorkers)
			override(flags, "bom", &cfg.Datasets.BOM, bom)
			if err := cfg.Validate(); err != nil {
				return apperrors.NewConfigError("invalid build options", err)
			}
			if cfg.Paths.InputFile == "" {
				return apperrors.NewConfigError("an input file is required (--in)", nil)
			}

			refDate, err := cfg.Reference()
			if err != nil {
				return apperrors.NewConfigError("invalid reference date", err)
			}
			paths, err := cfg.ResolvePaths("")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), c.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
			}
			defer providers.Shutdown(ctx)

			metrics, err := infrastructure.NewDatasetMetrics(providers.Meter)
			if err != nil {
				return fmt.Errorf("failed to create metrics: %w", err)
			}
			opts := []services.BuildOption{services.WithBuildMetrics(metrics)}

			if paths.HistoryDB != "" {
				database, err := db.OpenDB(paths.HistoryDB)
				if err != nil {
					return apperrors.NewStorageError("failed to open history database", err).
						WithContext("path", paths.HistoryDB)
				}
				defer database.Close()
				opts = append(opts, services.WithRecorder(repository.NewSQLiteRunRepo(database)))
			}

			svc := services.NewBuildService(c.logger, opts...)
			m, err := svc.Build(ctx, services.BuildRequest{
				InputFile:    paths.InputFile,
				OutputDir:    paths.OutputDir,
				Sheet:        cfg.Paths.Sheet,
				SynonymsFile: paths.SynonymsFile,
				Only:         cfg.Datasets.Only,
				Reference:    refDate,
				Workers:      cfg.Datasets.Workers,
				RowWorkers:   cfg.Datasets.RowWorkers,
				BOM:          cfg.Datasets.BOM,
			})
			if err != nil {
				return err
			}
			return c.printer().Results(m)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in, "in", "", "Enrollment export (.xlsx, .xlsm, .xltx or .csv)")
	flags.StringVar(&out, "out", "", "Output directory for the datasets")
	flags.StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	flags.StringVar(&synonyms, "synonyms", "", "YAML file with extra header synonyms")
	flags.StringSliceVar(&only, "only", nil, "Generate only these datasets (comma separated file names)")
	flags.StringVar(&reference, "reference-date", "", "Reference date for open enrollments (YYYY-MM-DD, default today)")
	flags.IntVar(&workers, "workers", 0, "Datasets generated in parallel")
	flags.IntVar(&rowWorkers, "row-workers", 0, "Workers for row enrichment")
	flags.BoolVar(&bom, "bom", false, "Prefix CSV files with a UTF-8 byte order mark")

	return cmd
}
