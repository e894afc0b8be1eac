package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/carlosrabelo/tabula/internal/config"
	"github.com/carlosrabelo/tabula/internal/console"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	"github.com/carlosrabelo/tabula/pkg/contracts"
)

// cli carries the state shared by every subcommand once the root
// command's pre-run has loaded configuration
type cli struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	logLevel   string
	history    string

	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
}

// NewRootCmd creates the top-level "tabula" command. Command output goes to
// out, JSON logs to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "tabula",
		Short:         "Normalize SUAP enrollment exports and generate the dataset catalogue",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&c.history, "history", "", "Run history database (SQLite)")

	root.AddCommand(
		newBuildCmd(c),
		newServeCmd(c),
		newHistoryCmd(c),
		newFieldsCmd(c),
		newVersionCmd(c),
	)
	return root
}

// setup loads configuration and builds the logger. Flags set on the command
// line override the file and the environment.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}

	override(cmd.Flags(), "log-level", &cfg.Logging.Level, c.logLevel)
	override(cmd.Flags(), "history", &cfg.History.Path, c.history)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, file, err := infrastructure.NewLogger(cfg.Logging, c.errOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	c.cfg = cfg
	c.logger = logger
	c.logFile = file
	return nil
}

// override copies a flag's value into dst when the flag was given on the
// command line
func override[T any](flags *pflag.FlagSet, name string, dst *T, value T) {
	if flags.Changed(name) {
		*dst = value
	}
}

func (c *cli) teardown() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

func (c *cli) printer() *console.Printer {
	return console.NewPrinter(c.out)
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.out, contracts.GetFullVersionString())
			return err
		},
	}
}
