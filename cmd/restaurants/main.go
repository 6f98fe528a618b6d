// Package main provides the restaurants CLI: one-shot searches and dataset
// checks against a delimited file, without starting the web server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/restaurants/internal/config"
	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/JonMunkholm/restaurants/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	dataset   string
	encodings []string
	delimiter string
	logLevel  string

	cfg  *config.Config
	opts core.LoadOptions
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe renders dataset and search errors with their code and action.
func describe(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

func newRootCmd() *cobra.Command {
	o := &cliOptions{}

	root := &cobra.Command{
		Use:   "restaurants",
		Short: "Search a restaurant dataset from the command line",
		Long: `restaurants loads a delimited restaurant dataset and answers cuisine and
location searches against it, the same way the web server does.

Settings default to the server's environment variables (DATASET_PATH,
DATASET_ENCODINGS, DATASET_DELIMITER, LOG_LEVEL); flags override them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.dataset, "dataset", "", "path to the dataset file (default: $DATASET_PATH or zomato.csv)")
	flags.StringSliceVar(&o.encodings, "encodings", nil, "encodings to try in order (default: utf-8,latin1,iso-8859-1)")
	flags.StringVar(&o.delimiter, "delimiter", "", `field delimiter, a single character or "tab"`)
	flags.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(newSearchCmd(o))
	root.AddCommand(newCheckCmd(o))
	root.AddCommand(newVersionCmd())
	return root
}

// setup merges flags over the environment configuration and installs a
// logger writing to stderr.
func (o *cliOptions) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.Dataset.Path = o.dataset
	}
	if flags.Changed("encodings") {
		cfg.Dataset.Encodings = o.encodings
	}
	if flags.Changed("delimiter") {
		cfg.Dataset.Delimiter = o.delimiter
	}

	level := "warn"
	if flags.Changed("log-level") {
		level = o.logLevel
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format))

	ladder, err := core.NewDecodingLadder(cfg.Dataset.Encodings)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.opts = core.LoadOptions{
		Ladder:   ladder,
		Comma:    cfg.Dataset.Comma(),
		MaxBytes: cfg.Dataset.MaxBytes,
	}
	return nil
}

// load reads the dataset once for a single command.
func (o *cliOptions) load(ctx context.Context) *core.Snapshot {
	ctx = core.ContextWithReloadTrigger(ctx, core.TriggerCLI)
	return core.LoadSnapshot(ctx, o.cfg.Dataset.Path, o.opts)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "restaurants "+version)
		},
	}
}
