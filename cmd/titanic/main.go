package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Arya-f4/machine-learning-uts/internal/config"
	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/logging"
	"github.com/Arya-f4/machine-learning-uts/internal/pipeline"
)

// app is the state shared by every subcommand once the root pre-run hook
// has loaded the configuration.
type app struct {
	runner  *pipeline.Runner
	logger  zerolog.Logger
	console *console
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "titanic",
		Short:         "Titanic passenger preprocessing and survival model toolkit",
		Long:          `Cleans, normalizes and reduces the Titanic passenger table and trains a balanced random forest on it`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stdout, stderr)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML or TOML config file")
	flags.String("input", "", "input CSV (overrides paths.input)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", logging.FormatAuto, "log format (auto|console|json)")

	root.AddCommand(
		a.cleanCmd(),
		a.normalizeCmd(),
		a.reduceCmd(),
		a.trainCmd(),
		a.runCmd(),
		a.predictCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, stdout, stderr io.Writer) error {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	logger, err := logging.New(stderr, level, format)
	if err != nil {
		return err
	}

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if input, _ := flags.GetString("input"); input != "" {
		cfg.Paths.Input = input
	}
	if flags.Lookup("cv-folds") != nil && flags.Changed("cv-folds") {
		cfg.CVFolds, _ = flags.GetInt("cv-folds")
	}
	if flags.Lookup("trees") != nil && flags.Changed("trees") {
		cfg.Forest.NTrees, _ = flags.GetInt("trees")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.logger = logger
	a.runner = pipeline.NewRunner(cfg, logger)
	a.console = newConsole(stdout)
	return nil
}

// handle turns a missing input file into a logged, successful exit.
func (a *app) handle(err error) error {
	if errors.Is(err, data.ErrFileNotFound) {
		a.logger.Error().Err(err).Msg("input file not found, nothing was written")
		return nil
	}
	return err
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
