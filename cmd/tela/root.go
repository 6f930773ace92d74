package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tela/internal/cli"
	"github.com/aretw0/tela/internal/config"
	"github.com/aretw0/tela/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tela",
	Short: "tela translates LTL formulas into Emerson-Lei automata",
	Long: `tela builds a self-loop alternating automaton for an LTL formula and turns it
into a nondeterministic automaton with generic (Emerson-Lei) acceptance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "tela.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the file)")
}

// setup loads the configuration file and builds the logger.
func setup(cmd *cobra.Command) (config.File, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	file, err := config.Load(path)
	if err != nil {
		return file, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		file.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	level, err := logging.ParseLevel(file.LogLevel)
	if err != nil {
		return file, nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)
	return file, logger, nil
}
