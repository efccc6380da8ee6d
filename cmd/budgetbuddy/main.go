/**
 * @description
 * Entry point for the budget API. The root command loads .env, reads and
 * validates configuration and sets up logging before any subcommand runs;
 * with no subcommand it serves HTTP.
 *
 * @dependencies
 * - github.com/spf13/cobra: command tree.
 * - github.com/joho/godotenv: For loading .env files during local development.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chrystalio/budget-buddy-api/internal/config"
	"github.com/chrystalio/budget-buddy-api/internal/logging"
)

var version = "dev"

// runtimeEnv is what every subcommand receives from the root pre-run.
type runtimeEnv struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	env := &runtimeEnv{}

	root := &cobra.Command{
		Use:           "budgetbuddy",
		Short:         "REST API for a Notion-backed personal budget",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			return env.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env)
		},
	}

	root.AddCommand(serveCmd(env), checkConfigCmd(env), versionCmd())
	return root
}

// load reads configuration and builds the logger. Invalid configuration is
// fatal before anything is served.
func (e *runtimeEnv) load() error {
	// Load .env file for local development.
	envFileErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	e.cfg = cfg
	e.logger = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(e.logger)

	if envFileErr != nil {
		e.logger.Debug("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}

// skipsConfig reports commands that must work without a valid environment.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return true
		}
	}
	return false
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "budgetbuddy %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
