// Package cmd provides the CLI commands for rewindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/clicolor"
	"github.com/ryrobes/rewindex/internal/config"
	"github.com/ryrobes/rewindex/internal/core"
	"github.com/ryrobes/rewindex/internal/logging"
	"github.com/ryrobes/rewindex/pkg/version"
)

var (
	flagProjectRoot string
	flagDebug       bool
	loggingCleanup  func()
)

// NewRootCmd creates the root command for the rewindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewindex",
		Short: "Time-travel code search over a local codebase",
		Long: `rewindex watches a codebase, keeps every version of every file it
indexes, and answers full-text search, history, diff, and restore queries
against either the current tree or any point in its past.`,
		Version:       version.Version,
		SilenceUsage:  true,
	}
	cmd.SetVersionTemplate("rewindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagProjectRoot, "project", "", "project root (defaults to the nearest .rewindex.yaml/.git ancestor of the cwd)")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging to ~/.rewindex/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFindFunctionCmd())
	cmd.AddCommand(newFindClassCmd())
	cmd.AddCommand(newFindTODOsCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newPurgeIgnoredCmd())
	cmd.AddCommand(newTimelineCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !flagDebug {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// resolveProjectRoot returns --project verbatim when set, otherwise the
// nearest project root walking up from the working directory.
func resolveProjectRoot() (string, error) {
	if flagProjectRoot != "" {
		return flagProjectRoot, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return config.FindProjectRoot(cwd)
}

// openProject resolves the project root and opens it, logging at the
// configured debug level when --debug is set.
func openProject() (*core.Project, error) {
	root, err := resolveProjectRoot()
	if err != nil {
		return nil, err
	}
	var opts []core.Option
	if flagDebug {
		opts = append(opts, core.WithLogger(slog.Default()))
	}
	return core.Open(root, opts...)
}

// printer returns a clicolor.Printer bound to the command's stdout.
func printer(cmd *cobra.Command) *clicolor.Printer {
	return clicolor.NewPrinter(cmd.OutOrStdout(), false)
}
