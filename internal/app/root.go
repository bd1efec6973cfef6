package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

var (
	dbPath     string
	recipePath string
	verbose    bool
	noHistory  bool

	// newRunner builds the process runner used by apply, check and watch.
	newRunner = func() ensure.Runner { return &ensure.ShellRunner{} }

	// RootCmd is the root command for pkgensure
	RootCmd = &cobra.Command{
		Use:   "pkgensure",
		Short: "Keep host packages installed with check-then-install recipes",
		Long: `pkgensure keeps packages present on this host.

Each check in a recipe runs a list command. If its output contains
"not installed", the check's install commands run in order, in one shell,
as the configured user in the configured directory. Otherwise nothing runs.

Without a recipe file, the built-in recipe installs the PHP
Text_LanguageDetect PEAR package as root from /tmp.

Recipes are read from --recipe, then ~/.config/pkgensure/recipe.toml.

Examples:
  # Show the recipe that would be applied
  pkgensure recipe

  # Report which packages are missing, without installing
  pkgensure check

  # Install whatever is missing
  pkgensure apply

  # Re-apply whenever the recipe file changes
  pkgensure watch --recipe /etc/pkgensure/recipe.toml

  # Show recent runs
  pkgensure history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(withLogger(commandContext(cmd), logger))
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "run history database path (default: ~/.pkgensure/pkgensure.db)")
	RootCmd.PersistentFlags().StringVar(&recipePath, "recipe", "", "recipe file (default: ~/.config/pkgensure/recipe.toml, else built-in)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including captured command output")
	RootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(applyCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(recipeCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// commandContext returns cmd's context, or a background context when the
// command is run outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// stateDir returns ~/.pkgensure, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".pkgensure")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pkgensure directory: %w", err)
	}

	return dir, nil
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pkgensure.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}
