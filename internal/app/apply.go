package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/config"
	"github.com/blackwell-systems/pkgensure/internal/ensure"
	"github.com/blackwell-systems/pkgensure/internal/output"
	"github.com/blackwell-systems/pkgensure/internal/store"
)

var applyCmd = &cobra.Command{
	Use:   "apply [package...]",
	Short: "Install every package whose check reports it missing",
	Long: `Run each check in the recipe and install the packages it reports as missing.

For every selected check:
  • The list command runs and its output is searched for "not installed"
    (exact, case-sensitive)
  • If found, the install commands run in order in one shell, as the check's
    user, in the check's working directory
  • If not found, nothing is installed

Install commands run without errexit: a failing command does not stop the
ones after it, and the exit status of the last command decides success.

Checks run one after another. A failed check does not stop the rest; the
command exits non-zero if any check failed.`,
	Example: `  # Apply every check in the recipe
  pkgensure apply

  # Apply a single check
  pkgensure apply Text_LanguageDetect

  # Apply a specific recipe file and show command output
  pkgensure apply --recipe ./recipe.toml -v`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := loggerFromContext(ctx)

	checks, source, err := loadChecks(args)
	if err != nil {
		return err
	}
	logger.Debug("loaded recipe", "source", source, "checks", len(checks))

	history := openHistory(logger)
	if history != nil {
		defer history.Close()
	}

	results, failed := applyChecks(ctx, cmd.OutOrStdout(), logger, ensure.New(newRunner()), checks, history)

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), output.RenderResultTable(results))

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

// loadChecks resolves the recipe and selects the named checks.
func loadChecks(names []string) ([]ensure.InstallCheck, string, error) {
	recipe, source, err := config.Resolve(recipePath)
	if err != nil {
		return nil, source, fmt.Errorf("failed to load recipe: %w", err)
	}

	checks, err := recipe.Select(names...)
	if err != nil {
		return nil, source, fmt.Errorf("%s: %w", source, err)
	}

	return checks, source, nil
}

// openHistory opens the run history database. History is best effort: when
// it cannot be opened a warning is logged and nil is returned.
func openHistory(logger *log.Logger) *store.Store {
	if noHistory {
		return nil
	}

	path, err := getDBPath()
	if err != nil {
		logger.Warn("run history disabled", "err", err)
		return nil
	}

	db, err := store.New(path)
	if err != nil {
		logger.Warn("run history disabled", "path", path, "err", err)
		return nil
	}

	if err := db.CreateSchema(); err != nil {
		db.Close()
		logger.Warn("run history disabled", "path", path, "err", err)
		return nil
	}

	return db
}

// applyChecks runs EnsurePresent for each check in order and returns the
// results and the number that failed. history may be nil.
func applyChecks(ctx context.Context, w io.Writer, logger *log.Logger, e *ensure.Ensurer, checks []ensure.InstallCheck, history *store.Store) ([]*ensure.Result, int) {
	results := make([]*ensure.Result, 0, len(checks))
	failed := 0

	for _, check := range checks {
		spinner := output.NewSpinner(fmt.Sprintf("Ensuring %s", check.Package)).WithElapsed()
		spinner.SetWriter(w)
		spinner.Start()

		res, err := e.EnsurePresent(ctx, check)
		spinner.Stop()

		results = append(results, res)
		reportResult(w, logger, check, res, err)
		if err != nil {
			failed++
		}

		if history != nil {
			if _, herr := history.InsertRun(store.RunFromResult(res, err)); herr != nil {
				logger.Warn("failed to record run", "package", check.Package, "err", herr)
			}
		}
	}

	return results, failed
}

func reportResult(w io.Writer, logger *log.Logger, check ensure.InstallCheck, res *ensure.Result, err error) {
	debug := logger.GetLevel() <= log.DebugLevel
	if debug && res.Outcome != ensure.OutcomeFailed {
		fmt.Fprint(w, output.RenderCapturedOutput("list output", res.ListOutput))
	}

	switch res.Outcome {
	case ensure.OutcomeSkipped:
		logger.Info("already installed", "package", check.Package)
	case ensure.OutcomeInstalled:
		logger.Info("installed", "package", check.Package, "duration", res.Duration)
		if debug {
			fmt.Fprint(w, output.RenderCapturedOutput("install output", res.InstallOutput))
		}
	default:
		switch {
		case errors.Is(err, ensure.ErrListCommandFailed):
			logger.Error("presence check failed", "package", check.Package, "exit", exitCodeOf(err))
			fmt.Fprint(w, output.RenderCapturedOutput("list output", res.ListOutput))
		case errors.Is(err, ensure.ErrInstallCommandFailed):
			logger.Error("install failed", "package", check.Package, "exit", res.ExitCode)
			fmt.Fprint(w, output.RenderCapturedOutput("install output", res.InstallOutput))
		default:
			logger.Error("check failed", "package", check.Package, "err", err)
		}
	}
}

// exitCodeOf returns the exit status carried by a ProvisioningError.
func exitCodeOf(err error) int {
	var perr *ensure.ProvisioningError
	if errors.As(err, &perr) {
		return perr.ExitCode
	}
	return 0
}
