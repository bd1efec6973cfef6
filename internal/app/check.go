package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

var (
	checkFailIfAbsent bool

	checkCmd = &cobra.Command{
		Use:   "check [package...]",
		Short: "Report which packages are missing without installing anything",
		Long: `Run each check's list command and report whether the package is present.

A package is reported missing when the list output contains "not installed"
(exact, case-sensitive). Install commands never run.`,
		Example: `  # Check every package in the recipe
  pkgensure check

  # Exit non-zero if anything would be installed
  pkgensure check --fail-if-absent`,
		RunE: runCheck,
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkFailIfAbsent, "fail-if-absent", false, "exit non-zero when any package is missing")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	checks, source, err := loadChecks(args)
	if err != nil {
		return err
	}
	logger.Debug("loaded recipe", "source", source, "checks", len(checks))

	e := ensure.New(newRunner())
	absentCount := 0
	failed := 0

	for _, check := range checks {
		absent, listOutput, err := e.Probe(ctx, check)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: check failed: %v\n", check.Package, err)
			continue
		}

		if absent {
			absentCount++
			fmt.Fprintf(out, "✗ %s: missing (%d install commands would run)\n", check.Package, len(check.InstallCommands))
		} else {
			fmt.Fprintf(out, "✓ %s: present\n", check.Package)
		}
		logger.Debug("list output", "package", check.Package, "output", listOutput)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks could not run", failed, len(checks))
	}
	if checkFailIfAbsent && absentCount > 0 {
		return fmt.Errorf("%d of %d packages missing", absentCount, len(checks))
	}
	return nil
}
