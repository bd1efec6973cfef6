package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/output"
	"github.com/blackwell-systems/pkgensure/internal/store"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history [package]",
		Short: "Show recorded apply runs",
		Long: `Show past apply runs, newest first, from the run history database.

Use -v to include the captured output of the most recent run shown.`,
		Example: `  # Last 20 runs
  pkgensure history

  # Runs for one package
  pkgensure history Text_LanguageDetect --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path, err := getDBPath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprint(out, output.RenderRunTable(nil))
		return nil
	}

	db, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pkg := ""
	if len(args) == 1 {
		pkg = args[0]
	}

	runs, err := db.ListRuns(pkg, historyLimit)
	if errors.Is(err, store.ErrNotInitialized) {
		fmt.Fprint(out, output.RenderRunTable(nil))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprint(out, output.RenderRunTable(runs))

	if verbose && len(runs) > 0 {
		latest := runs[0]
		fmt.Fprintln(out)
		if latest.Error != "" {
			fmt.Fprintf(out, "error: %s\n", latest.Error)
		}
		fmt.Fprint(out, output.RenderCapturedOutput("list output", latest.ListOutput))
		fmt.Fprint(out, output.RenderCapturedOutput("install output", latest.InstallOutput))
	}

	return nil
}
