package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/config"
	"github.com/blackwell-systems/pkgensure/internal/ensure"
	"github.com/blackwell-systems/pkgensure/internal/output"
	"github.com/blackwell-systems/pkgensure/internal/store"
	"github.com/blackwell-systems/pkgensure/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the recipe whenever the recipe file changes",
		Long: `Apply the recipe once, then watch the recipe file and apply it again every
time it is written or replaced.

The recipe file is --recipe, or ~/.config/pkgensure/recipe.toml. It must
exist; the built-in recipe cannot be watched.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a detached background process
  • Stop: Stop a running daemon

A recipe that fails to parse after an edit is logged and skipped; the
watcher keeps running and applies the next valid version.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  pkgensure watch --recipe /etc/pkgensure/recipe.toml

  # Run as background daemon
  pkgensure watch --daemon

  # Stop running daemon
  pkgensure watch --stop

  # Use custom PID and log files
  pkgensure watch --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.pkgensure/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.pkgensure/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	out := cmd.OutOrStdout()

	// Handle stop command
	if watchStop {
		return stopWatchDaemon(out)
	}

	path, err := watchedRecipePath()
	if err != nil {
		return err
	}

	// Handle daemon mode
	if watchDaemon {
		return startWatchDaemon(out, path)
	}

	ctx := commandContext(cmd)
	logger := loggerFromContext(ctx)

	history := openHistory(logger)
	if history != nil {
		defer history.Close()
	}

	e := ensure.New(newRunner())
	// Applies never overlap: an edit made during a long install queues one
	// more apply behind it.
	var applyMu sync.Mutex
	reapply := func() {
		applyMu.Lock()
		defer applyMu.Unlock()
		applyRecipeFile(ctx, out, logger, e, path, history)
	}

	w, err := watcher.New(path, reapply, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch before the first apply so edits made while it runs are seen.
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Handle daemon child process
	if watchDaemonChild {
		reapply()
		return w.RunDaemon(ctx, watchPIDFile)
	}

	// Run in foreground
	return runWatchForeground(ctx, out, w, reapply)
}

// watchedRecipePath returns the absolute path of the recipe file to watch.
func watchedRecipePath() (string, error) {
	path := recipePath
	if path == "" {
		def, err := config.DefaultRecipePath()
		if err != nil {
			return "", err
		}
		path = def
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("recipe file %s does not exist: watch needs a recipe file (use --recipe)", path)
		}
		return "", fmt.Errorf("failed to stat recipe file: %w", err)
	}

	return filepath.Abs(path)
}

// applyRecipeFile loads the recipe at path and applies every check in it.
// A recipe that fails to load is logged and nothing is applied.
func applyRecipeFile(ctx context.Context, w io.Writer, logger *log.Logger, e *ensure.Ensurer, path string, history *store.Store) {
	recipe, err := config.Load(path)
	if err != nil {
		logger.Error("recipe not applied", "path", path, "err", err)
		return
	}

	logger.Info("applying recipe", "path", path, "checks", len(recipe.Checks))
	results, failed := applyChecks(ctx, w, logger, e, recipe.Checks, history)
	fmt.Fprint(w, output.RenderResultTable(results))

	if failed > 0 {
		logger.Warn("recipe applied with failures", "failed", failed, "total", len(recipe.Checks))
	}
}

func stopWatchDaemon(out io.Writer) error {
	// Check if daemon is running
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon...")
	spinner.SetWriter(out)
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon(out io.Writer, path string) error {
	spinner := output.NewSpinner("Starting daemon...")
	spinner.SetWriter(out)
	if err := watcher.StartDaemon(daemonChildArgs(path), watchPIDFile, watchLogFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Fprintf(out, "\nRecipe watch daemon started\n")
	fmt.Fprintf(out, "  Recipe:   %s\n", path)
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: pkgensure watch --stop\n")

	return nil
}

// daemonChildArgs rebuilds the command line for the detached child.
func daemonChildArgs(path string) []string {
	args := []string{"watch", "--daemon-child", "--recipe", path, "--pid-file", watchPIDFile}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	if noHistory {
		args = append(args, "--no-history")
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return args
}

func runWatchForeground(ctx context.Context, out io.Writer, w *watcher.Watcher, reapply func()) error {
	reapply()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Watching %s for changes.\n", w.Path())
	fmt.Fprintln(out, "Press Ctrl+C to stop.")
	fmt.Fprintln(out)

	if err := w.RunDaemon(ctx, ""); err != nil {
		return err
	}

	fmt.Fprintln(out, "Recipe watch stopped")
	return nil
}
