// Package output provides terminal output utilities for pkgensure.
//
// This package includes:
//   - Table rendering for ensure results, recipes and run history
//   - Spinners for subprocesses that may take a while
//   - Human-readable formatting for durations and dates
//
// Tables use plain characters plus ANSI colour codes when stdout is a terminal
// and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
	"github.com/blackwell-systems/pkgensure/internal/store"
)

// ANSI color codes for outcome display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderResultTable renders one row per ensure result, in the order given.
func RenderResultTable(results []*ensure.Result) string {
	if len(results) == 0 {
		return "No checks run.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-12s %-6s %s\n", "Package", "Outcome", "Exit", "Duration"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, res := range results {
		// Pad before colouring so escape codes do not skew the columns.
		outcome := fmt.Sprintf("%-12s", formatOutcome(res.Outcome))
		sb.WriteString(fmt.Sprintf("%-28s %s %-6s %s\n",
			truncate(res.Package, 28),
			colorize(getOutcomeColor(res.Outcome), outcome),
			formatExitCode(res),
			formatDuration(res.Duration)))
	}

	return sb.String()
}

// RenderRecipeTable renders the checks of a recipe with their install steps.
func RenderRecipeTable(source string, checks []ensure.InstallCheck) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Recipe: %s\n\n", source))
	if len(checks) == 0 {
		sb.WriteString("No checks defined.\n")
		return sb.String()
	}

	for i, check := range checks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s\n", check.Package))
		sb.WriteString(fmt.Sprintf("  check:   %s\n", check.ListCommand))
		sb.WriteString(fmt.Sprintf("  user:    %s\n", orDefault(check.User, "(current)")))
		sb.WriteString(fmt.Sprintf("  cwd:     %s\n", orDefault(check.Dir, "(current)")))
		sb.WriteString(fmt.Sprintf("  shell:   %s\n", orDefault(check.Shell, ensure.DefaultShell)))
		if check.Timeout > 0 {
			sb.WriteString(fmt.Sprintf("  timeout: %s\n", check.Timeout))
		}
		sb.WriteString("  install:\n")
		for n, line := range check.InstallCommands {
			sb.WriteString(fmt.Sprintf("    %d. %s\n", n+1, line))
		}
	}

	return sb.String()
}

// RenderRunTable renders recorded runs, newest first as returned by the store.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-24s %-12s %-6s %-10s %s\n",
		"ID", "Package", "Outcome", "Exit", "Duration", "When"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		outcome := fmt.Sprintf("%-12s", formatOutcome(run.Outcome))
		sb.WriteString(fmt.Sprintf("%-6d %-24s %s %-6d %-10s %s\n",
			run.ID,
			truncate(run.Package, 24),
			colorize(getOutcomeColor(run.Outcome), outcome),
			run.ExitCode,
			formatDuration(run.Duration),
			formatRelativeTime(run.StartedAt)))
	}

	return sb.String()
}

// RenderCapturedOutput indents captured subprocess output under a label.
// Empty output renders as nothing.
func RenderCapturedOutput(label, captured string) string {
	captured = strings.TrimRight(captured, "\n")
	if strings.TrimSpace(captured) == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(":\n")
	for _, line := range strings.Split(captured, "\n") {
		sb.WriteString("  | ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatOutcome returns the display label for an outcome.
func formatOutcome(outcome ensure.Outcome) string {
	switch outcome {
	case ensure.OutcomeInstalled:
		return "✓ installed"
	case ensure.OutcomeSkipped:
		return "= present"
	case ensure.OutcomeFailed:
		return "✗ failed"
	default:
		return string(outcome)
	}
}

// getOutcomeColor returns the ANSI color code for an outcome.
func getOutcomeColor(outcome ensure.Outcome) string {
	switch outcome {
	case ensure.OutcomeInstalled:
		return colorGreen
	case ensure.OutcomeSkipped:
		return colorGray
	case ensure.OutcomeFailed:
		return colorRed
	default:
		return colorYellow
	}
}

func formatExitCode(res *ensure.Result) string {
	if res.Outcome == ensure.OutcomeSkipped {
		return "—"
	}
	return fmt.Sprintf("%d", res.ExitCode)
}

// formatDuration rounds to milliseconds below a second and to tenths above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// formatRelativeTime returns a human-readable relative time string.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
