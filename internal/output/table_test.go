package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
	"github.com/blackwell-systems/pkgensure/internal/store"
)

func TestRenderResultTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name     string
		results  []*ensure.Result
		contains []string
	}{
		{
			name:     "no results",
			results:  nil,
			contains: []string{"No checks run"},
		},
		{
			name: "installed and skipped",
			results: []*ensure.Result{
				{Package: "Text_LanguageDetect", Outcome: ensure.OutcomeInstalled, Duration: 2300 * time.Millisecond},
				{Package: "Mail", Outcome: ensure.OutcomeSkipped, Duration: 12 * time.Millisecond},
			},
			contains: []string{"Package", "Outcome", "Text_LanguageDetect", "✓ installed", "Mail", "= present", "2.3s", "12ms"},
		},
		{
			name: "failed shows exit code",
			results: []*ensure.Result{
				{Package: "Text_LanguageDetect", Outcome: ensure.OutcomeFailed, ExitCode: 4},
			},
			contains: []string{"✗ failed", " 4 "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderResultTable(tt.results)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, result)
				}
			}
			if strings.Contains(result, "\033[") {
				t.Errorf("NO_COLOR output should not contain ANSI codes:\n%s", result)
			}
		})
	}
}

func TestRenderRecipeTable(t *testing.T) {
	checks := []ensure.InstallCheck{
		{
			Package:     "Text_LanguageDetect",
			ListCommand: "pear list Text_LanguageDetect",
			InstallCommands: []string{
				"pecl channel-update pecl.php.net",
				"pear install pear/Text_LanguageDetect-0.3.0",
			},
			User:    "root",
			Dir:     "/tmp",
			Timeout: 10 * time.Minute,
		},
		{
			Package:         "Mail",
			ListCommand:     "pear list Mail",
			InstallCommands: []string{"pear install Mail"},
		},
	}

	result := RenderRecipeTable("built-in", checks)

	for _, want := range []string{
		"Recipe: built-in",
		"Text_LanguageDetect",
		"check:   pear list Text_LanguageDetect",
		"user:    root",
		"cwd:     /tmp",
		"timeout: 10m0s",
		"1. pecl channel-update pecl.php.net",
		"2. pear install pear/Text_LanguageDetect-0.3.0",
		"user:    (current)",
		"shell:   /bin/sh",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, result)
		}
	}

	if !strings.Contains(RenderRecipeTable("x", nil), "No checks defined") {
		t.Error("empty recipe should say no checks are defined")
	}
}

func TestRenderRunTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := RenderRunTable(nil); !strings.Contains(got, "No runs recorded") {
		t.Errorf("empty history = %q", got)
	}

	runs := []*store.Run{
		{
			ID:        7,
			Package:   "Text_LanguageDetect",
			Outcome:   ensure.OutcomeInstalled,
			StartedAt: time.Now().Add(-2 * time.Hour),
			Duration:  3 * time.Second,
		},
	}
	result := RenderRunTable(runs)
	for _, want := range []string{"ID", "7", "Text_LanguageDetect", "✓ installed", "3s", "2 hours ago"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, result)
		}
	}
}

func TestRenderCapturedOutput(t *testing.T) {
	got := RenderCapturedOutput("install output", "line one\nline two\n")
	want := "install output:\n  | line one\n  | line two\n"
	if got != want {
		t.Errorf("RenderCapturedOutput() = %q, want %q", got, want)
	}

	if got := RenderCapturedOutput("list output", "  \n"); got != "" {
		t.Errorf("blank output should render nothing, got %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", now.Add(-10 * time.Second), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"one day", now.Add(-30 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Text_LanguageDetect", 10); got != "Text_La..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("Mail", 10); got != "Mail" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(1234567 * time.Microsecond); got != "1.2s" {
		t.Errorf("formatDuration(1.234567s) = %q, want 1.2s", got)
	}
	if got := formatDuration(12345 * time.Microsecond); got != "12ms" {
		t.Errorf("formatDuration(12.345ms) = %q, want 12ms", got)
	}
}
