package ensure

import (
	"strings"
	"time"
)

// InstallCheck describes one package to keep present on the host.
type InstallCheck struct {
	Package         string   // identifier reported in results, e.g. "Text_LanguageDetect"
	ListCommand     string   // shell command whose output is searched for the absence marker
	InstallCommands []string // run in order, in a single shell, only when absent
	User            string   // identity for install commands; empty means the invoking user
	Dir             string   // working directory for install commands; empty means inherit
	Shell           string   // interpreter invoked with -c; defaults to DefaultShell
	Timeout         time.Duration
}

// Outcome is the terminal state of a single EnsurePresent call.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeInstalled Outcome = "installed"
	OutcomeFailed    Outcome = "failed"
)

// Result captures what happened so the caller can report it.
type Result struct {
	Package       string
	Outcome       Outcome
	ListOutput    string
	InstallOutput string
	ExitCode      int // exit status of the final install command, 0 when skipped
	StartedAt     time.Time
	Duration      time.Duration
}

// Script joins the install commands into the body handed to the shell.
func (c InstallCheck) Script() string {
	return strings.Join(c.InstallCommands, "\n")
}
