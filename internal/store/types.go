package store

import (
	"time"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

// Run is one recorded EnsurePresent call.
type Run struct {
	ID            int64
	Package       string
	Outcome       ensure.Outcome
	ExitCode      int
	ListOutput    string
	InstallOutput string
	Error         string // empty on success
	StartedAt     time.Time
	Duration      time.Duration
}

// RunFromResult builds a Run from an ensure result and the error returned with it.
func RunFromResult(res *ensure.Result, err error) *Run {
	run := &Run{
		Package:       res.Package,
		Outcome:       res.Outcome,
		ExitCode:      res.ExitCode,
		ListOutput:    res.ListOutput,
		InstallOutput: res.InstallOutput,
		StartedAt:     res.StartedAt,
		Duration:      res.Duration,
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}
