package ensure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ensurer runs presence checks and, when needed, install sequences.
// It holds no state between calls.
type Ensurer struct {
	runner Runner
	now    func() time.Time
}

// New creates an Ensurer. A nil runner means a ShellRunner.
func New(runner Runner) *Ensurer {
	if runner == nil {
		runner = &ShellRunner{}
	}
	return &Ensurer{
		runner: runner,
		now:    time.Now,
	}
}

// Probe runs the check's list command and reports whether its output marks
// the package as absent. It never installs anything.
//
// A list command that exits non-zero still counts as a usable answer when its
// output carries the absence marker; package tools commonly exit non-zero when
// asked about a package they do not have.
func (e *Ensurer) Probe(ctx context.Context, check InstallCheck) (absent bool, listOutput string, err error) {
	if strings.TrimSpace(check.Package) == "" {
		return false, "", fmt.Errorf("%w: package name is required", ErrInvalidCheck)
	}

	runCtx, cancel := withTimeout(ctx, check.Timeout)
	defer cancel()

	out, err := e.runner.Run(runCtx, Command{
		Shell:  check.Shell,
		Script: check.ListCommand,
	})
	listOutput = combinedOf(out)
	if err != nil {
		return false, listOutput, &ProvisioningError{
			Kind:     ErrListCommandFailed,
			Package:  check.Package,
			ExitCode: exitCodeOf(out),
			Output:   listOutput,
			Err:      err,
		}
	}

	absent = ReportsAbsent(out.Combined)
	if out.ExitCode != 0 && !absent {
		return false, listOutput, &ProvisioningError{
			Kind:     ErrListCommandFailed,
			Package:  check.Package,
			ExitCode: out.ExitCode,
			Output:   listOutput,
		}
	}

	return absent, listOutput, nil
}

// EnsurePresent installs the package described by check if its list command
// reports it absent. The returned Result is non-nil even when err is not, so
// callers can record what was attempted.
//
// Install commands run as one shell script without errexit: every line runs
// and only the final command's exit status decides success.
func (e *Ensurer) EnsurePresent(ctx context.Context, check InstallCheck) (*Result, error) {
	start := e.now()
	result := &Result{
		Package:   check.Package,
		StartedAt: start,
	}
	defer func() {
		result.Duration = e.now().Sub(start)
	}()

	absent, listOutput, err := e.Probe(ctx, check)
	result.ListOutput = listOutput
	if err != nil {
		result.Outcome = OutcomeFailed
		var perr *ProvisioningError
		if errors.As(err, &perr) {
			result.ExitCode = perr.ExitCode
		}
		return result, err
	}

	if !absent {
		result.Outcome = OutcomeSkipped
		return result, nil
	}

	runCtx, cancel := withTimeout(ctx, check.Timeout)
	defer cancel()

	out, err := e.runner.Run(runCtx, Command{
		Shell:  check.Shell,
		Script: check.Script(),
		User:   check.User,
		Dir:    check.Dir,
	})
	result.InstallOutput = combinedOf(out)
	result.ExitCode = exitCodeOf(out)
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, &ProvisioningError{
			Kind:     ErrInstallCommandFailed,
			Package:  check.Package,
			ExitCode: result.ExitCode,
			Output:   result.InstallOutput,
			Err:      err,
		}
	}

	if out.ExitCode != 0 {
		result.Outcome = OutcomeFailed
		return result, &ProvisioningError{
			Kind:     ErrInstallCommandFailed,
			Package:  check.Package,
			ExitCode: out.ExitCode,
			Output:   result.InstallOutput,
		}
	}

	result.Outcome = OutcomeInstalled
	return result, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func combinedOf(out *Output) string {
	if out == nil {
		return ""
	}
	return out.Combined
}

func exitCodeOf(out *Output) int {
	if out == nil {
		return 0
	}
	return out.ExitCode
}
