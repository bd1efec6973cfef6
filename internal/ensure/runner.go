package ensure

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultShell interprets list commands and install scripts when a check
// does not name its own shell.
const DefaultShell = "/bin/sh"

// waitDelay bounds how long Run waits for output pipes after ctx kills the
// shell, since background children may hold them open.
const waitDelay = 2 * time.Second

// Command is one shell invocation.
type Command struct {
	Shell  string
	Script string
	User   string
	Dir    string
}

// Output is what a finished invocation produced.
type Output struct {
	Combined string // stdout and stderr, interleaved
	ExitCode int
}

// Runner abstracts process execution for testability.
// A non-zero exit status is reported in Output.ExitCode, not as an error;
// errors are reserved for invocations that could not be started or were
// cut short by ctx.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// ShellRunner implements Runner with os/exec, running Script via `Shell -c`.
type ShellRunner struct{}

// Run executes cmd and waits for it to finish.
func (r *ShellRunner) Run(ctx context.Context, c Command) (*Output, error) {
	shell := c.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", c.Script)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if err := runAs(cmd, c.User); err != nil {
		return nil, err
	}

	combined, err := cmd.CombinedOutput()
	out := &Output{Combined: string(combined)}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.ExitCode = -1
			return out, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}
