package ensure

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCheck is returned when a check has no package name.
	ErrInvalidCheck = errors.New("invalid install check")

	// ErrListCommandFailed means the presence check could not run to a usable answer.
	ErrListCommandFailed = errors.New("list command failed")

	// ErrInstallCommandFailed means the install script could not be started or
	// its final command exited non-zero.
	ErrInstallCommandFailed = errors.New("install command failed")
)

// ProvisioningError carries the captured output and exit status of the
// subprocess that failed. Kind is one of the sentinel errors above.
type ProvisioningError struct {
	Kind     error
	Package  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProvisioningError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Package, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.ExitCode != 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	}
	if e.Output != "" {
		msg += fmt.Sprintf(" (output: %s)", e.Output)
	}
	return msg
}

// Is reports whether target is the error's kind.
func (e *ProvisioningError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
