//go:build !unix

package ensure

import (
	"fmt"
	"os/exec"
	"os/user"
)

// runAs only accepts the invoking user on platforms without setuid.
func runAs(cmd *exec.Cmd, username string) error {
	if username == "" {
		return nil
	}
	current, err := user.Current()
	if err != nil {
		return fmt.Errorf("failed to determine current user: %w", err)
	}
	if current.Username != username {
		return fmt.Errorf("running as %s is not supported on this platform", username)
	}
	return nil
}
