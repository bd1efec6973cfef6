//go:build unix

package ensure

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
)

// runAs arranges for cmd to run as username. Nothing changes when username
// is empty or is already the invoking user. Switching to another user needs
// the privileges to setuid; without them the start of cmd fails.
func runAs(cmd *exec.Cmd, username string) error {
	if username == "" {
		return nil
	}

	target, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", username, err)
	}
	if current, err := user.Current(); err == nil && current.Uid == target.Uid {
		return nil
	}

	uid, err := strconv.ParseUint(target.Uid, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid uid %q for user %s: %w", target.Uid, username, err)
	}
	gid, err := strconv.ParseUint(target.Gid, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid gid %q for user %s: %w", target.Gid, username, err)
	}

	cred := &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)}
	if ids, err := target.GroupIds(); err == nil {
		for _, id := range ids {
			if g, err := strconv.ParseUint(id, 10, 32); err == nil {
				cred.Groups = append(cred.Groups, uint32(g))
			}
		}
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{Credential: cred}
	cmd.Env = append(os.Environ(),
		"HOME="+target.HomeDir,
		"USER="+target.Username,
		"LOGNAME="+target.Username,
	)
	return nil
}
