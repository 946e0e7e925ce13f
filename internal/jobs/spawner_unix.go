//go:build !windows

package jobs

import (
	"os/exec"
	"syscall"
)

// setDetached puts the child in its own process group so signals sent to
// the parent's group (e.g. a shell's Ctrl-C) don't propagate to it.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
