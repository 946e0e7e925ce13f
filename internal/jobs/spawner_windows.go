//go:build windows

package jobs

import (
	"os/exec"
	"syscall"
)

const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// setDetached marks the child DETACHED_PROCESS | CREATE_NEW_PROCESS_GROUP so
// it survives the parent console closing.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup | detachedProcess}
}
