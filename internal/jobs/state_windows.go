//go:build windows

package jobs

import (
	"syscall"
)

// IsProcessRunning opens the process by pid; a successful open means it is
// still alive. Windows has no signal-0 equivalent, so OpenProcess is the
// idiomatic probe.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	const processQueryLimitedInformation = 0x1000
	h, err := syscall.OpenProcess(processQueryLimitedInformation, false, uint32(pid))
	if err != nil {
		return false
	}
	defer syscall.CloseHandle(h)

	var exitCode uint32
	if err := syscall.GetExitCodeProcess(h, &exitCode); err != nil {
		return false
	}
	const stillActive = 259
	return exitCode == stillActive
}
