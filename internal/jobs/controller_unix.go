//go:build !windows

package jobs

import "syscall"

func pauseProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGSTOP)
}

func resumeProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGCONT)
}

func terminateProcess(pid int) {
	_ = syscall.Kill(pid, syscall.SIGTERM)
}

func forceKillProcess(pid int) {
	_ = syscall.Kill(pid, syscall.SIGKILL)
}
