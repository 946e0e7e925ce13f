//go:build windows

package jobs

import (
	"fmt"
	"os/exec"
)

// pauseProcess has no SIGSTOP analogue on Windows; the job state still
// transitions to Paused, the process keeps running.
func pauseProcess(pid int) error {
	fmt.Printf("warning: pause is not fully supported on Windows; job state updated but process %d continues\n", pid)
	return nil
}

func resumeProcess(pid int) error {
	fmt.Printf("warning: resume is not fully supported on Windows for process %d\n", pid)
	return nil
}

func terminateProcess(pid int) {
	_ = exec.Command("taskkill", "/PID", fmt.Sprint(pid)).Run()
}

func forceKillProcess(pid int) {
	_ = exec.Command("taskkill", "/F", "/PID", fmt.Sprint(pid)).Run()
}
