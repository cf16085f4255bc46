//go:build unix

package stageexec

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// isolateProcess puts the tool in its own process group and makes context
// cancellation kill the whole group, including helpers the tool forked.
func isolateProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
}

// lowerPriority applies priority to the tool's process group. Zero leaves the
// inherited niceness alone.
func lowerPriority(pid, priority int) error {
	if priority == 0 {
		return nil
	}
	return unix.Setpriority(unix.PRIO_PGRP, pid, priority)
}
