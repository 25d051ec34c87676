//go:build !windows

package service

import (
	"errors"
	"os/exec"
	"syscall"
)

// isolateProcess puts the command in its own process group so that
// cancellation also stops tools started by wrappers such as npx.
func isolateProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
}

// killProcessGroup stops every process left in the command's group
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// reapProcessGroup kills background processes the tool left behind after
// its main process exited
func reapProcessGroup(cmd *exec.Cmd) {
	_ = killProcessGroup(cmd)
}
