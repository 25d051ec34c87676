//go:build windows

package service

import (
	"os/exec"
	"strconv"
)

// isolateProcess makes cancellation stop the whole process tree, including
// tools started by wrappers such as npx.
func isolateProcess(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid)).Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}

func reapProcessGroup(*exec.Cmd) {}
