//go:build !windows

package shell

import (
	"os/exec"
	"syscall"
)

// prepare starts the command in its own process group and makes
// cancellation kill the whole group, so children that inherited the output
// pipes go down with it. Console windows only exist on windows.
func prepare(cmd *exec.Cmd, quiet bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
