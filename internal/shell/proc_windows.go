//go:build windows

package shell

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// prepare hides the console window in quiet mode. Children that outlive a
// killed command are cut loose by the wait delay.
func prepare(cmd *exec.Cmd, quiet bool) {
	if !quiet {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
