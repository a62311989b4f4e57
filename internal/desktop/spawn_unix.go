//go:build !windows

package desktop

import (
	"os/exec"
	"syscall"
)

// setProcAttr puts the child in its own session so it outlives the launcher.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
