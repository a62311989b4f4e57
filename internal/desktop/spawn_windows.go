//go:build windows

package desktop

import "os/exec"

func setProcAttr(cmd *exec.Cmd) {}
