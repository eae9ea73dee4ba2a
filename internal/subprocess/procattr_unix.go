//go:build unix

package subprocess

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup starts the sidecar in its own process group so a forced kill
// also reaches any processes it forked.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}

	cmd.SysProcAttr.Setpgid = true
}

// killProcessTree sends SIGKILL to the sidecar's process group, falling back to
// the process itself if the group is already gone.
func killProcessTree(p *os.Process) error {
	if err := unix.Kill(-p.Pid, unix.SIGKILL); err == nil {
		return nil
	}

	return p.Kill()
}
