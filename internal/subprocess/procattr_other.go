//go:build !unix

package subprocess

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op where process groups are unavailable.
func setProcessGroup(_ *exec.Cmd) {}

// killProcessTree terminates the sidecar process.
func killProcessTree(p *os.Process) error {
	return p.Kill()
}
