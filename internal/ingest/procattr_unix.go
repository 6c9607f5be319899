//go:build unix

package ingest

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the shell and everything it forks into its own
// process group so cancellation reaches grandchildren holding the pipes.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
