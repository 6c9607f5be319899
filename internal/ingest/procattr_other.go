//go:build !unix

package ingest

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}
