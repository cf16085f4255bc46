//go:build !unix

package stageexec

import "os/exec"

func isolateProcess(*exec.Cmd) {}

func lowerPriority(int, int) error { return nil }
