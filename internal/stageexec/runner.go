package stageexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"squish/internal/logging"
)

// Completion is what a finished process reports back.
type Completion struct {
	ExitCode int
	Output   []byte
}

// CommandRunner spawns one external process and waits for it.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) (Completion, error)
}

// ProcessRunner runs tools as child processes in their own process group at
// the configured niceness. Output is discarded unless Capture is set.
type ProcessRunner struct {
	Priority int
	Capture  bool
	Logger   *slog.Logger
}

// Run starts argv and blocks until it exits or ctx is done. A non-zero exit
// is not an error; errors mean the process could not be started or was
// killed because ctx ended.
func (r ProcessRunner) Run(ctx context.Context, argv []string) (Completion, error) {
	if len(argv) == 0 {
		return Completion{}, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	var output bytes.Buffer
	if r.Capture {
		cmd.Stdout = &output
		cmd.Stderr = &output
	}
	isolateProcess(cmd)

	if err := cmd.Start(); err != nil {
		return Completion{}, err
	}
	if err := lowerPriority(cmd.Process.Pid, r.Priority); err != nil && r.Logger != nil {
		r.Logger.Debug("process priority not applied",
			logging.String("program", argv[0]),
			logging.Int("priority", r.Priority),
			logging.Error(err),
		)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Completion{ExitCode: -1, Output: output.Bytes()}, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Completion{ExitCode: exitErr.ExitCode(), Output: output.Bytes()}, nil
	}
	if err != nil {
		return Completion{Output: output.Bytes()}, err
	}
	return Completion{ExitCode: 0, Output: output.Bytes()}, nil
}
