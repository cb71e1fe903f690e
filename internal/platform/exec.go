package platform

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CmdResult is the captured outcome of an external command.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CmdRunner runs an external command. A non-zero exit is reported through
// ExitCode, not as an error; errors mean the command could not run at all.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) (CmdResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CmdResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CmdResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, err
	}
	return res, nil
}
