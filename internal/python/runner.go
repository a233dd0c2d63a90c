package python

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the outcome of an external command invocation.
type Result struct {
	ExitCode int
	// Output is the combined stdout and stderr of the command.
	Output string
}

// Runner executes external commands. It exists so provisioning steps can be
// exercised in tests without a real Python toolchain on the machine.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	res := Result{Output: string(out)}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf(
			"%s %s exited with code %d: %s",
			name, strings.Join(args, " "), res.ExitCode, strings.TrimSpace(res.Output),
		)
	}
	// The command could not be started at all (e.g. binary not on PATH).
	res.ExitCode = -1
	return res, fmt.Errorf("failed to run %s: %w", name, err)
}
