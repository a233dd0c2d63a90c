// Package python locates a system Python interpreter, manages the bot's
// virtual environment and drives pip inside it.
package python

import (
	"context"
	"fmt"
	"runtime"
)

// interpreterCandidates returns the interpreter names probed on this platform,
// in order of preference. Windows ships the "py" launcher; most unix systems
// only guarantee "python3".
func interpreterCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"py", "python", "python3"}
	}
	return []string{"python3", "python"}
}

// FindInterpreter locates a usable Python 3 interpreter.
// If override is non-empty it is verified and used as-is, no discovery happens.
func FindInterpreter(ctx context.Context, runner Runner, override string) (string, error) {
	if override != "" {
		if _, err := runner.Run(ctx, override, "--version"); err != nil {
			return "", fmt.Errorf("%w: configured interpreter %q is not usable: %v", ErrInterpreterMissing, override, err)
		}
		return override, nil
	}

	for _, candidate := range interpreterCandidates() {
		if _, err := runner.Run(ctx, candidate, "--version"); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf(
		"%w: tried %v, install Python 3.10+ and make sure it is on your PATH",
		ErrInterpreterMissing, interpreterCandidates(),
	)
}
