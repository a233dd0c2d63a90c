package python

import (
	"context"
	"fmt"
	"strings"
)

// Pip drives the package installer inside a virtual environment.
// All invocations go through "python -m pip" with the environment's
// interpreter, so nothing depends on a pip binary being on PATH.
type Pip struct {
	env    *Env
	runner Runner
}

// NewPip returns a Pip bound to the given environment.
func NewPip(env *Env, runner Runner) *Pip {
	return &Pip{env: env, runner: runner}
}

// Available checks that pip can be invoked inside the environment.
func (p *Pip) Available(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, p.env.Python(), "-m", "pip", "--version"); err != nil {
		return fmt.Errorf("%w: %v", ErrPipMissing, err)
	}
	return nil
}

// Repair attempts to bootstrap pip into the environment via ensurepip.
func (p *Pip) Repair(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, p.env.Python(), "-m", "ensurepip", "--upgrade"); err != nil {
		return fmt.Errorf("%w: ensurepip failed: %v", ErrPipMissing, err)
	}
	return nil
}

// UpgradeSelf upgrades pip itself.
func (p *Pip) UpgradeSelf(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, p.env.Python(), "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("failed to upgrade pip: %w", err)
	}
	return nil
}

// Install installs a single requirement spec, e.g. "solders==0.21.0" or "solders".
func (p *Pip) Install(ctx context.Context, spec string) error {
	if _, err := p.runner.Run(ctx, p.env.Python(), "-m", "pip", "install", spec); err != nil {
		return fmt.Errorf("failed to install %s: %w", spec, err)
	}
	return nil
}

// InstallRequirements installs (and optionally upgrades) everything listed
// in a requirements file in a single pip invocation.
func (p *Pip) InstallRequirements(ctx context.Context, path string, upgrade bool) error {
	args := []string{"-m", "pip", "install", "-r", path}
	if upgrade {
		args = append(args, "--upgrade")
	}
	if _, err := p.runner.Run(ctx, p.env.Python(), args...); err != nil {
		return fmt.Errorf("failed to install requirements from %s: %w", path, err)
	}
	return nil
}

// CheckImports loads the given modules in a single interpreter invocation.
// This is a smoke test, not a gate: callers treat failure as a warning.
func (p *Pip) CheckImports(ctx context.Context, modules []string) error {
	if len(modules) == 0 {
		return nil
	}
	stmt := "import " + strings.Join(modules, ", ")
	if _, err := p.runner.Run(ctx, p.env.Python(), "-c", stmt); err != nil {
		return fmt.Errorf("import check failed: %w", err)
	}
	return nil
}
