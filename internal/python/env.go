package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// VirtualEnvVar is the conventional variable a Python venv activation script
// exports. It is consulted to skip redundant setup and set when launching
// the bot so it behaves as if activated.
const VirtualEnvVar = "VIRTUAL_ENV"

// Env is an explicit handle to a Python virtual environment on disk.
// It is passed through every provisioning step instead of relying on
// ambient "activated" state.
type Env struct {
	// Root is the environment directory, e.g. "venv".
	Root string
}

// NewEnv returns a handle for the environment rooted at dir.
func NewEnv(dir string) *Env {
	return &Env{Root: dir}
}

// windows and unix venvs lay out their interpreter differently.
func (e *Env) binDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// BinDir returns the directory holding the environment's executables.
func (e *Env) BinDir() string {
	return filepath.Join(e.Root, e.binDirName())
}

// Python returns the path of the environment's interpreter.
func (e *Env) Python() string {
	name := "python"
	if runtime.GOOS == "windows" {
		name = "python.exe"
	}
	return filepath.Join(e.BinDir(), name)
}

// Exists reports whether the environment marker (pyvenv.cfg) is present.
func (e *Env) Exists() bool {
	_, err := os.Stat(filepath.Join(e.Root, "pyvenv.cfg"))
	return err == nil
}

// Active reports whether this environment is already activated in the
// calling shell, judged by the VIRTUAL_ENV variable.
func (e *Env) Active() bool {
	v := os.Getenv(VirtualEnvVar)
	if v == "" {
		return false
	}
	abs, err := filepath.Abs(e.Root)
	if err != nil {
		return false
	}
	return filepath.Clean(v) == abs
}

// Validate checks that an existing environment is usable. A present marker
// with a missing interpreter signals corruption.
func (e *Env) Validate() error {
	if !e.Exists() {
		return fmt.Errorf("%w: %s", ErrEnvMissing, e.Root)
	}
	if _, err := os.Stat(e.Python()); err != nil {
		return fmt.Errorf("%w: %s is missing, delete %s and re-run setup", ErrEnvCorrupted, e.Python(), e.Root)
	}
	return nil
}

// Create builds the virtual environment using the given system interpreter.
func (e *Env) Create(ctx context.Context, runner Runner, interpreter string) error {
	if _, err := runner.Run(ctx, interpreter, "-m", "venv", e.Root); err != nil {
		return fmt.Errorf("%w: %v", ErrEnvCreationFailed, err)
	}
	return nil
}
