package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/NotHennadii/fogoctl/internal/python"
)

// ScriptSet holds the paths of the two generated convenience scripts.
type ScriptSet struct {
	Run    string
	Update string
}

// ScriptPaths returns where the convenience scripts live for this platform.
func ScriptPaths(dir string) ScriptSet {
	if runtime.GOOS == "windows" {
		return ScriptSet{
			Run:    filepath.Join(dir, "run.bat"),
			Update: filepath.Join(dir, "update.bat"),
		}
	}
	return ScriptSet{
		Run:    filepath.Join(dir, "run.sh"),
		Update: filepath.Join(dir, "update.sh"),
	}
}

// WriteScripts (re)writes both convenience scripts, replacing any previous
// contents. Each script independently verifies the environment exists before
// acting; a missing environment prints a clear error and exits non-zero.
func WriteScripts(dir string, env *python.Env, entrypoint, manifestPath string) (ScriptSet, error) {
	set := ScriptPaths(dir)

	var runBody, updateBody string
	if runtime.GOOS == "windows" {
		runBody = batRunScript(env, entrypoint)
		updateBody = batUpdateScript(env, manifestPath)
	} else {
		runBody = shRunScript(env, entrypoint)
		updateBody = shUpdateScript(env, manifestPath)
	}

	if err := writeScript(set.Run, runBody); err != nil {
		return set, err
	}
	if err := writeScript(set.Update, updateBody); err != nil {
		return set, err
	}
	return set, nil
}

func writeScript(path, body string) error {
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		return fmt.Errorf("failed to write script %s: %w", path, err)
	}
	return nil
}

const generatedHeader = "Generated by fogoctl setup. Do not edit: rewritten on every setup run."

func shRunScript(env *python.Env, entrypoint string) string {
	return fmt.Sprintf(`#!/usr/bin/env bash
# %s
set -eu
cd "$(dirname "$0")"
if [ ! -x %q ]; then
    echo "ERROR: virtual environment %q not found. Run 'fogoctl setup' first." >&2
    exit 1
fi
exec %q %q
`, generatedHeader, env.Python(), env.Root, env.Python(), entrypoint)
}

func shUpdateScript(env *python.Env, manifestPath string) string {
	return fmt.Sprintf(`#!/usr/bin/env bash
# %s
set -eu
cd "$(dirname "$0")"
if [ ! -x %q ]; then
    echo "ERROR: virtual environment %q not found. Run 'fogoctl setup' first." >&2
    exit 1
fi
%q -m pip install --upgrade pip || echo "WARNING: pip self-upgrade failed, continuing" >&2
exec %q -m pip install --upgrade -r %q
`, generatedHeader, env.Python(), env.Root, env.Python(), env.Python(), manifestPath)
}

func batRunScript(env *python.Env, entrypoint string) string {
	return fmt.Sprintf(`@echo off
REM %s
cd /d "%%~dp0"
if not exist "%s" (
    echo ERROR: virtual environment "%s" not found. Run "fogoctl setup" first.
    exit /b 1
)
"%s" "%s"
echo.
echo Bot finished.
pause
`, generatedHeader, env.Python(), env.Root, env.Python(), entrypoint)
}

func batUpdateScript(env *python.Env, manifestPath string) string {
	return fmt.Sprintf(`@echo off
REM %s
cd /d "%%~dp0"
if not exist "%s" (
    echo ERROR: virtual environment "%s" not found. Run "fogoctl setup" first.
    exit /b 1
)
"%s" -m pip install --upgrade pip
"%s" -m pip install --upgrade -r "%s"
pause
`, generatedHeader, env.Python(), env.Root, env.Python(), env.Python(), manifestPath)
}
