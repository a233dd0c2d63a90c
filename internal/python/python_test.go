package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records every invocation and fails any command whose full
// command line contains one of the configured substrings.
type fakeRunner struct {
	failOn []string
	calls  []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	line := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, line)
	for _, s := range f.failOn {
		if strings.Contains(line, s) {
			return Result{ExitCode: 1}, fmt.Errorf("simulated failure: %s", line)
		}
	}
	return Result{Output: "ok"}, nil
}

func TestFindInterpreter(t *testing.T) {
	tests := []struct {
		name     string
		override string
		failOn   []string
		want     string
		wantErr  error
	}{
		{
			name: "first candidate works",
			want: interpreterCandidates()[0],
		},
		{
			name:   "falls back when first candidate is missing",
			failOn: []string{interpreterCandidates()[0] + " "},
			want:   interpreterCandidates()[1],
		},
		{
			name:     "override is used without discovery",
			override: "/opt/python/bin/python3",
			want:     "/opt/python/bin/python3",
		},
		{
			name:     "broken override is an error",
			override: "/missing/python",
			failOn:   []string{"/missing/python"},
			wantErr:  ErrInterpreterMissing,
		},
		{
			name:    "no interpreter anywhere",
			failOn:  []string{"--version"},
			wantErr: ErrInterpreterMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{failOn: tt.failOn}
			got, err := FindInterpreter(context.Background(), runner, tt.override)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindInterpreterOverrideSkipsCandidates(t *testing.T) {
	runner := &fakeRunner{}
	_, err := FindInterpreter(context.Background(), runner, "custompy")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "custompy --version")
}

func TestEnvPaths(t *testing.T) {
	env := NewEnv("venv")
	assert.Equal(t, "venv", env.Root)
	assert.True(t, strings.HasPrefix(env.BinDir(), "venv"))
	assert.True(t, strings.HasPrefix(env.Python(), env.BinDir()))
}

func TestEnvExists(t *testing.T) {
	dir := t.TempDir()
	env := NewEnv(filepath.Join(dir, "venv"))
	assert.False(t, env.Exists())

	require.NoError(t, os.MkdirAll(env.Root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.Root, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644))
	assert.True(t, env.Exists())
}

func TestEnvValidate(t *testing.T) {
	dir := t.TempDir()
	env := NewEnv(filepath.Join(dir, "venv"))

	err := env.Validate()
	assert.ErrorIs(t, err, ErrEnvMissing)
	assert.True(t, IsEnvMissing(err))

	// Marker present but the interpreter is gone: corrupted, not missing.
	require.NoError(t, os.MkdirAll(env.Root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.Root, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644))
	err = env.Validate()
	assert.ErrorIs(t, err, ErrEnvCorrupted)
	assert.False(t, IsEnvMissing(err))

	require.NoError(t, os.MkdirAll(env.BinDir(), 0o755))
	require.NoError(t, os.WriteFile(env.Python(), []byte("#!/bin/sh\n"), 0o755))
	assert.NoError(t, env.Validate())
}

func TestEnvActive(t *testing.T) {
	dir := t.TempDir()
	env := NewEnv(filepath.Join(dir, "venv"))

	t.Setenv(VirtualEnvVar, "")
	assert.False(t, env.Active())

	abs, err := filepath.Abs(env.Root)
	require.NoError(t, err)
	t.Setenv(VirtualEnvVar, abs)
	assert.True(t, env.Active())

	t.Setenv(VirtualEnvVar, filepath.Join(dir, "other"))
	assert.False(t, env.Active())
}

func TestEnvCreate(t *testing.T) {
	runner := &fakeRunner{}
	env := NewEnv("venv")
	require.NoError(t, env.Create(context.Background(), runner, "python3"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "python3 -m venv venv", runner.calls[0])

	runner = &fakeRunner{failOn: []string{"-m venv"}}
	err := env.Create(context.Background(), runner, "python3")
	assert.ErrorIs(t, err, ErrEnvCreationFailed)
}

func TestPipCommands(t *testing.T) {
	runner := &fakeRunner{}
	env := NewEnv("venv")
	pip := NewPip(env, runner)
	ctx := context.Background()

	require.NoError(t, pip.Available(ctx))
	require.NoError(t, pip.UpgradeSelf(ctx))
	require.NoError(t, pip.Install(ctx, "solders==0.21.0"))
	require.NoError(t, pip.InstallRequirements(ctx, "requirements.txt", true))
	require.NoError(t, pip.CheckImports(ctx, []string{"solders", "aiohttp"}))

	require.Len(t, runner.calls, 5)
	for _, call := range runner.calls {
		assert.True(t, strings.HasPrefix(call, env.Python()), "pip must run through the env interpreter: %s", call)
	}
	assert.Contains(t, runner.calls[1], "pip install --upgrade pip")
	assert.Contains(t, runner.calls[2], "pip install solders==0.21.0")
	assert.Contains(t, runner.calls[3], "install -r requirements.txt --upgrade")
	assert.Contains(t, runner.calls[4], "-c import solders, aiohttp")
}

func TestPipCheckImportsEmptySetIsNoop(t *testing.T) {
	runner := &fakeRunner{failOn: []string{""}}
	pip := NewPip(NewEnv("venv"), runner)
	assert.NoError(t, pip.CheckImports(context.Background(), nil))
	assert.Empty(t, runner.calls)
}

func TestPipAvailableRepair(t *testing.T) {
	runner := &fakeRunner{failOn: []string{"-m pip --version"}}
	pip := NewPip(NewEnv("venv"), runner)
	ctx := context.Background()

	assert.ErrorIs(t, pip.Available(ctx), ErrPipMissing)
	assert.NoError(t, pip.Repair(ctx))
	assert.Contains(t, runner.calls[len(runner.calls)-1], "ensurepip --upgrade")
}
