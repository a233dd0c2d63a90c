package scaffold

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotHennadii/fogoctl/internal/python"
)

func TestEnsureCredentialTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private_key.txt")

	created, err := EnsureCredentialTemplate(path)
	require.NoError(t, err)
	assert.True(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "base58")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "key file must not be world-readable")
	}
}

func TestEnsureProxyTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.txt")

	created, err := EnsureProxyTemplate(path)
	require.NoError(t, err)
	assert.True(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "socks5://")
	assert.Contains(t, string(content), "http://")
}

func TestEnsureTemplatesNeverOverwrite(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "private_key.txt")
	userContent := "my-secret-key\n"
	require.NoError(t, os.WriteFile(keyPath, []byte(userContent), 0o600))

	created, err := EnsureCredentialTemplate(keyPath)
	require.NoError(t, err)
	assert.False(t, created)

	content, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, userContent, string(content), "existing user file must be preserved")
}

func TestScriptPaths(t *testing.T) {
	set := ScriptPaths("work")
	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join("work", "run.bat"), set.Run)
		assert.Equal(t, filepath.Join("work", "update.bat"), set.Update)
	} else {
		assert.Equal(t, filepath.Join("work", "run.sh"), set.Run)
		assert.Equal(t, filepath.Join("work", "update.sh"), set.Update)
	}
}

func TestWriteScripts(t *testing.T) {
	dir := t.TempDir()
	env := python.NewEnv(filepath.Join(dir, "venv"))

	set, err := WriteScripts(dir, env, "main.py", "requirements.txt")
	require.NoError(t, err)

	for _, path := range []string{set.Run, set.Update} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), generatedHeader)
		assert.Contains(t, string(content), "fogoctl setup")
	}

	runContent, err := os.ReadFile(set.Run)
	require.NoError(t, err)
	assert.Contains(t, string(runContent), "main.py")

	updateContent, err := os.ReadFile(set.Update)
	require.NoError(t, err)
	assert.Contains(t, string(updateContent), "requirements.txt")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(set.Run)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "run script must be executable")
	}
}

func TestWriteScriptsOverwritesStaleScripts(t *testing.T) {
	dir := t.TempDir()
	env := python.NewEnv(filepath.Join(dir, "venv"))

	set := ScriptPaths(dir)
	require.NoError(t, os.WriteFile(set.Run, []byte("stale content\n"), 0o755))

	_, err := WriteScripts(dir, env, "main.py", "requirements.txt")
	require.NoError(t, err)

	content, err := os.ReadFile(set.Run)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale content")
	assert.Contains(t, string(content), generatedHeader)
}
