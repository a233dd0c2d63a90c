package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "fogoctl.db"))
	require.NoError(t, err)
	return ledger
}

func TestRecordRunAndLastRun(t *testing.T) {
	ledger := openTestLedger(t)

	last, err := ledger.LastRun()
	require.NoError(t, err)
	assert.Nil(t, last, "empty ledger has no last run")

	require.NoError(t, ledger.RecordRun("setup", true, 0, 3*time.Second))
	require.NoError(t, ledger.RecordRun("update", false, 2, 500*time.Millisecond))

	last, err = ledger.LastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "update", last.Command)
	assert.False(t, last.Succeeded)
	assert.Equal(t, 2, last.Warnings)
	assert.Equal(t, int64(500), last.DurationMs)
}

func TestTrackArtifactUpserts(t *testing.T) {
	ledger := openTestLedger(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	require.NoError(t, ledger.TrackArtifact(path, KindManaged))

	artifacts, err := ledger.Artifacts()
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, path, artifacts[0].Path)
	assert.Equal(t, KindManaged, artifacts[0].Kind)
	firstHash := artifacts[0].Hash
	assert.NotEmpty(t, firstHash)

	// Re-tracking after a content change updates in place.
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o755))
	require.NoError(t, ledger.TrackArtifact(path, KindManaged))

	artifacts, err = ledger.Artifacts()
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.NotEqual(t, firstHash, artifacts[0].Hash)
}

func TestTrackArtifactMissingFile(t *testing.T) {
	ledger := openTestLedger(t)
	err := ledger.TrackArtifact(filepath.Join(t.TempDir(), "missing.txt"), KindUserOwned)
	assert.Error(t, err)
}

func TestRecordInstallUpserts(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.RecordInstall("aiohttp", "aiohttp==3.9.5", true, false))
	// The unpinned retry overwrites the failed pinned attempt.
	require.NoError(t, ledger.RecordInstall("aiohttp", "aiohttp", false, true))

	var records []InstalledPackage
	require.NoError(t, ledger.db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "aiohttp", records[0].Name)
	assert.Equal(t, "aiohttp", records[0].Spec)
	assert.False(t, records[0].Pinned)
	assert.True(t, records[0].Succeeded)
}
