package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_PreservesModeAndMtime(t *testing.T) {
	src := filepath.Join(t.TempDir(), "deploy.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0o755))

	stamp := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, stamp, stamp))

	dst := filepath.Join(t.TempDir(), "restored", "deploy.sh")
	require.NoError(t, fs.CopyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(stamp), "modification time must survive the copy")
}

func TestCopy_SnapshotStableAcrossRestore(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "openapi.json", `{"openapi":"3.1.0"}`)

	snapshotter := fs.NewSnapshotter(fs.NewWalker())
	original, err := snapshotter.Snapshot(src)
	require.NoError(t, err)

	stored := filepath.Join(t.TempDir(), "stored")
	require.NoError(t, fs.CopyTree(src, stored))

	restored := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, fs.CopyTree(stored, restored))

	roundTrip, err := snapshotter.Snapshot(restored)
	require.NoError(t, err)
	assert.Equal(t, original, roundTrip, "store and restore must not change the metadata digest")
}
