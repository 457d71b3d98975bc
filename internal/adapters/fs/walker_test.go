package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_SkipsDefaultIgnores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/app.ts", "export {}")
	writeFile(t, dir, "node_modules/react/index.js", "module.exports = {}")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, dir, "__pycache__/app.pyc", "bytecode")

	var files []string
	for path, walkErr := range fs.NewWalker().WalkFiles(dir, nil) {
		require.NoError(t, walkErr)
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		files = append(files, rel)
	}

	assert.Equal(t, []string{filepath.Join("src", "app.ts")}, files)
}

func TestWalker_ExtraIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "app.log", "noise")
	writeFile(t, dir, "tmp/scratch.txt", "noise")

	var files []string
	for path, walkErr := range fs.NewWalker().WalkFiles(dir, []string{"*.log", "tmp"}) {
		require.NoError(t, walkErr)
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		files = append(files, rel)
	}

	assert.Equal(t, []string{"app.py"}, files)
}

func TestWalker_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "c/d.txt", "d")

	var files []string
	for path, walkErr := range fs.NewWalker().WalkFiles(dir, nil) {
		require.NoError(t, walkErr)
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		files = append(files, rel)
	}

	assert.Equal(t, []string{"a.txt", "b.txt", filepath.Join("c", "d.txt")}, files)
}

func TestWalker_SurfacesWalkError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	var files []string
	var walkErr error
	for path, err := range fs.NewWalker().WalkFiles(missing, nil) {
		if err != nil {
			walkErr = err
			break
		}
		files = append(files, path)
	}

	require.Error(t, walkErr, "a failed walk must not look like an empty tree")
	assert.Empty(t, files)
}

func TestCopyTree_RoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.txt", "alpha")
	writeFile(t, src, "sub/b.txt", "beta")

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, fs.CopyTree(src, dst))

	size, err := fs.TreeSize(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len("alpha")+len("beta")), size)
}
