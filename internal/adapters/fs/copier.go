package fs

import (
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// CopyTree copies the file or directory at src to dst, preserving relative
// structure. Ignored directories (version control, dependency caches) are
// skipped when copying a tree; dst is created as needed.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", src)
	}

	if !info.IsDir() {
		return CopyFile(src, dst)
	}

	walker := NewWalker()
	for path, walkErr := range walker.WalkFiles(src, nil) {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, "failed to walk source tree"), "path", src)
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return zerr.Wrap(relErr, "failed to relativize path")
		}
		if err := CopyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies a single file, creating parent directories of dst. Mode
// and modification time are preserved: cached payloads are restored with the
// metadata they were stored with, so a restore does not invalidate the
// metadata snapshot that keyed the entry.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create destination directory")
	}

	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source file"), "path", src)
	}

	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination file"), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}

	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close destination file"), "path", dst)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to preserve modification time"), "path", dst)
	}
	return nil
}

// TreeSize returns the total size in bytes of the file or directory at path.
func TreeSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	walker := NewWalker()
	for filePath, walkErr := range walker.WalkFiles(path, nil) {
		if walkErr != nil {
			return 0, zerr.With(zerr.Wrap(walkErr, "failed to walk tree"), "path", path)
		}
		fi, statErr := os.Stat(filePath)
		if statErr != nil {
			return 0, zerr.With(zerr.Wrap(statErr, "failed to stat file"), "path", filePath)
		}
		total += fi.Size()
	}
	return total, nil
}
