package fs

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputSnapshotter = (*Snapshotter)(nil)

// Snapshotter digests input files and directories by metadata. A directory
// digest covers the sorted relative paths of every contained file plus each
// file's size and modification time, not file contents. A file whose bytes
// change without its size or mtime moving would therefore produce a false
// cache hit; that tradeoff bounds key-computation cost on large trees.
type Snapshotter struct {
	walker *Walker
}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter(walker *Walker) *Snapshotter {
	return &Snapshotter{walker: walker}
}

// Snapshot returns a digest of the input's current state.
func (s *Snapshotter) Snapshot(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat input"), "path", path)
	}

	hasher := xxhash.New()

	if info.IsDir() {
		// WalkDir yields lexical order, so the relative paths arrive sorted.
		// A partially readable tree must not digest: the result would look
		// like a complete snapshot of a smaller input.
		for filePath, walkErr := range s.walker.WalkFiles(path, nil) {
			if walkErr != nil {
				return 0, zerr.With(zerr.Wrap(walkErr, "failed to walk input"), "path", path)
			}
			rel, relErr := filepath.Rel(path, filePath)
			if relErr != nil {
				rel = filePath
			}
			if err := s.writeFileEntry(hasher, rel, filePath); err != nil {
				return 0, err
			}
		}
		return hasher.Sum64(), nil
	}

	if err := s.writeFileEntry(hasher, filepath.Base(path), path); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}

// writeFileEntry appends one file's relative path, size, and mtime to the digest.
func (s *Snapshotter) writeFileEntry(hasher *xxhash.Digest, rel, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}

	_, _ = hasher.WriteString(rel)
	_, _ = hasher.Write([]byte{0})

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(info.Size()))
	binary.LittleEndian.PutUint64(buf[8:], uint64(info.ModTime().UnixNano()))
	_, _ = hasher.Write(buf[:])

	return nil
}
