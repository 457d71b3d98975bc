// Package fs provides file system adapters for walking, snapshotting, and
// copying build inputs and artifacts.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/zerr"
)

// defaultIgnores are directory names that never contribute to build inputs.
var defaultIgnores = []string{
	".git",
	".jj",
	"node_modules",
	"__pycache__",
	".venv",
	".forge-cache",
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files under root in lexical order, skipping version
// control and dependency directories plus any extra ignore patterns. A walk
// failure (unreadable directory, vanished root) is yielded as the final pair
// so callers cannot mistake a partially walked tree for a complete one.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			ignored := w.isIgnored(d, ignores)

			if d.IsDir() {
				if ignored {
					return filepath.SkipDir
				}
				return nil
			}

			if ignored {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}

			return nil
		})
		if err != nil {
			yield("", zerr.With(zerr.Wrap(err, "walk failed"), "root", root))
		}
	}
}

// isIgnored checks an entry's name against the default and caller-provided
// ignore patterns.
func (w *Walker) isIgnored(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() {
		for _, ignore := range defaultIgnores {
			if name == ignore {
				return true
			}
		}
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
