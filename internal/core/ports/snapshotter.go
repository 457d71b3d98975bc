package ports

// InputSnapshotter digests the state of a declared input file or directory.
//
// Directories are digested from sorted relative paths plus per-file metadata
// rather than full contents, which bounds the cost of key computation on
// large source trees.
//
//go:generate go run go.uber.org/mock/mockgen -source=snapshotter.go -destination=mocks/mock_snapshotter.go -package=mocks
type InputSnapshotter interface {
	// Snapshot returns a digest of the input's current state. Two calls over
	// an unchanged input return the same digest; any path, size, or
	// modification-time change produces a different one.
	Snapshot(path string) (uint64, error)
}
