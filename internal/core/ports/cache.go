package ports

import "github.com/farm-framework/forge/internal/core/domain"

// ResultCache avoids redundant executor invocations across builds. It is a
// performance optimization, never a correctness dependency: implementations
// recover from corruption by treating the affected key as a miss.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ResultCache interface {
	// Key computes the deterministic cache key for a task from its executor
	// kind, dependency list, canonical configuration, and a digest over every
	// declared input. Stable across process restarts.
	Key(task *domain.BuildTask) (string, error)

	// Get returns the cached result for key, restoring artifact payloads
	// byte-for-byte, or false on any miss: no entry, entry past its
	// time-to-live, or a dangling payload (purged as a side effect).
	Get(key string) (*domain.TaskResult, bool)

	// Put persists the result metadata plus a copy of every artifact payload
	// under a key-scoped directory, then evicts least-recently-used entries
	// if the configured size bound is exceeded.
	Put(key string, result *domain.TaskResult) error

	// Cleanup purges entries past their time-to-live, then evicts
	// least-recently-used entries until total size is at or below 80% of the
	// configured maximum.
	Cleanup() error

	// Clear removes every entry and payload.
	Clear() error
}
