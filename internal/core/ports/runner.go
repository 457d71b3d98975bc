package ports

import "context"

// CommandRunner executes external tooling as a scoped resource: the spawned
// process tree is terminated, not abandoned, when the context is cancelled.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes command in dir with the given extra environment entries
	// ("KEY=VALUE"). It returns an error carrying the exit code on failure.
	Run(ctx context.Context, dir string, env []string, command []string) error
}
