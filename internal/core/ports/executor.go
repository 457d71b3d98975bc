// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/farm-framework/forge/internal/core/domain"
)

// TaskExecutor performs the actual work for one kind of build target.
//
// Implementations must be pure functions of the task's config and declared
// inputs: the produced artifacts may not depend on ambient state that the
// cache key does not cover, or cached results become stale silently.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type TaskExecutor interface {
	// Kind identifies which tasks this executor handles.
	Kind() domain.ExecutorKind

	// Build executes the task and returns a result with a non-empty artifact
	// list on success. The context carries cancellation: implementations that
	// spawn external tooling must terminate it when the context is done.
	Build(ctx context.Context, task *domain.BuildTask, buildID string) (*domain.TaskResult, error)
}
