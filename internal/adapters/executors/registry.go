package executors

import (
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry maps each executor kind to its implementation. The kind set is
// closed, so construction covers every variant and lookup of a missing kind
// is a programming error surfaced as ErrUnknownExecutor.
type Registry map[domain.ExecutorKind]ports.TaskExecutor

// NewRegistry builds the full executor set over a shared runner.
func NewRegistry(runner ports.CommandRunner, logger ports.Logger) Registry {
	return Registry{
		domain.KindFrontend:  NewFrontend(runner, logger),
		domain.KindBackend:   NewBackend(runner, logger),
		domain.KindAIModels:  NewAIModels(runner, logger),
		domain.KindContainer: NewContainer(runner, logger),
	}
}

// For returns the executor for kind.
func (r Registry) For(kind domain.ExecutorKind) (ports.TaskExecutor, error) {
	exec, ok := r[kind]
	if !ok {
		return nil, zerr.With(domain.ErrUnknownExecutor, "kind", kind.String())
	}
	return exec, nil
}
