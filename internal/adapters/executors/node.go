package executors

import (
	"context"

	"github.com/farm-framework/forge/internal/adapters/logger"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/grindlemire/graft"
)

const (
	// RunnerNodeID is the unique identifier for the command runner Graft node.
	RunnerNodeID graft.ID = "adapter.executors.runner"
	// RegistryNodeID is the unique identifier for the executor registry Graft node.
	RegistryNodeID graft.ID = "adapter.executors.registry"
)

func init() {
	graft.Register(graft.Node[ports.CommandRunner]{
		ID:        RunnerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.CommandRunner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(log), nil
		},
	})

	graft.Register(graft.Node[Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RunnerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (Registry, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(runner, log), nil
		},
	})
}
