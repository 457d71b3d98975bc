package app

import (
	"context"

	"github.com/farm-framework/forge/internal/adapters/cache"
	"github.com/farm-framework/forge/internal/adapters/config"
	"github.com/farm-framework/forge/internal/adapters/executors"
	"github.com/farm-framework/forge/internal/adapters/logger"
	"github.com/farm-framework/forge/internal/adapters/telemetry"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/grindlemire/graft"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			executors.RegistryNodeID,
			executors.RunnerNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			cache.KeyerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[executors.Registry](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.CommandRunner](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	keyer, err := graft.Dep[*cache.Keyer](ctx)
	if err != nil {
		return nil, err
	}

	opener := func(opts domain.BuildOptions) (ports.ResultCache, error) {
		return cache.NewStore(opts.CacheDir, opts.MaxCacheSizeBytes, domain.DefaultCacheTTL, keyer, log)
	}

	return New(loader, registry, runner, log, tracer, opener), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    application,
		Logger: log,
		Tracer: tracer,
	}, nil
}
