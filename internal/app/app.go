// Package app implements the application layer for forge.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/farm-framework/forge/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// CacheOpener creates the result cache for one build invocation. The cache
// location and size limit come from the invocation options, so the store
// cannot be a process-wide singleton.
type CacheOpener func(opts domain.BuildOptions) (ports.ResultCache, error)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executors    orchestrator.ExecutorSet
	runner       ports.CommandRunner
	logger       ports.Logger
	tracer       ports.Tracer
	openCache    CacheOpener
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executors orchestrator.ExecutorSet,
	runner ports.CommandRunner,
	logger ports.Logger,
	tracer ports.Tracer,
	openCache CacheOpener,
) *App {
	return &App{
		configLoader: loader,
		executors:    executors,
		runner:       runner,
		logger:       logger,
		tracer:       tracer,
		openCache:    openCache,
	}
}

// RunBuild executes the build process for the specified targets. It is the
// fault boundary of the application: every failure mode, including a panic in
// an executor, is folded into the returned result.
func (a *App) RunBuild(ctx context.Context, targetNames []string, opts domain.BuildOptions) (result *domain.BuildResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = failure(start, fmt.Sprintf("internal error: %v", r))
		}
	}()

	opts = opts.Normalized()

	targets, err := domain.ParseTargets(targetNames)
	if err != nil {
		return failure(start, zerr.Wrap(err, "invalid build targets").Error())
	}

	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return failure(start, zerr.Wrap(err, "failed to load project configuration").Error())
	}

	store, err := a.openCache(opts)
	if err != nil {
		return failure(start, zerr.Wrap(err, "failed to open build cache").Error())
	}

	orch := orchestrator.New(a.executors, store, a.runner, a.logger, a.tracer)
	result = orch.Build(ctx, cfg, targets, opts)

	// Expiry and size enforcement also run inline with Put; this sweep covers
	// entries that aged out since the last write.
	if err := store.Cleanup(); err != nil {
		a.logger.Warn("cache cleanup failed: " + err.Error())
	}

	return result
}

// CleanCache removes every cached build result.
func (a *App) CleanCache(opts domain.BuildOptions) error {
	store, err := a.openCache(opts.Normalized())
	if err != nil {
		return zerr.Wrap(err, "failed to open build cache")
	}
	return store.Clear()
}

func failure(start time.Time, msg string) *domain.BuildResult {
	return &domain.BuildResult{
		Success:  false,
		Error:    msg,
		Duration: time.Since(start),
	}
}
