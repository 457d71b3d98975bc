package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ExecutorSet resolves the executor implementation for a task kind.
type ExecutorSet interface {
	For(kind domain.ExecutorKind) (ports.TaskExecutor, error)
}

// Orchestrator drives one build invocation: plan, pre-build, staged execution
// with cache consultation around every task, aggregation, post-build.
type Orchestrator struct {
	planner   *Planner
	executors ExecutorSet
	cache     ports.ResultCache
	runner    ports.CommandRunner
	logger    ports.Logger
	tracer    ports.Tracer
}

// New creates a new Orchestrator.
func New(
	executors ExecutorSet,
	cache ports.ResultCache,
	runner ports.CommandRunner,
	logger ports.Logger,
	tracer ports.Tracer,
) *Orchestrator {
	return &Orchestrator{
		planner:   NewPlanner(),
		executors: executors,
		cache:     cache,
		runner:    runner,
		logger:    logger,
		tracer:    tracer,
	}
}

// Build executes the requested targets and always returns a structured
// result: plan and pre-build failures abort before any stage runs, executor
// failures stop execution but keep the artifacts of completed stages, and
// post-build failures degrade to warnings.
func (o *Orchestrator) Build(ctx context.Context, cfg *domain.ProjectConfig, targets []domain.BuildTarget, opts domain.BuildOptions) *domain.BuildResult {
	start := time.Now()
	opts = opts.Normalized()

	plan, err := o.planner.Plan(cfg, targets, opts)
	if err != nil {
		return failureResult("", start, nil, domain.BuildMetrics{}, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := o.preBuild(ctx, cfg, plan, opts); err != nil {
		return failureResult(plan.BuildID, start, nil, domain.BuildMetrics{}, err)
	}

	o.tracer.EmitPlan(ctx, plan.TaskNames())

	state := newRunState()
	for _, stage := range plan.Stages {
		if err := o.runStage(ctx, plan.BuildID, stage, state, opts); err != nil {
			return failureResult(plan.BuildID, start, state.artifactList(), state.metricsSnapshot(), err)
		}
	}

	warnings := o.postBuild(plan, state, opts)

	return &domain.BuildResult{
		BuildID:   plan.BuildID,
		Success:   true,
		Duration:  time.Since(start),
		Artifacts: state.artifactList(),
		Metrics:   state.metricsSnapshot(),
		Warnings:  warnings,
	}
}

// runStage executes one stage. Parallel stages run every task concurrently
// and fail fast: the first failure cancels the stage context, which
// terminates the remaining in-flight tasks rather than draining them. The
// choice is deterministic for callers: a failed stage never starts new work.
func (o *Orchestrator) runStage(ctx context.Context, buildID string, stage domain.BuildStage, state *runState, opts domain.BuildOptions) error {
	if stage.Parallel && len(stage.Tasks) > 1 {
		g, groupCtx := errgroup.WithContext(ctx)
		for _, task := range stage.Tasks {
			g.Go(func() error {
				return o.runTask(groupCtx, buildID, &task, state, opts)
			})
		}
		return g.Wait()
	}

	for _, task := range stage.Tasks {
		if err := o.runTask(ctx, buildID, &task, state, opts); err != nil {
			return err
		}
	}
	return nil
}

// runTask consults the cache, invokes the executor on a miss, and stores the
// fresh result back. Cache faults are logged and degrade to misses; they
// never fail the task.
func (o *Orchestrator) runTask(ctx context.Context, buildID string, task *domain.BuildTask, state *runState, opts domain.BuildOptions) error {
	if err := ctx.Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "task cancelled"), "task", task.Name)
	}

	_, span := o.tracer.Start(ctx, task.Name)
	defer span.End()

	taskStart := time.Now()

	key, err := o.cache.Key(task)
	if err != nil {
		o.logger.Warn("cache key computation failed for " + task.Name + ": " + err.Error())
		key = ""
	}

	if !opts.ForceRebuild && key != "" {
		if cached, ok := o.cache.Get(key); ok {
			o.logger.Info("cache hit for " + task.Name)
			span.Cached()
			state.recordHit(task.Name, time.Since(taskStart), cached)
			return nil
		}
	}

	executor, err := o.executors.For(task.Kind)
	if err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, "task execution failed"), "task", task.Name)
	}

	result, err := executor.Build(ctx, task, buildID)
	if err != nil {
		wrapped := zerr.With(zerr.Wrap(err, "task execution failed"), "task", task.Name)
		span.RecordError(wrapped)
		return wrapped
	}

	if key != "" {
		if putErr := o.cache.Put(key, result); putErr != nil {
			o.logger.Warn("cache store failed for " + task.Name + ": " + putErr.Error())
		}
	}

	state.recordMiss(task.Name, time.Since(taskStart), result)
	return nil
}

// runState aggregates artifacts and metrics. Appends are mutex-guarded
// because tasks in a parallel stage complete concurrently.
type runState struct {
	mu        sync.Mutex
	artifacts []domain.BuildArtifact
	metrics   domain.BuildMetrics
}

func newRunState() *runState {
	return &runState{
		metrics: domain.BuildMetrics{
			TaskDurations: make(map[string]time.Duration),
		},
	}
}

func (s *runState) recordHit(taskName string, elapsed time.Duration, result *domain.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.CacheHits++
	s.metrics.TaskDurations[taskName] = elapsed
	s.artifacts = append(s.artifacts, result.Artifacts...)
}

func (s *runState) recordMiss(taskName string, elapsed time.Duration, result *domain.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.CacheMisses++
	s.metrics.TasksExecuted++
	s.metrics.TaskDurations[taskName] = elapsed
	s.artifacts = append(s.artifacts, result.Artifacts...)
}

func (s *runState) appendArtifact(artifact domain.BuildArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, artifact)
}

func (s *runState) artifactList() []domain.BuildArtifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BuildArtifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

func (s *runState) metricsSnapshot() domain.BuildMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make(map[string]time.Duration, len(s.metrics.TaskDurations))
	for k, v := range s.metrics.TaskDurations {
		durations[k] = v
	}
	snapshot := s.metrics
	snapshot.TaskDurations = durations
	return snapshot
}

// failureResult wraps any unrecoverable error into a structured result; the
// top-level API never raises past its boundary.
func failureResult(buildID string, start time.Time, artifacts []domain.BuildArtifact, metrics domain.BuildMetrics, err error) *domain.BuildResult {
	return &domain.BuildResult{
		BuildID:   buildID,
		Success:   false,
		Error:     err.Error(),
		Duration:  time.Since(start),
		Artifacts: artifacts,
		Metrics:   metrics,
	}
}
