package orchestrator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farm-framework/forge/internal/adapters/cache"
	"github.com/farm-framework/forge/internal/adapters/executors"
	"github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/adapters/telemetry"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/farm-framework/forge/internal/core/ports/mocks"
	"github.com/farm-framework/forge/internal/engine/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) ports.Logger {
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func relaxedSpan(ctrl *gomock.Controller) *mocks.MockSpan {
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().Cached().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).Return(0, nil).AnyTimes()
	return span
}

func relaxedTracer(ctrl *gomock.Controller) ports.Tracer {
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any()).AnyTimes()
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, relaxedSpan(ctrl)
		}).AnyTimes()
	tracer.EXPECT().Close().AnyTimes()
	return tracer
}

func testOpts(t *testing.T) domain.BuildOptions {
	t.Helper()
	return domain.BuildOptions{
		OutputDir: filepath.Join(t.TempDir(), "build"),
		CacheDir:  filepath.Join(t.TempDir(), "cache"),
	}.Normalized()
}

func backendResult() *domain.TaskResult {
	return &domain.TaskResult{
		TaskName: "backend",
		Artifacts: []domain.BuildArtifact{
			{Type: domain.ArtifactPackage, Path: "build/backend", SizeBytes: 42},
		},
	}
}

func TestOrchestrator_ExecutesAndCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000001", nil)
	resultCache.EXPECT().Get("cafe000000000001").Return(nil, false)
	executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(backendResult(), nil)
	resultCache.EXPECT().Put("cafe000000000001", gomock.Any()).Return(nil)

	o := orchestrator.New(
		executors.Registry{domain.KindBackend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	cfg := testConfig()
	result := o.Build(context.Background(), cfg, []domain.BuildTarget{domain.TargetBackend}, testOpts(t))

	require.True(t, result.Success, "build failed: %s", result.Error)
	assert.Equal(t, 1, result.Metrics.TasksExecuted)
	assert.Equal(t, 1, result.Metrics.CacheMisses)
	assert.Zero(t, result.Metrics.CacheHits)
	assert.Contains(t, result.Metrics.TaskDurations, "backend")

	// Task artifact plus manifest and deploy script from post-build.
	types := make([]domain.ArtifactType, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, domain.ArtifactPackage)
	assert.Contains(t, types, domain.ArtifactManifest)
	assert.Contains(t, types, domain.ArtifactDeployScript)
}

func TestOrchestrator_PostBuildPrecompressesBundleAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	bundleDir := filepath.Join(t.TempDir(), "bundle")
	require.NoError(t, os.MkdirAll(bundleDir, 0o750))
	bigJS := filepath.Join(bundleDir, "app.js")
	require.NoError(t, os.WriteFile(bigJS, []byte(strings.Repeat("var x = 1;\n", 200)), 0o644))
	tinyCSS := filepath.Join(bundleDir, "tiny.css")
	require.NoError(t, os.WriteFile(tinyCSS, []byte("body{}"), 0o644))
	pngFile := filepath.Join(bundleDir, "logo.png")
	require.NoError(t, os.WriteFile(pngFile, []byte(strings.Repeat("\x89PNG", 512)), 0o644))

	bundleResult := &domain.TaskResult{
		TaskName: "frontend",
		Artifacts: []domain.BuildArtifact{
			{Type: domain.ArtifactBundle, Path: bundleDir, SizeBytes: 1},
		},
	}

	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000008", nil)
	resultCache.EXPECT().Get(gomock.Any()).Return(nil, false)
	executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(bundleResult, nil)
	resultCache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	o := orchestrator.New(
		executors.Registry{domain.KindFrontend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(), []domain.BuildTarget{domain.TargetFrontend}, testOpts(t))
	require.True(t, result.Success, "build failed: %s", result.Error)
	assert.Empty(t, result.Warnings)

	assert.FileExists(t, bigJS+".gz", "large text assets get a precompressed sibling")
	assert.NoFileExists(t, tinyCSS+".gz", "files below the size floor are left alone")
	assert.NoFileExists(t, pngFile+".gz", "binary formats are not recompressed")
}

func TestOrchestrator_CacheHitSkipsExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000002", nil)
	resultCache.EXPECT().Get("cafe000000000002").Return(backendResult(), true)

	o := orchestrator.New(
		executors.Registry{domain.KindBackend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(), []domain.BuildTarget{domain.TargetBackend}, testOpts(t))

	require.True(t, result.Success, "build failed: %s", result.Error)
	assert.Equal(t, 1, result.Metrics.CacheHits)
	assert.Zero(t, result.Metrics.TasksExecuted)
}

func TestOrchestrator_ForceRebuildBypassesReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	// Get must never be called; the fresh result is still stored.
	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000003", nil)
	executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(backendResult(), nil)
	resultCache.EXPECT().Put("cafe000000000003", gomock.Any()).Return(nil)

	o := orchestrator.New(
		executors.Registry{domain.KindBackend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	opts := testOpts(t)
	opts.ForceRebuild = true
	result := o.Build(context.Background(), testConfig(), []domain.BuildTarget{domain.TargetBackend}, opts)
	require.True(t, result.Success, "build failed: %s", result.Error)
}

func TestOrchestrator_FailureSkipsDependentStages(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	backendExec := mocks.NewMockTaskExecutor(ctrl)
	containerExec := mocks.NewMockTaskExecutor(ctrl)

	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000004", nil)
	resultCache.EXPECT().Get("cafe000000000004").Return(nil, false)
	backendExec.EXPECT().
		Build(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, zerr.New("packaging exploded"))
	// No expectations on containerExec: a later stage must never start.

	o := orchestrator.New(
		executors.Registry{
			domain.KindBackend:   backendExec,
			domain.KindContainer: containerExec,
		},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(),
		[]domain.BuildTarget{domain.TargetBackend, domain.TargetContainer}, testOpts(t))

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "packaging exploded")
	assert.Contains(t, result.Error, "backend")
}

func TestOrchestrator_ParallelStageFailureCancelsSiblings(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	backendExec := mocks.NewMockTaskExecutor(ctrl)
	aiExec := mocks.NewMockTaskExecutor(ctrl)
	containerExec := mocks.NewMockTaskExecutor(ctrl)

	resultCache.EXPECT().Key(gomock.Any()).Return("", nil).AnyTimes()

	// Backend and ai-models share a parallel stage. The backend task blocks
	// until its context is cancelled; the ai-models failure must cancel it
	// rather than let it run to completion.
	backendStarted := make(chan struct{})
	backendExec.EXPECT().
		Build(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.BuildTask, _ string) (*domain.TaskResult, error) {
			close(backendStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		}).Times(1)
	aiExec.EXPECT().
		Build(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.BuildTask, string) (*domain.TaskResult, error) {
			<-backendStarted
			return nil, zerr.New("optimizer exploded")
		}).Times(1)
	// No expectations on containerExec: the dependent stage must never start.

	o := orchestrator.New(
		executors.Registry{
			domain.KindBackend:   backendExec,
			domain.KindAIModels:  aiExec,
			domain.KindContainer: containerExec,
		},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(),
		[]domain.BuildTarget{domain.TargetBackend, domain.TargetAIModels, domain.TargetContainer},
		testOpts(t))

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "optimizer exploded")
	assert.Contains(t, result.Error, "ai-models")
	assert.Zero(t, result.Metrics.TasksExecuted, "neither task of the failed stage completed")
}

func TestOrchestrator_FailedStageKeepsEarlierArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	backendExec := mocks.NewMockTaskExecutor(ctrl)
	frontendExec := mocks.NewMockTaskExecutor(ctrl)

	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000005", nil).Times(2)
	resultCache.EXPECT().Get("cafe000000000005").Return(nil, false).Times(2)
	backendExec.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(backendResult(), nil)
	resultCache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
	frontendExec.EXPECT().
		Build(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, zerr.New("bundler exploded"))

	o := orchestrator.New(
		executors.Registry{
			domain.KindBackend:  backendExec,
			domain.KindFrontend: frontendExec,
		},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(),
		[]domain.BuildTarget{domain.TargetFrontend, domain.TargetBackend}, testOpts(t))

	require.False(t, result.Success)
	require.Len(t, result.Artifacts, 1, "artifacts of completed stages must be kept")
	assert.Equal(t, domain.ArtifactPackage, result.Artifacts[0].Type)
	assert.Equal(t, 1, result.Metrics.TasksExecuted)
}

func TestOrchestrator_PreBuildValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)

	o := orchestrator.New(
		executors.Registry{},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	cfg := testConfig()
	cfg.Frontend.SourceDir = ""
	result := o.Build(context.Background(), cfg, []domain.BuildTarget{domain.TargetFrontend}, testOpts(t))

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "frontend")
	assert.Empty(t, result.Artifacts)
}

func TestOrchestrator_RunsPluginsAndTypeGeneration(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	cfg := testConfig()
	cfg.Plugins = []domain.PluginHook{{Name: "lint", Command: []string{"npm", "run", "lint"}}}
	cfg.Backend.TypeGenCommand = []string{"npm", "run", "generate-types"}

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), ".", nil, []string{"npm", "run", "lint"}).Return(nil),
		runner.EXPECT().Run(gomock.Any(), cfg.Backend.SourceDir, nil, []string{"npm", "run", "generate-types"}).Return(nil),
		executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(backendResult(), nil),
	)
	resultCache.EXPECT().Key(gomock.Any()).Return("cafe000000000006", nil)
	resultCache.EXPECT().Get(gomock.Any()).Return(nil, false)
	resultCache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	o := orchestrator.New(
		executors.Registry{domain.KindBackend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), cfg, []domain.BuildTarget{domain.TargetBackend}, testOpts(t))
	require.True(t, result.Success, "build failed: %s", result.Error)
}

func TestOrchestrator_PluginFailureAbortsBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)

	cfg := testConfig()
	cfg.Plugins = []domain.PluginHook{{Name: "lint", Command: []string{"npm", "run", "lint"}}}
	runner.EXPECT().Run(gomock.Any(), ".", nil, gomock.Any()).Return(zerr.New("lint failed"))

	o := orchestrator.New(
		executors.Registry{},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), cfg, []domain.BuildTarget{domain.TargetBackend}, testOpts(t))
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "lint")
}

func TestOrchestrator_CacheFaultDegradesToMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	resultCache := mocks.NewMockResultCache(ctrl)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := mocks.NewMockTaskExecutor(ctrl)

	// Key computation fails: the task still executes, nothing is stored.
	resultCache.EXPECT().Key(gomock.Any()).Return("", zerr.New("snapshot failed"))
	executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(backendResult(), nil)

	o := orchestrator.New(
		executors.Registry{domain.KindBackend: executor},
		resultCache, runner, quietLogger(ctrl), relaxedTracer(ctrl),
	)

	result := o.Build(context.Background(), testConfig(), []domain.BuildTarget{domain.TargetBackend}, testOpts(t))
	require.True(t, result.Success, "a cache fault must never fail the build: %s", result.Error)
}

// TestOrchestrator_RepeatBuildHitsCache wires real executors, cache, and
// snapshotter together: a second build over unchanged sources must be served
// entirely from the cache.
func TestOrchestrator_RepeatBuildHitsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := quietLogger(ctrl)

	workDir := t.TempDir()
	frontendDir := filepath.Join(workDir, "frontend")
	backendDir := filepath.Join(workDir, "backend")
	require.NoError(t, os.MkdirAll(frontendDir, 0o750))
	require.NoError(t, os.MkdirAll(backendDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(frontendDir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(backendDir, "main.py"), []byte("app = FastAPI()"), 0o644))

	cfg := &domain.ProjectConfig{
		Name:     "demo",
		Version:  "1.0.0",
		Frontend: domain.FrontendConfig{SourceDir: frontendDir},
		Backend:  domain.BackendConfig{SourceDir: backendDir},
	}

	opts := domain.BuildOptions{
		OutputDir: filepath.Join(workDir, "build"),
		CacheDir:  filepath.Join(workDir, ".forge-cache"),
	}.Normalized()

	keyer := cache.NewKeyer(fs.NewSnapshotter(fs.NewWalker()))
	store, err := cache.NewStore(opts.CacheDir, opts.MaxCacheSizeBytes, domain.DefaultCacheTTL, keyer, logger)
	require.NoError(t, err)

	runner := executors.NewRunner(logger)
	o := orchestrator.New(
		executors.NewRegistry(runner, logger),
		store, runner, logger, telemetry.NewNoOpTracer(),
	)

	targets := []domain.BuildTarget{domain.TargetFrontend, domain.TargetBackend}

	first := o.Build(context.Background(), cfg, targets, opts)
	require.True(t, first.Success, "first build failed: %s", first.Error)
	assert.Equal(t, 2, first.Metrics.TasksExecuted)
	assert.Zero(t, first.Metrics.CacheHits)

	second := o.Build(context.Background(), cfg, targets, opts)
	require.True(t, second.Success, "second build failed: %s", second.Error)
	assert.Equal(t, 2, second.Metrics.CacheHits, "unchanged sources must hit the cache")
	assert.Zero(t, second.Metrics.TasksExecuted)

	// Restored outputs are present even though pre-build wiped the directory.
	_, err = os.Stat(filepath.Join(opts.OutputDir, "backend", "openapi.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(opts.OutputDir, "frontend", "index.html"))
	assert.NoError(t, err)
}
