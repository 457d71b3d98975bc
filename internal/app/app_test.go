package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/farm-framework/forge/internal/adapters/executors"
	"github.com/farm-framework/forge/internal/app"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/farm-framework/forge/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	ctrl     *gomock.Controller
	loader   *mocks.MockConfigLoader
	cache    *mocks.MockResultCache
	runner   *mocks.MockCommandRunner
	executor *mocks.MockTaskExecutor
	app      *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().Cached().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any()).AnyTimes()
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		}).AnyTimes()

	f := &fixture{
		ctrl:     ctrl,
		loader:   mocks.NewMockConfigLoader(ctrl),
		cache:    mocks.NewMockResultCache(ctrl),
		runner:   mocks.NewMockCommandRunner(ctrl),
		executor: mocks.NewMockTaskExecutor(ctrl),
	}

	opener := func(domain.BuildOptions) (ports.ResultCache, error) {
		return f.cache, nil
	}
	f.app = app.New(
		f.loader,
		executors.Registry{domain.KindBackend: f.executor},
		f.runner, logger, tracer, opener,
	)
	return f
}

func testOpts(t *testing.T) domain.BuildOptions {
	t.Helper()
	return domain.BuildOptions{
		OutputDir: filepath.Join(t.TempDir(), "build"),
		CacheDir:  filepath.Join(t.TempDir(), "cache"),
	}
}

func backendConfig() *domain.ProjectConfig {
	return &domain.ProjectConfig{
		Name:    "demo",
		Version: "1.0.0",
		Backend: domain.BackendConfig{SourceDir: "backend"},
	}
}

func TestApp_RunBuild(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(".").Return(backendConfig(), nil)
	f.cache.EXPECT().Key(gomock.Any()).Return("cafe000000000001", nil)
	f.cache.EXPECT().Get(gomock.Any()).Return(nil, false)
	f.executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.TaskResult{
		TaskName:  "backend",
		Artifacts: []domain.BuildArtifact{{Type: domain.ArtifactPackage, Path: "build/backend"}},
	}, nil)
	f.cache.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
	f.cache.EXPECT().Cleanup().Return(nil)

	result := f.app.RunBuild(context.Background(), []string{"backend"}, testOpts(t))
	require.True(t, result.Success, "build failed: %s", result.Error)
	assert.NotEmpty(t, result.BuildID)
}

func TestApp_RunBuild_UnknownTarget(t *testing.T) {
	f := newFixture(t)

	result := f.app.RunBuild(context.Background(), []string{"mobile"}, testOpts(t))
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid build targets")
}

func TestApp_RunBuild_NoTargets(t *testing.T) {
	f := newFixture(t)

	result := f.app.RunBuild(context.Background(), nil, testOpts(t))
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no build targets specified")
}

func TestApp_RunBuild_ConfigLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, zerr.New("no forge.yaml"))

	result := f.app.RunBuild(context.Background(), []string{"backend"}, testOpts(t))
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to load project configuration")
}

func TestApp_RunBuild_RecoversFromPanic(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load(".").Return(backendConfig(), nil)
	f.cache.EXPECT().Key(gomock.Any()).Return("cafe000000000002", nil)
	f.cache.EXPECT().Get(gomock.Any()).Return(nil, false)
	f.executor.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *domain.BuildTask, string) (*domain.TaskResult, error) {
			panic("executor bug")
		})

	result := f.app.RunBuild(context.Background(), []string{"backend"}, testOpts(t))
	require.NotNil(t, result, "the boundary must return a result even on panic")
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "internal error")
}

func TestApp_CleanCache(t *testing.T) {
	f := newFixture(t)
	f.cache.EXPECT().Clear().Return(nil)

	require.NoError(t, f.app.CleanCache(domain.BuildOptions{}))
}
