package executors_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/farm-framework/forge/internal/adapters/executors"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func frontendTask(t *testing.T, workDir string) *domain.BuildTask {
	t.Helper()
	sourceDir := filepath.Join(workDir, "frontend")
	writeFile(t, sourceDir, "index.html", "<html></html>")
	writeFile(t, sourceDir, "src/app.tsx", "export {}")

	outputDir := filepath.Join(workDir, "build")
	require.NoError(t, os.MkdirAll(outputDir, 0o750))

	return &domain.BuildTask{
		Name: "frontend",
		Kind: domain.KindFrontend,
		Config: domain.TaskConfig{
			Environment: "development",
			SourceDir:   sourceDir,
			OutputDir:   outputDir,
		},
	}
}

func TestFrontend_CopyModeWithoutBundler(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := executors.NewFrontend(runner, quietLogger(t))

	workDir := t.TempDir()
	task := frontendTask(t, workDir)

	result, err := executor.Build(context.Background(), task, "bid")
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 2)
	assert.Equal(t, domain.ArtifactBundle, result.Artifacts[0].Type)
	assert.Equal(t, domain.ArtifactBundleReport, result.Artifacts[1].Type)

	copied := filepath.Join(task.Config.OutputDir, "frontend", "src", "app.tsx")
	_, err = os.Stat(copied)
	assert.NoError(t, err)
}

func TestFrontend_BundleReportContents(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := executors.NewFrontend(runner, quietLogger(t))

	workDir := t.TempDir()
	task := frontendTask(t, workDir)

	result, err := executor.Build(context.Background(), task, "bid")
	require.NoError(t, err)

	data, err := os.ReadFile(result.Artifacts[1].Path)
	require.NoError(t, err)

	var report struct {
		TotalBytes int64            `json:"total_bytes"`
		FileCount  int              `json:"file_count"`
		Files      map[string]int64 `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 2, report.FileCount)
	assert.Equal(t, int64(len("<html></html>")), report.Files["index.html"])
	assert.Equal(t, result.Artifacts[0].SizeBytes, report.TotalBytes)
}

func TestFrontend_BundlerCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := executors.NewFrontend(runner, quietLogger(t))

	workDir := t.TempDir()
	task := frontendTask(t, workDir)
	task.Config.Command = []string{"npm", "run", "build"}

	bundleDir := filepath.Join(task.Config.OutputDir, "frontend")
	runner.EXPECT().
		Run(gomock.Any(), task.Config.SourceDir, gomock.Any(), []string{"npm", "run", "build"}).
		DoAndReturn(func(_ context.Context, _ string, env, _ []string) error {
			assert.Contains(t, env, "FORGE_ENV=development")
			writeFile(t, bundleDir, "assets/app.js", "bundled")
			return nil
		})

	result, err := executor.Build(context.Background(), task, "bid")
	require.NoError(t, err)
	assert.Equal(t, bundleDir, result.Artifacts[0].Path)
}

func TestFrontend_BundlerProducesNoOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	executor := executors.NewFrontend(runner, quietLogger(t))

	workDir := t.TempDir()
	task := frontendTask(t, workDir)
	task.Config.Command = []string{"true"}

	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := executor.Build(context.Background(), task, "bid")
	assert.ErrorContains(t, err, "bundler produced no output")
}
