package executors

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	forgefs "github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TaskExecutor = (*Frontend)(nil)

// Frontend bundles and chunks the UI assets. When a bundler command is
// configured it is expected to write the bundle into the directory named by
// the FORGE_OUTPUT environment variable; without one the source tree is
// copied as-is, which keeps development builds working without the bundler
// toolchain installed.
type Frontend struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewFrontend creates the frontend bundler executor.
func NewFrontend(runner ports.CommandRunner, logger ports.Logger) *Frontend {
	return &Frontend{runner: runner, logger: logger}
}

// Kind identifies which tasks this executor handles.
func (e *Frontend) Kind() domain.ExecutorKind {
	return domain.KindFrontend
}

// Build produces the bundle directory artifact plus a bundle size analysis.
func (e *Frontend) Build(ctx context.Context, task *domain.BuildTask, buildID string) (*domain.TaskResult, error) {
	start := time.Now()
	cfg := task.Config

	if cfg.SourceDir == "" {
		return nil, zerr.With(zerr.New("frontend source directory is not configured"), "task", task.Name)
	}
	if _, err := os.Stat(cfg.SourceDir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "frontend source directory is missing"), "path", cfg.SourceDir)
	}

	bundleDir := domain.BundleDir(cfg.OutputDir)

	if len(cfg.Command) > 0 {
		absBundle, err := filepath.Abs(bundleDir)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to resolve bundle directory")
		}
		env := configEnv(cfg, "FORGE_OUTPUT="+absBundle)
		if err := e.runner.Run(ctx, cfg.SourceDir, env, cfg.Command); err != nil {
			return nil, zerr.Wrap(err, "bundler failed")
		}
		if _, err := os.Stat(bundleDir); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "bundler produced no output"), "path", bundleDir)
		}
	} else {
		e.logger.Info("no bundler configured for " + task.Name + ", copying sources")
		if err := forgefs.CopyTree(cfg.SourceDir, bundleDir); err != nil {
			return nil, zerr.Wrap(err, "failed to copy frontend sources")
		}
	}

	report, err := e.writeBundleReport(cfg, bundleDir)
	if err != nil {
		return nil, err
	}

	bundleSize, err := forgefs.TreeSize(bundleDir)
	if err != nil {
		return nil, err
	}

	return &domain.TaskResult{
		TaskName: task.Name,
		Duration: time.Since(start),
		Artifacts: []domain.BuildArtifact{
			{
				Type:      domain.ArtifactBundle,
				Path:      bundleDir,
				SizeBytes: bundleSize,
				Metadata:  map[string]string{"build_id": buildID},
			},
			report,
		},
	}, nil
}

// bundleReport is the machine-readable bundle size analysis.
type bundleReport struct {
	TotalBytes int64            `json:"total_bytes"`
	FileCount  int              `json:"file_count"`
	Files      map[string]int64 `json:"files"`
}

// writeBundleReport walks the bundle and records per-file sizes. The report
// lives next to the bundle directory so it does not describe itself.
func (e *Frontend) writeBundleReport(cfg domain.TaskConfig, bundleDir string) (domain.BuildArtifact, error) {
	report := bundleReport{Files: make(map[string]int64)}

	walker := forgefs.NewWalker()
	for path, walkErr := range walker.WalkFiles(bundleDir, nil) {
		if walkErr != nil {
			return domain.BuildArtifact{}, zerr.With(zerr.Wrap(walkErr, "failed to walk bundle"), "path", bundleDir)
		}
		info, err := os.Stat(path)
		if err != nil {
			return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "failed to stat bundle file"), "path", path)
		}
		rel, relErr := filepath.Rel(bundleDir, path)
		if relErr != nil {
			rel = path
		}
		report.Files[rel] = info.Size()
		report.TotalBytes += info.Size()
		report.FileCount++
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return domain.BuildArtifact{}, zerr.Wrap(err, "failed to marshal bundle report")
	}

	reportPath := filepath.Join(cfg.OutputDir, domain.BundleReportFileName)
	if err := os.WriteFile(reportPath, data, 0o644); err != nil { //nolint:gosec // build output
		return domain.BuildArtifact{}, zerr.Wrap(err, "failed to write bundle report")
	}

	return domain.BuildArtifact{
		Type:      domain.ArtifactBundleReport,
		Path:      reportPath,
		SizeBytes: int64(len(data)),
	}, nil
}
