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

var _ ports.TaskExecutor = (*Backend)(nil)

// Backend packages the backend service source tree for deployment and emits
// its machine-readable interface schema.
type Backend struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewBackend creates the backend packager executor.
func NewBackend(runner ports.CommandRunner, logger ports.Logger) *Backend {
	return &Backend{runner: runner, logger: logger}
}

// Kind identifies which tasks this executor handles.
func (e *Backend) Kind() domain.ExecutorKind {
	return domain.KindBackend
}

// Build produces the packaged source tree artifact plus the interface schema.
func (e *Backend) Build(ctx context.Context, task *domain.BuildTask, buildID string) (*domain.TaskResult, error) {
	start := time.Now()
	cfg := task.Config

	if cfg.SourceDir == "" {
		return nil, zerr.With(zerr.New("backend source directory is not configured"), "task", task.Name)
	}
	if _, err := os.Stat(cfg.SourceDir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "backend source directory is missing"), "path", cfg.SourceDir)
	}
	if cfg.Manifest != "" {
		if _, err := os.Stat(cfg.Manifest); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "dependency manifest is missing"), "path", cfg.Manifest)
		}
	}

	packageDir := domain.PackageDir(cfg.OutputDir)
	if err := forgefs.CopyTree(cfg.SourceDir, packageDir); err != nil {
		return nil, zerr.Wrap(err, "failed to package backend sources")
	}

	schemaPath := filepath.Join(packageDir, domain.SchemaFileName)
	if len(cfg.Command) > 0 {
		env := configEnv(cfg, "FORGE_SCHEMA_PATH="+schemaPath)
		if err := e.runner.Run(ctx, packageDir, env, cfg.Command); err != nil {
			return nil, zerr.Wrap(err, "schema export failed")
		}
		if _, err := os.Stat(schemaPath); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "schema export produced no document"), "path", schemaPath)
		}
	} else if err := e.writeDefaultSchema(cfg, schemaPath); err != nil {
		return nil, err
	}

	packageSize, err := forgefs.TreeSize(packageDir)
	if err != nil {
		return nil, err
	}
	schemaInfo, err := os.Stat(schemaPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to stat schema document")
	}

	return &domain.TaskResult{
		TaskName: task.Name,
		Duration: time.Since(start),
		Artifacts: []domain.BuildArtifact{
			{
				Type:      domain.ArtifactPackage,
				Path:      packageDir,
				SizeBytes: packageSize,
				Metadata:  map[string]string{"build_id": buildID},
			},
			{
				Type:      domain.ArtifactSchema,
				Path:      schemaPath,
				SizeBytes: schemaInfo.Size(),
			},
		},
	}, nil
}

// writeDefaultSchema emits a minimal OpenAPI document from the project
// metadata when no schema export command is configured.
func (e *Backend) writeDefaultSchema(cfg domain.TaskConfig, path string) error {
	doc := map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   cfg.Settings["FORGE_PROJECT_NAME"],
			"version": cfg.Settings["FORGE_PROJECT_VERSION"],
		},
		"paths": map[string]any{},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal schema document")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // build output
		return zerr.Wrap(err, "failed to write schema document")
	}
	return nil
}
