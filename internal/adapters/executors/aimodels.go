package executors

import (
	"context"
	"os"
	"path/filepath"
	"time"

	forgefs "github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.TaskExecutor = (*AIModels)(nil)

// AIModels prepares AI model artifacts from the declarative model
// configuration: one configuration document per model and, for models marked
// for export, an optimized binary produced by the configured export tool.
type AIModels struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewAIModels creates the model optimizer executor.
func NewAIModels(runner ports.CommandRunner, logger ports.Logger) *AIModels {
	return &AIModels{runner: runner, logger: logger}
}

// Kind identifies which tasks this executor handles.
func (e *AIModels) Kind() domain.ExecutorKind {
	return domain.KindAIModels
}

// modelDocument is the per-model configuration artifact content.
type modelDocument struct {
	Model        string `yaml:"model"`
	Provider     string `yaml:"provider"`
	Quantization string `yaml:"quantization,omitempty"`
	ContextSize  int    `yaml:"contextSize,omitempty"`
	Environment  string `yaml:"environment"`
}

// Build produces per-model configuration artifacts and optional exports.
func (e *AIModels) Build(ctx context.Context, task *domain.BuildTask, buildID string) (*domain.TaskResult, error) {
	start := time.Now()
	cfg := task.Config

	if len(cfg.Models) == 0 {
		return nil, zerr.With(zerr.New("no models configured"), "task", task.Name)
	}

	modelsDir := domain.ModelsDir(cfg.OutputDir)
	if err := os.MkdirAll(modelsDir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create models directory")
	}

	artifacts := make([]domain.BuildArtifact, 0, len(cfg.Models))
	for _, model := range cfg.Models {
		artifact, err := e.writeModelConfig(cfg, modelsDir, model)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)

		if model.Export && len(cfg.Command) > 0 {
			exportArtifact, err := e.exportModel(ctx, cfg, modelsDir, model, buildID)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, exportArtifact)
		}
	}

	return &domain.TaskResult{
		TaskName:  task.Name,
		Duration:  time.Since(start),
		Artifacts: artifacts,
	}, nil
}

func (e *AIModels) writeModelConfig(cfg domain.TaskConfig, modelsDir string, model domain.ModelSpec) (domain.BuildArtifact, error) {
	doc := modelDocument{
		Model:        model.Name,
		Provider:     model.Provider,
		Quantization: model.Quantization,
		ContextSize:  model.ContextSize,
		Environment:  cfg.Environment,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "failed to marshal model config"), "model", model.Name)
	}

	path := filepath.Join(modelsDir, model.Name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // build output
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "failed to write model config"), "path", path)
	}

	return domain.BuildArtifact{
		Type:      domain.ArtifactModelConfig,
		Path:      path,
		SizeBytes: int64(len(data)),
		Metadata:  map[string]string{"model": model.Name, "provider": model.Provider},
	}, nil
}

// exportModel invokes the configured export tool, which must write the
// optimized binary into the directory named by FORGE_EXPORT_DIR.
func (e *AIModels) exportModel(ctx context.Context, cfg domain.TaskConfig, modelsDir string, model domain.ModelSpec, buildID string) (domain.BuildArtifact, error) {
	exportDir := filepath.Join(modelsDir, model.Name)
	absExport, err := filepath.Abs(exportDir)
	if err != nil {
		return domain.BuildArtifact{}, zerr.Wrap(err, "failed to resolve export directory")
	}

	env := configEnv(cfg,
		"FORGE_MODEL="+model.Name,
		"FORGE_EXPORT_DIR="+absExport,
	)
	if err := e.runner.Run(ctx, cfg.OutputDir, env, cfg.Command); err != nil {
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "model export failed"), "model", model.Name)
	}
	if _, err := os.Stat(exportDir); err != nil {
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "model export produced no output"), "path", exportDir)
	}

	size, err := forgefs.TreeSize(exportDir)
	if err != nil {
		return domain.BuildArtifact{}, err
	}

	return domain.BuildArtifact{
		Type:      domain.ArtifactModelExport,
		Path:      exportDir,
		SizeBytes: size,
		Metadata:  map[string]string{"model": model.Name, "build_id": buildID},
	}, nil
}
