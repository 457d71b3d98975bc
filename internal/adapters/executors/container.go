package executors

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.TaskExecutor = (*Container)(nil)

// Container assembles deployable images from the image-definition templates
// and the artifacts of the upstream targets, and emits a multi-service
// composition descriptor. When no image build tool is configured only the
// image references and descriptor are produced.
type Container struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewContainer creates the container image builder executor.
func NewContainer(runner ports.CommandRunner, logger ports.Logger) *Container {
	return &Container{runner: runner, logger: logger}
}

// Kind identifies which tasks this executor handles.
func (e *Container) Kind() domain.ExecutorKind {
	return domain.KindContainer
}

// imageRef describes one assembled image.
type imageRef struct {
	Name       string `json:"name"`
	Tag        string `json:"tag"`
	Dockerfile string `json:"dockerfile"`
	BuildID    string `json:"build_id"`
	Built      bool   `json:"built"`
}

// composition is the multi-service descriptor schema.
type composition struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image       string            `yaml:"image"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// Build produces one image-reference artifact per template plus the
// composition descriptor.
func (e *Container) Build(ctx context.Context, task *domain.BuildTask, buildID string) (*domain.TaskResult, error) {
	start := time.Now()
	cfg := task.Config

	if len(cfg.Images) == 0 {
		return nil, zerr.With(zerr.New("no image templates configured"), "task", task.Name)
	}

	containerDir := domain.ContainerDir(cfg.OutputDir)
	if err := os.MkdirAll(containerDir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create container output directory")
	}

	artifacts := make([]domain.BuildArtifact, 0, len(cfg.Images)+1)
	services := make(map[string]composeService, len(cfg.Images))

	for _, tmpl := range cfg.Images {
		ref := imageRef{
			Name:       tmpl.Name,
			Tag:        tmpl.Tag,
			Dockerfile: tmpl.Dockerfile,
			BuildID:    buildID,
		}

		if len(cfg.Command) > 0 {
			if err := e.buildImage(ctx, cfg, tmpl); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "image build failed"), "image", tmpl.Name)
			}
			ref.Built = true
		}

		artifact, err := e.writeImageRef(containerDir, ref)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)

		services[tmpl.Name] = composeService{
			Image:       tmpl.Tag,
			Environment: map[string]string{"FORGE_ENV": cfg.Environment},
		}
	}

	composeArtifact, err := e.writeComposition(containerDir, services)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, composeArtifact)

	return &domain.TaskResult{
		TaskName:  task.Name,
		Duration:  time.Since(start),
		Artifacts: artifacts,
	}, nil
}

// buildImage invokes the configured image build tool for one template.
func (e *Container) buildImage(ctx context.Context, cfg domain.TaskConfig, tmpl domain.ImageTemplate) error {
	if _, err := os.Stat(tmpl.Dockerfile); err != nil {
		return zerr.With(zerr.Wrap(err, "image definition template is missing"), "path", tmpl.Dockerfile)
	}

	command := make([]string, 0, len(cfg.Command)+6+2*len(tmpl.BuildArgs))
	command = append(command, cfg.Command...)
	command = append(command, "-f", tmpl.Dockerfile, "-t", tmpl.Tag)
	for k, v := range tmpl.BuildArgs {
		command = append(command, "--build-arg", k+"="+v)
	}
	command = append(command, tmpl.Context)

	return e.runner.Run(ctx, ".", configEnv(cfg), command)
}

func (e *Container) writeImageRef(containerDir string, ref imageRef) (domain.BuildArtifact, error) {
	data, err := json.MarshalIndent(ref, "", "  ")
	if err != nil {
		return domain.BuildArtifact{}, zerr.Wrap(err, "failed to marshal image reference")
	}

	path := filepath.Join(containerDir, ref.Name+".image.json")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // build output
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "failed to write image reference"), "path", path)
	}

	return domain.BuildArtifact{
		Type:      domain.ArtifactImageRef,
		Path:      path,
		SizeBytes: int64(len(data)),
		Metadata:  map[string]string{"image": ref.Name, "tag": ref.Tag},
	}, nil
}

func (e *Container) writeComposition(containerDir string, services map[string]composeService) (domain.BuildArtifact, error) {
	data, err := yaml.Marshal(composition{Services: services})
	if err != nil {
		return domain.BuildArtifact{}, zerr.Wrap(err, "failed to marshal composition descriptor")
	}

	path := filepath.Join(containerDir, domain.ComposeFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // build output
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "failed to write composition descriptor"), "path", path)
	}

	return domain.BuildArtifact{
		Type:      domain.ArtifactCompose,
		Path:      path,
		SizeBytes: int64(len(data)),
	}, nil
}
