package orchestrator

import (
	"context"
	"errors"
	"os"

	"github.com/farm-framework/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// preBuild runs the preparation steps a build depends on: configuration
// validation, output directory reset, plugin hooks, and backend type
// generation. Any failure aborts the build before the first stage starts.
func (o *Orchestrator) preBuild(ctx context.Context, cfg *domain.ProjectConfig, plan *domain.BuildPlan, opts domain.BuildOptions) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"validate-config", func() error { return validateConfig(cfg, plan) }},
		{"clean-output", func() error { return cleanOutput(opts.OutputDir) }},
		{"plugin-hooks", func() error { return o.runPluginHooks(ctx, cfg) }},
		{"type-generation", func() error { return o.runTypeGeneration(ctx, cfg, plan) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return errors.Join(domain.ErrPreBuild, zerr.With(err, "step", step.name))
		}
	}
	return nil
}

// validateConfig checks that every planned task has the configuration its
// executor requires, so misconfiguration surfaces before any work runs.
func validateConfig(cfg *domain.ProjectConfig, plan *domain.BuildPlan) error {
	for _, stage := range plan.Stages {
		for _, task := range stage.Tasks {
			switch task.Kind {
			case domain.KindFrontend:
				if cfg.Frontend.SourceDir == "" {
					return zerr.New("frontend build requested but no frontend source directory configured")
				}
			case domain.KindBackend:
				if cfg.Backend.SourceDir == "" {
					return zerr.New("backend build requested but no backend source directory configured")
				}
			case domain.KindAIModels:
				if len(cfg.AIModels.Models) == 0 {
					return zerr.New("ai-models build requested but no models configured")
				}
			case domain.KindContainer:
				if len(cfg.Container.Images) == 0 {
					return zerr.New("container build requested but no images configured")
				}
			}
		}
	}
	return nil
}

// cleanOutput removes stale output from previous builds and recreates the
// directory so executors can assume it exists.
func cleanOutput(outputDir string) error {
	if err := os.RemoveAll(outputDir); err != nil {
		return zerr.Wrap(err, "failed to clean output directory")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return zerr.Wrap(err, "failed to create output directory")
	}
	return nil
}

func (o *Orchestrator) runPluginHooks(ctx context.Context, cfg *domain.ProjectConfig) error {
	for _, hook := range cfg.Plugins {
		if len(hook.Command) == 0 {
			continue
		}
		o.logger.Info("running build plugin " + hook.Name)
		if err := o.runner.Run(ctx, ".", nil, hook.Command); err != nil {
			return zerr.With(zerr.Wrap(err, "build plugin failed"), "plugin", hook.Name)
		}
	}
	return nil
}

// runTypeGeneration regenerates client types from the backend schema when a
// backend build is planned and the project declares a generator command.
func (o *Orchestrator) runTypeGeneration(ctx context.Context, cfg *domain.ProjectConfig, plan *domain.BuildPlan) error {
	if len(cfg.Backend.TypeGenCommand) == 0 {
		return nil
	}
	if !planIncludes(plan, domain.KindBackend) {
		return nil
	}
	o.logger.Info("generating client types")
	if err := o.runner.Run(ctx, cfg.Backend.SourceDir, nil, cfg.Backend.TypeGenCommand); err != nil {
		return zerr.Wrap(err, "type generation failed")
	}
	return nil
}

func planIncludes(plan *domain.BuildPlan, kind domain.ExecutorKind) bool {
	for _, stage := range plan.Stages {
		for _, task := range stage.Tasks {
			if task.Kind == kind {
				return true
			}
		}
	}
	return false
}
