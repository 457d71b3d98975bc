// Package orchestrator implements build planning and staged execution.
package orchestrator

import (
	"fmt"

	"github.com/farm-framework/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// Planner turns a set of requested targets into a validated execution plan.
//
// The dependency shape is fixed by the framework: backend and ai-models are
// independent and may share a stage; frontend depends on backend only when
// backend is also requested (the generated interface schema must exist before
// bundling); container depends on every other requested target because it
// packages their outputs.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan expands the requested targets into a staged plan. The dependency graph
// is defensively checked for cycles even though the fixed shape cannot produce
// one today; future target additions must not be able to sneak one in.
func (p *Planner) Plan(cfg *domain.ProjectConfig, targets []domain.BuildTarget, opts domain.BuildOptions) (*domain.BuildPlan, error) {
	expanded := domain.ExpandTargets(targets)
	if len(expanded) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	graph := domain.NewGraph()
	for _, target := range expanded {
		task := p.taskFor(cfg, target, expanded, opts)
		if err := graph.AddTask(&task); err != nil {
			return nil, zerr.Wrap(err, "plan construction failed")
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, zerr.Wrap(err, "plan validation failed")
	}

	plan := &domain.BuildPlan{BuildID: domain.NewBuildID()}
	for i, tasks := range graph.Levels() {
		parallel := true
		for _, task := range tasks {
			parallel = parallel && task.Parallel
		}
		plan.Stages = append(plan.Stages, domain.BuildStage{
			Name:     fmt.Sprintf("stage-%d", i+1),
			Parallel: parallel,
			Tasks:    tasks,
		})
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Planner) taskFor(cfg *domain.ProjectConfig, target domain.BuildTarget, requested []domain.BuildTarget, opts domain.BuildOptions) domain.BuildTask {
	base := domain.TaskConfig{
		Environment: string(opts.Environment),
		OutputDir:   opts.OutputDir,
		Settings: map[string]string{
			"FORGE_PROJECT_NAME":    cfg.Name,
			"FORGE_PROJECT_VERSION": cfg.Version,
		},
	}

	switch target {
	case domain.TargetBackend:
		base.SourceDir = cfg.Backend.SourceDir
		base.Manifest = cfg.Backend.Manifest
		base.Command = cfg.Backend.SchemaCommand
		return domain.BuildTask{
			Name:     string(target),
			Kind:     domain.KindBackend,
			Parallel: true,
			Inputs:   nonEmpty(cfg.Backend.SourceDir, cfg.Backend.Manifest),
			Config:   base,
		}

	case domain.TargetFrontend:
		base.SourceDir = cfg.Frontend.SourceDir
		base.Manifest = cfg.Frontend.Manifest
		base.Command = cfg.Frontend.Command

		task := domain.BuildTask{
			Name:     string(target),
			Kind:     domain.KindFrontend,
			Parallel: true,
			Inputs:   nonEmpty(cfg.Frontend.SourceDir, cfg.Frontend.Manifest),
			Config:   base,
		}
		if domain.ContainsTarget(requested, domain.TargetBackend) {
			task.Dependencies = []string{string(domain.TargetBackend)}
			// The generated interface schema is a declared input: a backend
			// rebuild that changes it misses the frontend cache too.
			task.Inputs = append(task.Inputs, domain.SchemaPath(opts.OutputDir))
		}
		return task

	case domain.TargetAIModels:
		base.Models = cfg.AIModels.Models
		base.Command = cfg.AIModels.ExportCommand
		return domain.BuildTask{
			Name:     string(target),
			Kind:     domain.KindAIModels,
			Parallel: true,
			Config:   base,
		}

	case domain.TargetContainer:
		base.Images = cfg.Container.Images
		base.Command = cfg.Container.BuildCommand

		task := domain.BuildTask{
			Name:     string(target),
			Kind:     domain.KindContainer,
			Parallel: true,
			Config:   base,
		}
		for _, tmpl := range cfg.Container.Images {
			if tmpl.Dockerfile != "" {
				task.Inputs = append(task.Inputs, tmpl.Dockerfile)
			}
		}
		for _, other := range requested {
			if other == domain.TargetContainer {
				continue
			}
			task.Dependencies = append(task.Dependencies, string(other))
			task.Inputs = append(task.Inputs, upstreamOutput(other, opts.OutputDir))
		}
		return task
	}

	// Unreachable for the closed target set; an unknown target would have
	// been rejected by ParseTargets.
	return domain.BuildTask{Name: string(target)}
}

// upstreamOutput maps a target to the output directory the container stage
// consumes from it.
func upstreamOutput(target domain.BuildTarget, outputDir string) string {
	switch target {
	case domain.TargetFrontend:
		return domain.BundleDir(outputDir)
	case domain.TargetBackend:
		return domain.PackageDir(outputDir)
	case domain.TargetAIModels:
		return domain.ModelsDir(outputDir)
	default:
		return outputDir
	}
}

func nonEmpty(paths ...string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
