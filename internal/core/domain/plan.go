package domain

import "go.trai.ch/zerr"

// BuildStage is an ordered grouping of tasks that may run concurrently.
// Stages themselves execute strictly in sequence.
type BuildStage struct {
	Name     string
	Parallel bool
	Tasks    []BuildTask
}

// BuildPlan is the ordered sequence of stages covering exactly the tasks
// implied by the requested targets. Immutable once built.
type BuildPlan struct {
	BuildID string
	Stages  []BuildStage
}

// TaskCount returns the total number of tasks across all stages.
func (p *BuildPlan) TaskCount() int {
	n := 0
	for _, stage := range p.Stages {
		n += len(stage.Tasks)
	}
	return n
}

// TaskNames returns the names of all tasks in stage order.
func (p *BuildPlan) TaskNames() []string {
	names := make([]string, 0, p.TaskCount())
	for _, stage := range p.Stages {
		for _, task := range stage.Tasks {
			names = append(names, task.Name)
		}
	}
	return names
}

// Validate checks topological validity: every dependency of every task must
// belong to a strictly earlier stage.
func (p *BuildPlan) Validate() error {
	stageOf := make(map[string]int, p.TaskCount())
	for i, stage := range p.Stages {
		for _, task := range stage.Tasks {
			stageOf[task.Name] = i
		}
	}

	for i, stage := range p.Stages {
		for _, task := range stage.Tasks {
			for _, dep := range task.Dependencies {
				depStage, ok := stageOf[dep]
				if !ok {
					return zerr.With(zerr.With(ErrMissingDependency, "task", task.Name), "dependency", dep)
				}
				if depStage >= i {
					err := zerr.With(ErrPlanValidation, "task", task.Name)
					err = zerr.With(err, "dependency", dep)
					return zerr.With(err, "dependency_stage", depStage)
				}
			}
		}
	}
	return nil
}
