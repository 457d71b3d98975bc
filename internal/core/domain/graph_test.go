package domain_test

import (
	"errors"
	"testing"

	"github.com/farm-framework/forge/internal/core/domain"
)

func TestGraph_AddTask(t *testing.T) {
	g := domain.NewGraph()
	task := domain.BuildTask{Name: "backend"}

	if err := g.AddTask(&task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.AddTask(&task); !errors.Is(err, domain.ErrTaskAlreadyExists) {
		t.Errorf("expected ErrTaskAlreadyExists for duplicate task, got %v", err)
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	taskA := domain.BuildTask{Name: "a", Dependencies: []string{"b"}}
	taskB := domain.BuildTask{Name: "b", Dependencies: []string{"a"}}

	if err := g.AddTask(&taskA); err != nil {
		t.Fatalf("failed to add task a: %v", err)
	}
	if err := g.AddTask(&taskB); err != nil {
		t.Fatalf("failed to add task b: %v", err)
	}

	if err := g.Validate(); !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestGraph_Validate_MissingDependency(t *testing.T) {
	g := domain.NewGraph()
	task := domain.BuildTask{Name: "frontend", Dependencies: []string{"backend"}}

	if err := g.AddTask(&task); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}

	if err := g.Validate(); !errors.Is(err, domain.ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency, got %v", err)
	}
}

func TestGraph_Levels(t *testing.T) {
	g := domain.NewGraph()
	tasks := []domain.BuildTask{
		{Name: "backend"},
		{Name: "ai-models"},
		{Name: "frontend", Dependencies: []string{"backend"}},
		{Name: "container", Dependencies: []string{"frontend", "backend", "ai-models"}},
	}
	for i := range tasks {
		if err := g.AddTask(&tasks[i]); err != nil {
			t.Fatalf("failed to add %s: %v", tasks[i].Name, err)
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	levels := g.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}

	// Level 0 holds the independent tasks, sorted by name.
	if len(levels[0]) != 2 || levels[0][0].Name != "ai-models" || levels[0][1].Name != "backend" {
		t.Errorf("unexpected level 0: %+v", levels[0])
	}
	if len(levels[1]) != 1 || levels[1][0].Name != "frontend" {
		t.Errorf("unexpected level 1: %+v", levels[1])
	}
	if len(levels[2]) != 1 || levels[2][0].Name != "container" {
		t.Errorf("unexpected level 2: %+v", levels[2])
	}
}
