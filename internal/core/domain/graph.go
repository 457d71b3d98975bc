package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph induced by a set of build tasks. It exists to
// defensively validate plans: the fixed target shape should never produce a
// cycle, but future target additions must not be able to sneak one in.
type Graph struct {
	tasks          map[string]BuildTask
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[string]BuildTask),
	}
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *BuildTask) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name)
	}
	g.tasks[t.Name] = *t
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Validate checks for cycles and missing dependencies using a depth-first
// topological sort. It populates the execution order on success.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.tasks))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		task, exists := g.tasks[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u)
		}

		for _, dep := range task.Dependencies {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Iterate names in sorted order so disconnected components validate in a
	// deterministic order and error messages are stable.
	names := make([]string, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []string, dep string) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i] + " -> "
	}
	cyclePath += dep
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Levels groups tasks into dependency levels: a task's level is one greater
// than the maximum level of its dependencies, so every dependency of a task
// sits in a strictly earlier level. Tasks within a level are sorted by name.
// Validate must have been called successfully first.
func (g *Graph) Levels() [][]BuildTask {
	level := make(map[string]int, len(g.tasks))
	maxLevel := 0

	// executionOrder is topological, so dependency levels are already known
	// by the time each task is visited.
	for _, name := range g.executionOrder {
		l := 0
		for _, dep := range g.tasks[name].Dependencies {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[name] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]BuildTask, maxLevel+1)
	for _, name := range g.executionOrder {
		l := level[name]
		levels[l] = append(levels[l], g.tasks[name])
	}
	for _, tasks := range levels {
		slices.SortFunc(tasks, func(a, b BuildTask) int {
			if a.Name < b.Name {
				return -1
			}
			if a.Name > b.Name {
				return 1
			}
			return 0
		})
	}
	return levels
}
