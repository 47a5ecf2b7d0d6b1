package graph

import (
	"errors"
	"fmt"
	"slices"
)

var ErrCycleDetected = errors.New("cycle detected in graph")

// TopologicalSort orders nodes so that every node follows its dependencies.
// Among nodes that are ready at the same time, insertion order wins. On a
// cycle the error wraps ErrCycleDetected and names the path.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	position := make(map[string]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}

	dependents := make(map[string][]string, len(g.order))
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; exists {
				dependents[dep] = append(dependents[dep], id)
				inDegree[id]++
			}
		}
	}

	var ready []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		sorted = append(sorted, node)

		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = insertByPosition(ready, dependent, position)
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, fmt.Errorf("%w: %v", ErrCycleDetected, g.findCyclePath(""))
	}
	return sorted, nil
}

func insertByPosition(queue []string, id string, position map[string]int) []string {
	i, _ := slices.BinarySearchFunc(
		queue, id, func(a, b string) int {
			return position[a] - position[b]
		},
	)
	return slices.Insert(queue, i, id)
}

// StartupOrder is the order eager singletons are built in.
func (g *Graph) StartupOrder() ([]string, error) {
	return g.TopologicalSort()
}
