package graph

import (
	"slices"
	"sync"
)

// Graph holds constructor-time dependency edges between definition ids.
// Node order is the order of first insertion, which keeps every traversal
// deterministic.
type Graph struct {
	mu    sync.RWMutex
	edges map[string][]string
	order []string
}

func New() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// AddNode sets the dependencies of id, replacing any earlier set. A node
// keeps the position of its first insertion.
func (g *Graph) AddNode(id string, dependencies []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[id]; !exists {
		g.order = append(g.order, id)
	}
	g.edges[id] = slices.Clone(dependencies)
}

func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.edges[id]
	return exists
}

func (g *Graph) GetDependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.edges[id])
}

// GetDependents lists the nodes depending on id, in insertion order.
func (g *Graph) GetDependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for _, node := range g.order {
		if slices.Contains(g.edges[node], id) {
			dependents = append(dependents, node)
		}
	}
	return dependents
}

func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.order)
}

func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New()
	for _, id := range g.order {
		clone.edges[id] = slices.Clone(g.edges[id])
	}
	clone.order = slices.Clone(g.order)
	return clone
}
