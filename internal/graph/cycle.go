package graph

import "slices"

// FindCyclePath walks depth-first from start and returns the first cycle it
// meets as a closed path, e.g. [A B A]. An empty start walks every node.
// Edges to unknown nodes are ignored.
func (g *Graph) FindCyclePath(start string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.findCyclePath(start)
}

func (g *Graph) findCyclePath(start string) []string {
	done := make(map[string]bool)
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		if i := slices.Index(path, id); i >= 0 {
			return append(slices.Clone(path[i:]), id)
		}
		if done[id] {
			return nil
		}

		path = append(path, id)
		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; !exists {
				continue
			}
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		done[id] = true
		return nil
	}

	if start != "" {
		return visit(start)
	}
	for _, id := range g.order {
		if cycle := visit(id); cycle != nil {
			return cycle
		}
	}
	return nil
}
