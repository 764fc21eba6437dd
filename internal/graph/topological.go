package graph

import "errors"

var ErrCycleDetected = errors.New("cycle detected in graph")

// TopologicalSort orders nodes so that every dependency precedes its
// dependents. Ties keep insertion order.
func (g *Graph[K]) TopologicalSort() ([]K, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dependents := make(map[K][]K, len(g.order))
	inDegree := make(map[K]int, len(g.order))

	for _, id := range g.order {
		inDegree[id] = 0
	}

	for _, id := range g.order {
		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; exists {
				dependents[dep] = append(dependents[dep], id)
				inDegree[id]++
			}
		}
	}

	var queue []K
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]K, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, ErrCycleDetected
	}

	return sorted, nil
}

// ShutdownOrder is the reverse of TopologicalSort: dependents first.
func (g *Graph[K]) ShutdownOrder() ([]K, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	n := len(sorted)
	reversed := make([]K, n)
	for i, v := range sorted {
		reversed[n-1-i] = v
	}

	return reversed, nil
}
