package graph

import (
	"slices"
	"sync"
)

// Graph records which registration key depends on which. Node order is the
// order in which nodes were first added, so every traversal is deterministic.
type Graph[K comparable] struct {
	mu         sync.RWMutex
	order      []K
	edges      map[K][]K
	cycleValid bool
	hasCycle   bool
}

func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		edges: make(map[K][]K),
	}
}

// AddNode inserts id or replaces its dependency list.
func (g *Graph[K]) AddNode(id K, dependencies []K) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[id]; !exists {
		g.order = append(g.order, id)
	}
	g.edges[id] = slices.Clone(dependencies)
	g.cycleValid = false
}

func (g *Graph[K]) RemoveNode(id K) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[id]; !exists {
		return
	}
	delete(g.edges, id)
	g.order = slices.DeleteFunc(g.order, func(k K) bool { return k == id })
	g.cycleValid = false
}

func (g *Graph[K]) HasNode(id K) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.edges[id]
	return exists
}

func (g *Graph[K]) GetDependencies(id K) []K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, exists := g.edges[id]
	if !exists {
		return nil
	}
	return slices.Clone(deps)
}

func (g *Graph[K]) GetDependents(id K) []K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []K
	for _, nodeID := range g.order {
		if slices.Contains(g.edges[nodeID], id) {
			dependents = append(dependents, nodeID)
		}
	}
	return dependents
}

func (g *Graph[K]) Nodes() []K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.order)
}

func (g *Graph[K]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.order)
}

func (g *Graph[K]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.order = nil
	g.edges = make(map[K][]K)
	g.cycleValid = false
}

func (g *Graph[K]) Clone() *Graph[K] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New[K]()
	clone.order = slices.Clone(g.order)
	for id, deps := range g.edges {
		clone.edges[id] = slices.Clone(deps)
	}
	return clone
}

// Validate returns dependencies that are referenced but have no node.
func (g *Graph[K]) Validate() []K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var missing []K
	seen := make(map[K]bool)

	for _, id := range g.order {
		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; !exists && !seen[dep] {
				missing = append(missing, dep)
				seen[dep] = true
			}
		}
	}

	return missing
}
