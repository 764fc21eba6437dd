package graph

func (g *Graph[K]) HasCycle() bool {
	g.mu.RLock()
	if g.cycleValid {
		result := g.hasCycle
		g.mu.RUnlock()
		return result
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cycleValid {
		return g.hasCycle
	}

	g.hasCycle = false
	for _, id := range g.order {
		if g.findCyclePath(id) != nil {
			g.hasCycle = true
			break
		}
	}
	g.cycleValid = true
	return g.hasCycle
}

// FindCyclePath returns the first cycle reachable from start, beginning and
// ending with the same node, or nil.
func (g *Graph[K]) FindCyclePath(start K) []K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.findCyclePath(start)
}

func (g *Graph[K]) findCyclePath(start K) []K {
	visited := make(map[K]bool)
	inPath := make(map[K]bool)
	var path []K

	var dfs func(id K) []K
	dfs = func(id K) []K {
		if inPath[id] {
			var cycle []K
			found := false
			for _, p := range path {
				if p == id {
					found = true
				}
				if found {
					cycle = append(cycle, p)
				}
			}
			return append(cycle, id)
		}

		if visited[id] {
			return nil
		}

		visited[id] = true
		path = append(path, id)
		inPath[id] = true

		for _, dep := range g.edges[id] {
			if _, exists := g.edges[dep]; !exists {
				continue
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		inPath[id] = false
		return nil
	}

	return dfs(start)
}

// CyclePaths returns one path per distinct cycle, identified by node set.
func (g *Graph[K]) CyclePaths() [][]K {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var paths [][]K
	covered := make(map[K]bool)

	for _, id := range g.order {
		if covered[id] {
			continue
		}
		path := g.findCyclePath(id)
		if path == nil {
			continue
		}
		for _, node := range path {
			covered[node] = true
		}
		paths = append(paths, path)
	}

	return paths
}
