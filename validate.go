package anvil

import (
	"github.com/danpasecinic/anvil/internal/graph"
)

// Validate reports constructor cycles that a later construction would run
// into. It walks the declared classes reachable from the registered keys,
// the pending bootstrap classes and the pending providers, without building
// anything.
func (c *Container) Validate() error {
	if err := c.internal.Validate(); err != nil {
		return errValidationFailed(err)
	}

	pending, classes := c.comp.snapshot()

	roots := c.internal.Keys()
	for _, cls := range classes {
		roots = append(roots, cls.key)
	}
	for _, p := range pending {
		roots = append(roots, p.key)
		for _, dep := range p.provider.Deps {
			if key, err := normalizeKey(dep); err == nil {
				roots = append(roots, key)
			}
		}
	}

	g := classGraph(roots)
	if !g.HasCycle() {
		return nil
	}

	path := g.CyclePaths()[0]
	names := make([]string, len(path))
	for i, key := range path {
		names[i] = KeyName(key)
	}
	return errValidationFailed(errCircularDependency(names))
}

// classGraph builds the constructor dependency graph of every declared class
// reachable from roots.
func classGraph(roots []any) *graph.Graph[any] {
	g := graph.New[any]()
	queue := roots

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if g.HasNode(key) {
			continue
		}

		cls := classFor(key)
		if cls == nil || cls.ctor == nil {
			continue
		}

		deps := make([]any, len(cls.ctor.Params))
		for i, param := range cls.ctor.Params {
			deps[i] = any(param)
			if point, ok := declarations.Param(cls.key, i); ok {
				deps[i] = point.Key
			}
		}
		g.AddNode(key, deps)
		queue = append(queue, deps...)
	}

	return g
}
