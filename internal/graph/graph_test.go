package graph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B", "C"})

	assert.True(t, g.HasNode("A"))
	assert.Equal(t, []string{"B", "C"}, g.GetDependencies("A"))
}

func TestGraph_AddNodeReplacesDependencies(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", nil)
	g.AddNode("A", []string{"C"})

	assert.Equal(t, []string{"C"}, g.GetDependencies("A"))
	assert.Equal(t, []string{"A", "B"}, g.Nodes())
}

func TestGraph_RemoveNode(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", nil)
	g.AddNode("B", nil)

	g.RemoveNode("A")
	g.RemoveNode("missing")

	assert.False(t, g.HasNode("A"))
	assert.True(t, g.HasNode("B"))
	assert.Equal(t, []string{"B"}, g.Nodes())
}

func TestGraph_NonStringKeys(t *testing.T) {
	t.Parallel()

	type key struct{ name string }
	a, b := &key{"a"}, &key{"a"}

	g := New[any]()
	g.AddNode(a, []any{b})
	g.AddNode(b, nil)

	assert.Equal(t, 2, g.Size())
	assert.Equal(t, []any{a}, g.GetDependents(b))
}

func TestGraph_GetDependents(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"C"})
	g.AddNode("B", []string{"C"})
	g.AddNode("C", nil)

	assert.Equal(t, []string{"A", "B"}, g.GetDependents("C"))
}

func TestGraph_Validate(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B", "C"})
	g.AddNode("B", nil)

	assert.Equal(t, []string{"C"}, g.Validate())
}

func TestGraph_Clone(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", nil)

	clone := g.Clone()
	require.Equal(t, g.Size(), clone.Size())

	g.AddNode("C", nil)
	assert.NotEqual(t, g.Size(), clone.Size())
}

func TestGraph_Clear(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"A"})
	require.True(t, g.HasCycle())

	g.Clear()
	assert.Zero(t, g.Size())
	assert.False(t, g.HasCycle())
}

func TestGraph_HasCycle(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", nil)
	assert.False(t, g.HasCycle())

	g.AddNode("B", []string{"A"})
	assert.True(t, g.HasCycle())
}

func TestGraph_SelfCycle(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"A"})

	assert.Equal(t, []string{"A", "A"}, g.FindCyclePath("A"))
}

func TestGraph_FindCyclePath(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", []string{"C"})
	g.AddNode("C", []string{"A"})

	path := g.FindCyclePath("A")
	require.NotEmpty(t, path)
	assert.Equal(t, []string{"A", "B", "C", "A"}, path)
}

func TestGraph_FindCyclePathNone(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", []string{"missing"})

	assert.Nil(t, g.FindCyclePath("A"))
}

func TestGraph_CyclePaths(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", []string{"A"})
	g.AddNode("C", []string{"D"})
	g.AddNode("D", []string{"C"})
	g.AddNode("E", nil)

	paths := g.CyclePaths()
	assert.Len(t, paths, 2)
}

func TestGraph_TopologicalSort(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B", "C"})
	g.AddNode("B", []string{"D"})
	g.AddNode("C", []string{"D"})
	g.AddNode("D", nil)

	sorted, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, sorted, 4)

	indexOf := func(v string) int { return slices.Index(sorted, v) }

	assert.Less(t, indexOf("D"), indexOf("B"))
	assert.Less(t, indexOf("D"), indexOf("C"))
	assert.Less(t, indexOf("B"), indexOf("A"))
}

func TestGraph_TopologicalSortKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("first", nil)
	g.AddNode("second", nil)
	g.AddNode("third", nil)

	sorted, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, sorted)
}

func TestGraph_TopologicalSort_WithCycle(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("A", []string{"B"})
	g.AddNode("B", []string{"A"})

	_, err := g.TopologicalSort()
	assert.ErrorIs(t, err, ErrCycleDetected)

	_, err = g.ShutdownOrder()
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestGraph_ShutdownOrder(t *testing.T) {
	t.Parallel()

	g := New[string]()
	g.AddNode("App", []string{"Server"})
	g.AddNode("Server", []string{"Database"})
	g.AddNode("Database", nil)

	order, err := g.ShutdownOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "Server", "Database"}, order)
}

func BenchmarkGraph_HasCycle(b *testing.B) {
	g := New[string]()
	for i := range 100 {
		var deps []string
		if i > 0 {
			deps = []string{fmt.Sprint(i - 1)}
		}
		g.AddNode(fmt.Sprint(i), deps)
	}

	b.ReportAllocs()
	for b.Loop() {
		g.AddNode("0", nil)
		g.HasCycle()
	}
}

func BenchmarkGraph_TopologicalSort(b *testing.B) {
	g := New[string]()
	for i := range 100 {
		var deps []string
		if i > 0 {
			deps = []string{fmt.Sprint(i - 1)}
		}
		g.AddNode(fmt.Sprint(i), deps)
	}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = g.TopologicalSort()
	}
}
