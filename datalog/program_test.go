package datalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pair struct{ from, to int }

func TestTransitiveClosure(t *testing.T) {
	edge := NewRelation[pair]("edge")
	for _, e := range []pair{{1, 2}, {2, 3}, {3, 4}, {4, 2}, {5, 6}} {
		edge.Insert(e)
	}
	bySource := Group(edge, func(e pair) int { return e.from })

	path := NewRelation[pair]("path")
	prog := NewProgram("closure", zaptest.NewLogger(t).Sugar())
	prog.Stratum("path", path).
		Base("path(x,y) <- edge(x,y)", func() {
			for _, e := range edge.All() {
				path.Insert(e)
			}
		}).
		Recursive("path(x,z) <- path(x,y), edge(y,z)", func() {
			for _, p := range path.Recent() {
				for _, e := range bySource[p.to] {
					path.Insert(pair{p.from, e.to})
				}
			}
		})

	stats, err := prog.Run(context.Background())
	require.NoError(t, err)

	for _, want := range []pair{{1, 2}, {1, 3}, {1, 4}, {2, 2}, {4, 4}, {5, 6}} {
		assert.True(t, path.Contains(want), "missing %v", want)
	}
	assert.False(t, path.Contains(pair{1, 5}))
	assert.False(t, path.Contains(pair{6, 5}))
	assert.Equal(t, 13, path.Len())
	assert.Greater(t, stats.Rounds["path"], 1)
	assert.Equal(t, 13, stats.Sizes["path"])
}

func TestStratifiedNegation(t *testing.T) {
	node := NewRelation[int]("node")
	child := NewRelation[pair]("child")
	for _, n := range []int{1, 2, 3, 4} {
		node.Insert(n)
	}
	child.Insert(pair{1, 2})
	child.Insert(pair{2, 3})

	hasParent := NewRelation[int]("has_parent")
	top := NewRelation[int]("top")

	prog := NewProgram("negation", nil)
	prog.Stratum("has_parent", hasParent).Base("has_parent", func() {
		for _, c := range child.All() {
			hasParent.Insert(c.to)
		}
	})
	prog.Stratum("top", top).Base("top(n) <- node(n), !has_parent(n)", func() {
		for _, n := range node.All() {
			if !hasParent.Contains(n) {
				top.Insert(n)
			}
		}
	})

	_, err := prog.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, top.All())
}

func TestKeyedIgnoresDuplicateKeys(t *testing.T) {
	k := NewKeyed[string, []int]("format")
	assert.True(t, k.Insert("a", []int{1}))
	assert.False(t, k.Insert("a", []int{2}))
	assert.True(t, k.Insert("b", nil))

	v, ok := k.Get("a")
	require.True(t, ok)
	assert.Equal(t, []int{1}, v)

	_, ok = k.Get("c")
	assert.False(t, ok)
	assert.Equal(t, 2, k.Len())

	var keys []string
	k.Each(func(key string, _ []int) { keys = append(keys, key) })
	assert.Equal(t, []string{"a", "b"}, keys)

	groups := GroupKeyed(k, func(key string) bool { return key == "a" })
	assert.Len(t, groups[true], 1)
	assert.Len(t, groups[false], 1)
}

func TestKeyedRecent(t *testing.T) {
	k := NewKeyed[int, string]("k")
	k.Insert(1, "one")
	require.True(t, k.advance())

	var seen []int
	k.EachRecent(func(key int, _ string) { seen = append(seen, key) })
	assert.Equal(t, []int{1}, seen)

	k.Insert(2, "two")
	require.True(t, k.advance())
	seen = nil
	k.EachRecent(func(key int, _ string) { seen = append(seen, key) })
	assert.Equal(t, []int{2}, seen)
	assert.False(t, k.advance())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	r := NewRelation[int]("r")
	prog := NewProgram("cancelled", nil)
	prog.Stratum("r", r).Base("seed", func() { r.Insert(1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prog.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.Len())
}

func TestRelationAny(t *testing.T) {
	r := NewRelation[int]("r")
	r.Insert(3)
	r.Insert(3)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Any(func(n int) bool { return n == 3 }))
	assert.False(t, r.Any(func(n int) bool { return n == 4 }))
}
