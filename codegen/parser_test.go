package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/cruxgen/rustdoc"
)

func parse(t *testing.T, f *fixture) *ParseResult {
	t.Helper()
	parsed, err := Parse(context.Background(), f.index(), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return parsed
}

func hasEdge(edges []Edge, from, to rustdoc.Key, label Label) bool {
	for _, e := range edges {
		if e.From == from && e.To == to && e.Label == label {
			return true
		}
	}
	return false
}

func TestExtractEdges(t *testing.T) {
	c := newCounterApp()
	edges := ExtractEdges(c.index())

	vmFields := c.crate.Index[c.viewModel].Inner.Struct.Kind.Fields
	items := vmFields[1]

	assert.True(t, hasEdge(edges, c.key(c.viewModel), c.key(items), LabelField))
	assert.True(t, hasEdge(edges, c.key(items), c.key(c.item), LabelType), "generic argument of Vec")
	assert.True(t, hasEdge(edges, c.key(c.event), c.key(c.internal), LabelVariant))

	for _, e := range edges {
		assert.NotEqual(t, c.key(c.internal), e.From, "skipped items emit nothing")
		assert.NotEqual(t, c.key(c.cache), e.From, "skipped items emit nothing")
	}

	var traits int
	for _, e := range edges {
		if e.Label == LabelTraitApp || e.Label == LabelTraitEffect {
			traits++
		}
	}
	assert.Equal(t, 2, traits)
}

func TestExtractEdgesIsDeterministic(t *testing.T) {
	c := newCounterApp()
	first := ExtractEdges(c.index())
	for range 5 {
		assert.Equal(t, first, ExtractEdges(c.index()))
	}
}

func TestExtractEdgesDropsUnresolved(t *testing.T) {
	f := newFixture()
	field := f.field("ghost", resolved("Ghost", "999"))
	f.plainStruct([]string{"counter", "Haunted"}, nil, field)

	for _, e := range ExtractEdges(f.index()) {
		assert.NotEqual(t, rustdoc.ID("999"), e.To.ID)
	}
}

func TestArgumentsOfUnresolvedPathAreNotFollowed(t *testing.T) {
	f := newFixture()
	inner := f.unitStruct([]string{"counter", "Inner"})
	nested := f.unitStruct([]string{"counter", "Nested"})
	vec := f.external("struct", "alloc", "vec", "Vec")

	ghost := f.field("ghost", resolved("Ghost", "999", resolved("Inner", inner)))
	deep := f.field("deep", resolved("Vec", vec, resolved("Ghost", "998", resolved("Nested", nested))))
	f.plainStruct([]string{"counter", "Haunted"}, nil, ghost, deep)

	edges := ExtractEdges(f.index())
	assert.False(t, hasEdge(edges, f.key(ghost), f.key(inner), LabelType))
	assert.False(t, hasEdge(edges, f.key(deep), f.key(nested), LabelType))
	assert.True(t, hasEdge(edges, f.key(deep), f.key(vec), LabelType))
}

func TestAssociatedTypeFilter(t *testing.T) {
	c := newCounterApp()
	edges := ExtractEdges(c.index())

	var assoc int
	for _, e := range edges {
		if e.Label == LabelAssociatedType {
			assoc++
		}
	}
	// Event and ViewModel; Capabilities is an associated item without a type edge
	assert.Equal(t, 2, assoc)
}

func TestParseCounterApp(t *testing.T) {
	c := newCounterApp()
	parsed := parse(t, c.fixture)

	assert.Equal(t, []rustdoc.Key{c.key(c.app)}, parsed.Apps)
	assert.Equal(t, []rustdoc.Key{c.key(c.effect)}, parsed.Effects)
	assert.Equal(t, []Pair{{Parent: c.key(c.app), Child: c.key(c.effect)}}, parsed.EffectsOfApps)
	assert.Empty(t, parsed.Parents)
	assert.ElementsMatch(t, []rustdoc.Key{c.key(c.event), c.key(c.viewModel), c.key(c.effect)}, parsed.Roots)

	reachable := parsed.Reachable()
	for _, id := range []rustdoc.ID{c.event, c.viewModel, c.item, c.timeResponse, c.effect, c.renderOp, c.internal} {
		assert.Contains(t, reachable, c.key(id))
	}
	assert.NotContains(t, reachable, c.key(c.model))
	assert.NotContains(t, reachable, c.key(c.app))
}

func TestOutputIsClosedUnderEdges(t *testing.T) {
	c := newCounterApp()
	parsed := parse(t, c.fixture)

	inOutput := map[rustdoc.Key]bool{}
	for _, r := range parsed.Roots {
		inOutput[r] = true
	}
	for _, p := range parsed.Output {
		inOutput[p.Child] = true
	}
	for _, e := range parsed.Edges {
		if !inOutput[e.From] {
			continue
		}
		switch e.Label {
		case LabelField, LabelVariant, LabelType:
			assert.True(t, inOutput[e.To], "edge %s -> %s (%s) leaves the output", e.From, e.To, e.Label)
		}
	}
}

func TestParentSuppressesNestedApps(t *testing.T) {
	f := newFixture()
	appTrait := f.external("trait", "crux_core", "App")

	childEvent := f.enum([]string{"counter", "child", "Event"}, nil, f.unitVariant("Ping"))
	child := f.unitStruct([]string{"counter", "child", "Child"})
	f.impl(appTrait, "App", child, f.assocType("Event", resolved("Event", childEvent)))

	parentEvent := f.enum([]string{"counter", "Event"}, nil, f.unitVariant("Go"))
	parent := f.plainStruct([]string{"counter", "Parent"}, nil, f.field("child", resolved("Child", child)))
	f.impl(appTrait, "App", parent, f.assocType("Event", resolved("Event", parentEvent)))

	parsed := parse(t, f)
	assert.Equal(t, []Pair{{Parent: f.key(parent), Child: f.key(child)}}, parsed.Parents)
	assert.Equal(t, []rustdoc.Key{f.key(parentEvent)}, parsed.Roots)
}

func TestSelfReferentialTypesTerminate(t *testing.T) {
	f := newFixture()
	appTrait := f.external("trait", "crux_core", "App")
	vec := f.external("struct", "alloc", "vec", "Vec")

	// struct Tree { children: Vec<Tree> }
	tree := f.plainStruct([]string{"counter", "Tree"}, nil)
	children := f.field("children", resolved("Vec", vec, resolved("Tree", tree)))
	f.crate.Index[tree].Inner.Struct.Kind.Fields = []rustdoc.ID{children}

	app := f.unitStruct([]string{"counter", "App"})
	f.impl(appTrait, "App", app, f.assocType("ViewModel", resolved("Tree", tree)))

	parsed := parse(t, f)
	assert.Contains(t, parsed.Reachable(), f.key(tree))
	assert.Contains(t, parsed.Output, Pair{Parent: f.key(children), Child: f.key(tree)})
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, newCounterApp().index(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
