package codegen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/cruxgen/format"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/rustdoc"
)

func TestGenerate(t *testing.T) {
	c := newCounterApp()
	result, err := Generate(context.Background(), c.index(), Options{
		PointerWidth: 64,
		Logger:       zaptest.NewLogger(t).Sugar(),
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Effect", "Event", "Item", "RenderOperation", "TimeResponse", "ViewModel"},
		result.Registry.Names(),
	)
	assert.Empty(t, result.Formats.Diagnostics)
	assert.NotZero(t, result.Parsed.Stats.Sizes["output"])
}

func TestGenerateIsByteIdentical(t *testing.T) {
	run := func() []byte {
		result, err := Generate(context.Background(), newCounterApp().index(), Options{PointerWidth: 64})
		require.NoError(t, err)
		data, err := registry.Marshal(result.Registry, registry.YAML)
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, string(run()), string(run()))
}

func TestDumpRelations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "relations")
	c := newCounterApp()

	_, err := Generate(context.Background(), c.index(), Options{PointerWidth: 64, DumpDir: dir})
	require.NoError(t, err)

	for _, name := range []string{"edge", "app", "effect", "is_effect_of_app", "parent", "root", "output", "diagnostics"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		require.NoError(t, err, name)
		var facts []json.RawMessage
		require.NoError(t, json.Unmarshal(data, &facts), name)
		if name != "parent" && name != "diagnostics" {
			assert.NotEmpty(t, facts, name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "edge.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"label": "TraitApp"`)
}

func TestGenerateFromRustdocJSON(t *testing.T) {
	doc, err := rustdoc.Load(context.Background(), filepath.Join("..", "rustdoc", "testdata", "counter.json"), rustdoc.LoadOptions{})
	require.NoError(t, err)

	result, err := Generate(context.Background(), rustdoc.NewIndex(doc.Crate), Options{
		PointerWidth: 64,
		Logger:       zaptest.NewLogger(t).Sugar(),
	})
	require.NoError(t, err)
	reg := result.Registry

	assert.Equal(t, []string{"Effect", "Event", "RenderOperation", "TimeResponse", "ViewModel"}, reg.Names())

	event, ok := reg.Get("Event")
	require.True(t, ok)
	require.Len(t, event.Variants, 2, "Tick is skipped")
	assert.Equal(t, "Increment", event.Variants[0].Name)
	assert.Equal(t, "Set", event.Variants[1].Name)
	assert.Equal(t, "I64", event.Variants[1].Value.NewType.String())

	vm, ok := reg.Get("ViewModel")
	require.True(t, ok)
	assert.Equal(t, []string{"itemCount", "lastUpdated"}, fieldNames(vm.Fields))
	assert.Equal(t, "OPTION(TYPENAME(TimeResponse))", vm.Fields[1].Value.String())

	tr, ok := reg.Get("TimeResponse")
	require.True(t, ok)
	assert.Equal(t, format.ContainerNewTypeStruct, tr.Kind)

	effect, ok := reg.Get("Effect")
	require.True(t, ok)
	assert.Equal(t, "TYPENAME(Request)", effect.Variants[0].Value.NewType.String())

	render, ok := reg.Get("RenderOperation")
	require.True(t, ok)
	assert.Equal(t, format.UnitStruct(), render)
}
