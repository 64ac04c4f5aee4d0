package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cruxgen/codegen"
	"github.com/teranos/cruxgen/format"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/snapshot"
)

func init() {
	pterm.DisableStyling()
}

func counter() *registry.Registry {
	return registry.New(map[string]format.ContainerFormat{
		"Event": format.Enum(map[uint32]format.Named[format.VariantFormat]{
			0: {Name: "Increment", Value: format.UnitVariant()},
			1: {Name: "Decrement", Value: format.UnitVariant()},
		}),
		"ViewModel": format.PlainStruct([]format.Named[format.Format]{{Name: "count", Value: format.Primitive(format.KindStr)}}),
	})
}

func TestRegistryTable(t *testing.T) {
	assert.Equal(t, pterm.TableData{
		{"Container", "Kind", "Members"},
		{"Event", "ENUM", "2"},
		{"ViewModel", "STRUCT", "1"},
	}, RegistryTable(counter()))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	err := PrintSummary(&buf, Summary{
		Crate:    "shared",
		Output:   "generated/shared.yaml",
		Registry: counter(),
		Diagnostics: []codegen.Diagnostic{
			{Name: "label", Relation: "format", Reason: "borrowed_ref is not supported"},
		},
		Drift:    &registry.Changes{Added: []string{"ViewModel"}, Changed: []string{"Event"}},
		Duration: 42 * time.Millisecond,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Generated 2 types for shared")
	assert.Contains(t, out, "generated/shared.yaml")
	assert.Contains(t, out, "ViewModel")
	assert.Contains(t, out, "label: borrowed_ref is not supported")
	assert.Contains(t, out, "+ ViewModel")
	assert.Contains(t, out, "~ Event")
}

func TestPrintChangesEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintChanges(&buf, registry.Changes{})
	assert.Contains(t, buf.String(), "No changes")
}

func TestHistory(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snaps := []snapshot.Snapshot{{
		ID:            "0b8f3c2e-6d3a-4f61-9a55-0d8c1e2f3a4b",
		Crate:         "shared",
		CrateVersion:  "0.1.0",
		FormatVersion: 39,
		SourceDigest:  "e3b0c44298fc1c149afbf4c8996fb924",
		Containers:    6,
		CreatedAt:     created,
	}}

	data := HistoryTable(snaps)
	require.Len(t, data, 2)
	assert.Equal(t, []string{"0b8f3c2e", "shared", "0.1.0", "39", "6", "e3b0c44298fc", created.Local().Format(time.DateTime)}, data[1])

	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, snaps))
	assert.Contains(t, buf.String(), "0b8f3c2e")

	buf.Reset()
	require.NoError(t, PrintHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No snapshots yet")
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "cruxgen"}
	root.PersistentFlags().Bool("json", false, "")
	version := &cobra.Command{Use: "version", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(version)

	assert.False(t, ShouldOutputJSON(nil))
	assert.False(t, ShouldOutputJSON(version))

	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(version))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"types": 2}, false))
	assert.Equal(t, "{\n  \"types\": 2\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, map[string]int{"types": 2}, true))
	assert.Equal(t, "{\"types\":2}\n", buf.String())
}
