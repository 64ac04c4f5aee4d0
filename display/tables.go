// Package display renders cruxgen results for the terminal.
package display

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/cruxgen/codegen"
	"github.com/teranos/cruxgen/format"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/snapshot"
)

// Summary describes one codegen run.
type Summary struct {
	Crate       string
	Output      string
	Registry    *registry.Registry
	Diagnostics []codegen.Diagnostic
	// Drift against the previous snapshot; nil when there was none
	Drift    *registry.Changes
	Duration time.Duration
}

// RegistryTable lists every container with its kind and member count.
func RegistryTable(reg *registry.Registry) pterm.TableData {
	data := pterm.TableData{{"Container", "Kind", "Members"}}
	reg.Each(func(name string, c format.ContainerFormat) {
		data = append(data, []string{name, c.Kind.String(), strconv.Itoa(c.Children())})
	})
	return data
}

// PrintSummary writes the container table, dropped members and drift.
func PrintSummary(w io.Writer, s Summary) error {
	fmt.Fprintln(w, pterm.Success.Sprintf("Generated %d types for %s in %s",
		s.Registry.Len(), s.Crate, s.Duration.Round(time.Millisecond)))
	if s.Output != "" {
		fmt.Fprintln(w, pterm.Info.Sprintf("Wrote %s", s.Output))
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(RegistryTable(s.Registry)).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)

	if len(s.Diagnostics) > 0 {
		fmt.Fprintln(w, pterm.Warning.Sprintf("%d members were left out of the registry:", len(s.Diagnostics)))
		for _, d := range s.Diagnostics {
			fmt.Fprintf(w, "  %s %s: %s\n", pterm.Gray("→"), pterm.Yellow(d.Name), d.Reason)
		}
	}

	if s.Drift != nil {
		PrintChanges(w, *s.Drift)
	}
	return nil
}

// PrintChanges writes a one-line-per-kind drift report.
func PrintChanges(w io.Writer, c registry.Changes) {
	if c.Empty() {
		fmt.Fprintln(w, pterm.Info.Sprint("No changes since the last run"))
		return
	}
	for _, name := range c.Added {
		fmt.Fprintf(w, "  %s %s\n", pterm.LightGreen("+"), name)
	}
	for _, name := range c.Removed {
		fmt.Fprintf(w, "  %s %s\n", pterm.LightRed("-"), name)
	}
	for _, name := range c.Changed {
		fmt.Fprintf(w, "  %s %s\n", pterm.Yellow("~"), name)
	}
}

// HistoryTable lists snapshots, newest first as given.
func HistoryTable(snaps []snapshot.Snapshot) pterm.TableData {
	data := pterm.TableData{{"ID", "Crate", "Version", "Format", "Types", "Source", "Created"}}
	for _, s := range snaps {
		digest := s.SourceDigest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		data = append(data, []string{
			s.ID[:min(8, len(s.ID))],
			s.Crate,
			s.CrateVersion,
			strconv.FormatUint(uint64(s.FormatVersion), 10),
			strconv.Itoa(s.Containers),
			digest,
			s.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return data
}

// PrintHistory writes the snapshot table.
func PrintHistory(w io.Writer, snaps []snapshot.Snapshot) error {
	if len(snaps) == 0 {
		fmt.Fprintln(w, pterm.Info.Sprint("No snapshots yet. Run 'cruxgen codegen' to record one."))
		return nil
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(HistoryTable(snaps)).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	return nil
}
