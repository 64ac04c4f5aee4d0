package commands

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/cruxgen/codegen"
	"github.com/teranos/cruxgen/config"
	"github.com/teranos/cruxgen/display"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/snapshot"
)

func newCodegenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codegen",
		Short: "Generate the type registry",
		Long: `Build rustdoc JSON for the library (or read --doc), find its App and
Effect implementations and write every reachable type to the registry.

Members that cannot cross the wire (references, trait objects, generics)
are left out and reported. The run is recorded in the snapshot store so
the next run can show what changed.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error { return bindInputFlags(cmd) },
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			noStore, _ := cmd.Flags().GetBool("no-store")
			dumpDir, _ := cmd.Flags().GetString("dump-relations")
			_, err = codegenOnce(cmd.Context(), cmd, cfg, codegenOptions{
				store:   cfg.Store.Enabled && !noStore,
				dumpDir: dumpDir,
			})
			return err
		},
	}
	inputFlags(cmd)
	cmd.Flags().Bool("no-store", false, "Do not record a snapshot of this run")
	cmd.Flags().String("dump-relations", "", "Write every fixpoint relation as JSON into this directory")
	return cmd
}

type codegenOptions struct {
	store   bool
	dumpDir string
}

// codegenOnce runs the pipeline, writes the registry and prints a summary.
// The summary goes to stderr when the registry goes to stdout.
func codegenOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts codegenOptions) (*run, error) {
	start := time.Now()
	enc, err := outputEncoding(cmd, cfg)
	if err != nil {
		return nil, err
	}

	path, crateVersion, err := locateDocs(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r, err := generate(ctx, cfg, path, crateVersion, opts.dumpDir)
	if err != nil {
		return nil, err
	}
	if err := writeRegistry(cmd, r.Result.Registry, cfg.Codegen.Output, enc); err != nil {
		return nil, err
	}

	summary := display.Summary{
		Crate:       r.Doc.Crate.Name(),
		Output:      cfg.Codegen.Output,
		Registry:    r.Result.Registry,
		Diagnostics: r.Result.Formats.Diagnostics,
		Duration:    time.Since(start),
	}
	if opts.store {
		drift, err := record(ctx, cfg, r)
		if err != nil {
			// history is best effort; the registry is already written
			logger.ComponentLogger("snapshot").Warnw("Failed to record snapshot",
				logger.FieldCrate, summary.Crate,
				logger.FieldError, err.Error(),
			)
		}
		summary.Drift = drift
	}

	var out io.Writer = cmd.OutOrStdout()
	if cfg.Codegen.Output == "" {
		out = cmd.ErrOrStderr()
	}
	if display.ShouldOutputJSON(cmd) {
		return r, display.WriteJSON(out, summaryJSON(summary), false)
	}
	return r, display.PrintSummary(out, summary)
}

// record saves a snapshot of r and returns the drift against the previous
// one for the same crate, or nil when this is the first.
func record(ctx context.Context, cfg *config.Config, r *run) (*registry.Changes, error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	name := r.Doc.Crate.Name()
	changes, ok, err := store.Drift(ctx, name, r.Result.Registry)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.New(name, r.CrateVersion, r.Doc.Crate.FormatVersion, r.Doc.Digest, r.Result.Registry)
	if err != nil {
		return nil, err
	}
	if _, err := store.Save(ctx, snap); err != nil {
		return nil, errors.Wrapf(err, "failed to record snapshot of %s", name)
	}
	if !ok {
		return nil, nil
	}
	return &changes, nil
}

type codegenJSON struct {
	Crate       string               `json:"crate"`
	Output      string               `json:"output,omitempty"`
	Types       []string             `json:"types"`
	Diagnostics []codegen.Diagnostic `json:"diagnostics"`
	Drift       *registry.Changes    `json:"drift,omitempty"`
	DurationMS  int64                `json:"duration_ms"`
}

func summaryJSON(s display.Summary) codegenJSON {
	diagnostics := s.Diagnostics
	if diagnostics == nil {
		diagnostics = []codegen.Diagnostic{}
	}
	return codegenJSON{
		Crate:       s.Crate,
		Output:      s.Output,
		Types:       s.Registry.Names(),
		Diagnostics: diagnostics,
		Drift:       s.Drift,
		DurationMS:  s.Duration.Milliseconds(),
	}
}
