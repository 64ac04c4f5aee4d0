// Package codegen finds the types that cross a Crux app's FFI boundary and
// describes them as a registry of container formats.
//
// Generation runs two rule programs over a rustdoc index. Parse derives the
// reachable types from the App and Effect impls; Format turns each reachable
// struct and enum into a container format.
package codegen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/rustdoc"
)

// Options configures Generate.
type Options struct {
	// PointerWidth decides isize and usize; zero means the host width.
	PointerWidth int
	// DumpDir, when set, receives the derived relations as JSON files.
	DumpDir string
	Logger  *zap.SugaredLogger
}

// Result is everything a generation run derived.
type Result struct {
	Registry *registry.Registry
	Parsed   *ParseResult
	Formats  *Formats
	Duration time.Duration
}

// Generate runs both programs over ix.
func Generate(ctx context.Context, ix *rustdoc.Index, opts Options) (*Result, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("codegen")
	}

	parsed, err := Parse(ctx, ix, log.Named("parser"))
	if err != nil {
		return nil, err
	}
	log.Debugw("Reachability derived",
		"roots", len(parsed.Roots),
		"output", len(parsed.Output),
		logger.FieldDurationMS, parsed.Stats.Duration.Milliseconds(),
	)

	formats, err := Format(ctx, ix, parsed, FormatOptions{
		Translator: NewTranslator(opts.PointerWidth),
		Logger:     log.Named("formatter"),
	})
	if err != nil {
		return nil, err
	}

	if opts.DumpDir != "" {
		if err := DumpRelations(opts.DumpDir, parsed, formats); err != nil {
			return nil, err
		}
		log.Infow("Relations written", logger.FieldFile, opts.DumpDir)
	}

	result := &Result{
		Registry: registry.New(formats.Containers),
		Parsed:   parsed,
		Formats:  formats,
		Duration: time.Since(start),
	}
	log.Infow("Registry generated",
		logger.FieldCount, result.Registry.Len(),
		"dropped", len(formats.Diagnostics),
		logger.FieldDurationMS, result.Duration.Milliseconds(),
	)
	return result, nil
}
