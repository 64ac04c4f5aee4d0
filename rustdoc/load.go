package rustdoc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

// DefaultFormatVersions accepts every rustdoc JSON format cruxgen has been run against.
const DefaultFormatVersions = ">= 33"

// Document is a decoded rustdoc JSON file.
type Document struct {
	Crate *Crate
	Path  string
	// SHA256 of the raw file contents, hex encoded
	Digest string
}

// LoadOptions controls Load.
type LoadOptions struct {
	// FormatVersions is a semver constraint on format_version (e.g. ">= 33, < 60").
	// Empty means DefaultFormatVersions.
	FormatVersions string
	Logger         *zap.SugaredLogger
}

// Load reads and decodes the rustdoc JSON at path. Decoding runs on its own
// goroutine and stops early when ctx is cancelled.
func Load(ctx context.Context, path string, opts LoadOptions) (*Document, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.NewNotFoundError("documentation file %s", path),
				"build it with `cruxgen codegen --lib <path>` or cargo +nightly rustdoc -- -Z unstable-options --output-format json",
			)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	doc := &Document{Path: path}
	hash := sha256.New()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		crate, err := Decode(io.TeeReader(&ctxReader{ctx: gctx, r: f}, hash))
		if err != nil {
			return errors.Wrapf(err, "failed to load %s", path)
		}
		doc.Crate = crate
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	doc.Digest = hex.EncodeToString(hash.Sum(nil))

	if err := CheckFormatVersion(doc.Crate.FormatVersion, opts.FormatVersions); err != nil {
		return nil, err
	}

	if opts.Logger != nil {
		opts.Logger.Infow("Loaded rustdoc JSON",
			logger.FieldFile, path,
			logger.FieldCrate, doc.Crate.Name(),
			logger.FieldVersion, doc.Crate.FormatVersion,
			"items", len(doc.Crate.Index),
			"paths", len(doc.Crate.Paths),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return doc, nil
}

// Decode parses a rustdoc JSON document.
func Decode(r io.Reader) (*Crate, error) {
	var crate Crate
	if err := json.NewDecoder(r).Decode(&crate); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, markDeserialize(err)
	}
	if crate.Index == nil {
		return nil, errors.Wrap(errors.ErrDeserialize, "missing index table")
	}
	return &crate, nil
}

// markDeserialize tags err as ErrDeserialize while keeping the decoder's message.
func markDeserialize(err error) error {
	return errors.Mark(errors.WithMessage(err, errors.ErrDeserialize.Error()), errors.ErrDeserialize)
}

// CheckFormatVersion verifies version satisfies the semver constraint.
func CheckFormatVersion(version uint32, constraint string) error {
	if constraint == "" {
		constraint = DefaultFormatVersions
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "rustdoc.format_versions %q: %s", constraint, err)
	}
	v, err := semver.NewVersion(strconv.FormatUint(uint64(version), 10))
	if err != nil {
		return errors.Wrapf(err, "format_version %d", version)
	}
	if !c.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedFormatVersion, "format_version %d does not satisfy %q", version, constraint),
			"use a nightly toolchain that emits a supported format, or widen rustdoc.format_versions",
		)
	}
	return nil
}

// ctxReader fails reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
