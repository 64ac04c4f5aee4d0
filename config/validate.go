package config

import (
	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/registry"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Codegen.Lib == "" && c.Codegen.DocJSON == "" {
		return invalid("one of codegen.lib or codegen.doc_json must be set")
	}
	if _, err := registry.ParseEncoding(c.Codegen.Format); err != nil {
		return err
	}

	// zero means host width
	switch c.Codegen.PointerWidth {
	case 0, 32, 64:
	default:
		return invalid("codegen.pointer_width must be 0, 32 or 64, got %d", c.Codegen.PointerWidth)
	}

	if c.Rustdoc.FormatVersions != "" {
		if _, err := semver.NewConstraint(c.Rustdoc.FormatVersions); err != nil {
			return invalid("rustdoc.format_versions %q: %s", c.Rustdoc.FormatVersions, err)
		}
	}
	if _, err := shellquote.Split(c.Rustdoc.ExtraArgs); err != nil {
		return invalid("rustdoc.extra_args %q: %s", c.Rustdoc.ExtraArgs, err)
	}

	if c.Watch.DebounceMS < 0 {
		return invalid("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}
