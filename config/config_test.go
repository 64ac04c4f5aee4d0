package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cruxgen/errors"
)

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home, project = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	Reset()
	t.Cleanup(Reset)
	return home, project
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "shared", cfg.Codegen.Lib)
	assert.Equal(t, "yaml", cfg.Codegen.Format)
	assert.Equal(t, 0, cfg.Codegen.PointerWidth)
	assert.Equal(t, "nightly", cfg.Rustdoc.Toolchain)
	assert.True(t, cfg.Rustdoc.DocumentPrivateItems)
	assert.Equal(t, ">= 33", cfg.Rustdoc.FormatVersions)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, 300, cfg.Watch.DebounceMS)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	home, project := isolate(t)

	write(t, filepath.Join(home, ".cruxgen", FileName), `
[codegen]
format = "json"
pointer_width = 32

[watch]
debounce_ms = 100
`)
	write(t, filepath.Join(project, FileName), `
[codegen]
pointer_width = 64
output = "generated/registry.json"
`)
	// found by walking up from a nested directory
	nested := filepath.Join(project, "shared", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)
	t.Setenv("CRUXGEN_WATCH_DEBOUNCE_MS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Codegen.Format, "user file")
	assert.Equal(t, 64, cfg.Codegen.PointerWidth, "project file beats user file")
	assert.Equal(t, "generated/registry.json", cfg.Codegen.Output)
	assert.Equal(t, 50, cfg.Watch.DebounceMS, "env beats files")
	assert.Equal(t, "shared", cfg.Codegen.Lib, "default")

	assert.Len(t, Sources(), 2)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "cached until Reset")
}

func TestLoadWithoutFiles(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, Sources())
	assert.Equal(t, "yaml", cfg.Codegen.Format)
}

func TestSettings(t *testing.T) {
	isolate(t)
	settings := Settings()
	require.NotEmpty(t, settings)

	found := map[string]string{}
	for i, kv := range settings {
		if i > 0 {
			assert.Less(t, settings[i-1][0], kv[0], "sorted")
		}
		found[kv[0]] = kv[1]
	}
	assert.Equal(t, "300", found["watch.debounce_ms"])
	assert.Equal(t, "nightly", found["rustdoc.toolchain"])
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	write(t, path, "[rustdoc]\nextra_args = \"--cfg feature=\\\"typegen\\\"\"\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, `--cfg feature="typegen"`, cfg.Rustdoc.ExtraArgs)
	assert.Equal(t, "nightly", cfg.Rustdoc.Toolchain, "defaults still apply")

	_, err = LoadFromFile(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"doc json without lib", func(c *Config) { c.Codegen.Lib = ""; c.Codegen.DocJSON = "shared.json" }, false},
		{"no input", func(c *Config) { c.Codegen.Lib = "" }, true},
		{"msgpack", func(c *Config) { c.Codegen.Format = "msgpack" }, false},
		{"unknown format", func(c *Config) { c.Codegen.Format = "bincode" }, true},
		{"pointer width 32", func(c *Config) { c.Codegen.PointerWidth = 32 }, false},
		{"pointer width 16", func(c *Config) { c.Codegen.PointerWidth = 16 }, true},
		{"bad constraint", func(c *Config) { c.Rustdoc.FormatVersions = "newest" }, true},
		{"unbalanced quotes", func(c *Config) { c.Rustdoc.ExtraArgs = `--cfg "x` }, true},
		{"zero debounce", func(c *Config) { c.Watch.DebounceMS = 0 }, false},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project", FileName)
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[codegen]")
	assert.Contains(t, string(data), "pointer_width = 0")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	err = WriteDefault(path)
	require.Error(t, err, "never overwrites")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestUseFile(t *testing.T) {
	_, project := isolate(t)
	write(t, filepath.Join(project, FileName), "[codegen]\nformat = \"json\"\n")

	explicit := filepath.Join(t.TempDir(), "ci.toml")
	write(t, explicit, "[codegen]\nformat = \"msgpack\"\n")

	UseFile(explicit)
	t.Cleanup(func() { UseFile("") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "msgpack", cfg.Codegen.Format, "discovery is skipped")
	assert.Equal(t, []string{explicit}, Sources())

	UseFile(filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}
