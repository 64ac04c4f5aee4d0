// Package config loads cruxgen settings from defaults, cruxgen.toml files and
// CRUXGEN_* environment variables.
package config

// Config is the cruxgen configuration.
type Config struct {
	Codegen CodegenConfig `mapstructure:"codegen" toml:"codegen"`
	Rustdoc RustdocConfig `mapstructure:"rustdoc" toml:"rustdoc"`
	Store   StoreConfig   `mapstructure:"store" toml:"store"`
	Watch   WatchConfig   `mapstructure:"watch" toml:"watch"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// CodegenConfig selects the input crate and the registry output.
type CodegenConfig struct {
	Lib          string `mapstructure:"lib" toml:"lib"`                     // workspace member holding the App (e.g. "shared")
	DocJSON      string `mapstructure:"doc_json" toml:"doc_json"`           // prebuilt rustdoc JSON; skips cargo when set
	Output       string `mapstructure:"output" toml:"output"`               // registry file; empty writes to stdout
	Format       string `mapstructure:"format" toml:"format"`               // yaml, json or msgpack
	PointerWidth int    `mapstructure:"pointer_width" toml:"pointer_width"` // isize/usize width: 0 = host, 32 or 64
}

// RustdocConfig controls how rustdoc JSON is built and which formats are accepted.
type RustdocConfig struct {
	Cargo                string `mapstructure:"cargo" toml:"cargo"`
	Toolchain            string `mapstructure:"toolchain" toml:"toolchain"`
	DocumentPrivateItems bool   `mapstructure:"document_private_items" toml:"document_private_items"`
	ExtraArgs            string `mapstructure:"extra_args" toml:"extra_args"`           // shell-quoted, appended after the rustdoc flags
	FormatVersions       string `mapstructure:"format_versions" toml:"format_versions"` // semver constraint on format_version
}

// StoreConfig configures the snapshot history database.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path" toml:"path"`
}

// WatchConfig configures cruxgen watch.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// File system constants
const (
	DefaultDirPermissions  = 0o755
	DefaultFilePermissions = 0o644
)

// FileName is the project configuration file searched for from the working directory up.
const FileName = "cruxgen.toml"
