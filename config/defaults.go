package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/cruxgen/rustdoc"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("codegen.lib", "shared")
	v.SetDefault("codegen.doc_json", "")
	v.SetDefault("codegen.output", "")
	v.SetDefault("codegen.format", "yaml")
	v.SetDefault("codegen.pointer_width", 0)

	v.SetDefault("rustdoc.cargo", "cargo")
	v.SetDefault("rustdoc.toolchain", "nightly") // JSON output is unstable
	v.SetDefault("rustdoc.document_private_items", true)
	v.SetDefault("rustdoc.extra_args", "")
	v.SetDefault("rustdoc.format_versions", rustdoc.DefaultFormatVersions)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", "") // empty = ~/.cruxgen/history.db

	v.SetDefault("watch.debounce_ms", 300)

	v.SetDefault("log.json", false)
}
