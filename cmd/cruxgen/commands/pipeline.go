package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/cruxgen/cargo"
	"github.com/teranos/cruxgen/codegen"
	"github.com/teranos/cruxgen/config"
	"github.com/teranos/cruxgen/db"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/registry"
	"github.com/teranos/cruxgen/rustdoc"
	"github.com/teranos/cruxgen/snapshot"
)

// run is one pass from documentation to registry.
type run struct {
	Doc          *rustdoc.Document
	CrateVersion string
	Result       *codegen.Result
}

// inputFlags registers the flags shared by commands that read a crate.
func inputFlags(cmd *cobra.Command) {
	cmd.Flags().String("lib", "", "Workspace member holding the App (default from codegen.lib)")
	cmd.Flags().String("doc", "", "Prebuilt rustdoc JSON; skips cargo")
	cmd.Flags().StringP("output", "o", "", "Registry file (default: stdout)")
	cmd.Flags().String("format", "", "Registry format: yaml, json or msgpack")
	cmd.Flags().Int("pointer-width", 0, "Width of isize/usize: 32 or 64 (default: host)")
}

// bindInputFlags binds the input flags of cmd to config keys. It runs in
// PreRunE because several commands share key names.
func bindInputFlags(cmd *cobra.Command) error {
	v := config.GetViper()
	for key, flag := range map[string]string{
		"codegen.lib":           "lib",
		"codegen.doc_json":      "doc",
		"codegen.output":        "output",
		"codegen.format":        "format",
		"codegen.pointer_width": "pointer-width",
	} {
		if err := bindFlag(v, cmd, key, flag); err != nil {
			return err
		}
	}
	return nil
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		return errors.AssertionFailedf("flag --%s is not defined on %s", flag, cmd.Name())
	}
	return v.BindPFlag(key, f)
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// locateDocs returns the rustdoc JSON to read, building it with cargo unless
// codegen.doc_json names one.
func locateDocs(ctx context.Context, cfg *config.Config) (path, crateVersion string, err error) {
	if cfg.Codegen.DocJSON != "" {
		return cfg.Codegen.DocJSON, "", nil
	}

	log := logger.ComponentLogger("cargo")
	path, pkg, err := cargo.DocsForLib(ctx, cargo.ExecRunner{Logger: log}, cfg.Codegen.Lib, cargo.BuildOptions{
		Cargo:                cfg.Rustdoc.Cargo,
		Toolchain:            cfg.Rustdoc.Toolchain,
		DocumentPrivateItems: cfg.Rustdoc.DocumentPrivateItems,
		ExtraArgs:            cfg.Rustdoc.ExtraArgs,
		Logger:               log,
	})
	if err != nil {
		return "", "", err
	}

	crateVersion = pkg.Version
	manifest, err := cargo.ReadManifest(pkg.ManifestPath)
	if err != nil {
		return "", "", err
	}
	if v, err := manifest.Version(); err == nil && v != nil {
		crateVersion = v.String()
	}
	return path, crateVersion, nil
}

// generate loads the documentation at path and builds the registry.
func generate(ctx context.Context, cfg *config.Config, path, crateVersion, dumpDir string) (*run, error) {
	doc, err := rustdoc.Load(ctx, path, rustdoc.LoadOptions{
		FormatVersions: cfg.Rustdoc.FormatVersions,
		Logger:         logger.ComponentLogger("rustdoc.loader"),
	})
	if err != nil {
		return nil, err
	}
	if crateVersion == "" {
		crateVersion = doc.Crate.Version()
	}

	ctx = logger.WithCrate(ctx, doc.Crate.Name())
	result, err := codegen.Generate(ctx, rustdoc.NewIndex(doc.Crate), codegen.Options{
		PointerWidth: cfg.Codegen.PointerWidth,
		DumpDir:      dumpDir,
		Logger:       logger.ComponentLogger("codegen").With(logger.FieldsFromContext(ctx)...),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "codegen for %s", doc.Crate.Name())
	}
	return &run{Doc: doc, CrateVersion: crateVersion, Result: result}, nil
}

// outputEncoding picks the configured encoding, falling back to the output
// file's extension when no format was given explicitly.
func outputEncoding(cmd *cobra.Command, cfg *config.Config) (registry.Encoding, error) {
	_, fromEnv := os.LookupEnv("CRUXGEN_CODEGEN_FORMAT")
	explicit := fromEnv || config.GetViper().InConfig("codegen.format")
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		explicit = true
	}
	if !explicit && cfg.Codegen.Output != "" {
		return registry.EncodingForPath(cfg.Codegen.Output), nil
	}
	return registry.ParseEncoding(cfg.Codegen.Format)
}

// writeRegistry writes reg to path, or to cmd's stdout when path is empty.
func writeRegistry(cmd *cobra.Command, reg *registry.Registry, path string, enc registry.Encoding) error {
	if path == "" {
		return registry.Encode(cmd.OutOrStdout(), reg, enc)
	}
	data, err := registry.Marshal(reg, enc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// openStore opens the snapshot history database.
func openStore(cfg *config.Config) (*snapshot.Store, func() error, error) {
	path := cfg.Store.Path
	if path == "" {
		dir := config.UserDir()
		if dir == "" {
			return nil, nil, errors.WithHint(
				errors.New("no home directory for the snapshot store"),
				"set store.path or disable the store with store.enabled = false",
			)
		}
		path = filepath.Join(dir, "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	log := logger.ComponentLogger("snapshot")
	conn, err := db.OpenWithMigrations(path, log)
	if err != nil {
		return nil, nil, err
	}
	return snapshot.NewStore(conn, log), conn.Close, nil
}
