package cargo

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

// BuildOptions controls how rustdoc JSON is produced.
type BuildOptions struct {
	// Cargo binary, "cargo" when empty
	Cargo string
	// Toolchain passed as +toolchain; JSON output needs nightly
	Toolchain            string
	DocumentPrivateItems bool
	// ExtraArgs are appended to the rustdoc arguments, shell-quoted
	ExtraArgs string
	Logger    *zap.SugaredLogger
}

// BuildTarget is what BuildDocs documents.
type BuildTarget struct {
	ManifestPath string
	LibName      string
	TargetDir    string
}

// RustdocArgs returns the cargo arguments for documenting target.
func RustdocArgs(target BuildTarget, opts BuildOptions) ([]string, error) {
	var args []string
	if opts.Toolchain != "" {
		args = append(args, "+"+opts.Toolchain)
	}
	args = append(args, "rustdoc", "--lib", "--manifest-path", target.ManifestPath)
	if target.TargetDir != "" {
		args = append(args, "--target-dir", target.TargetDir)
	}
	args = append(args, "--", "-Z", "unstable-options", "--output-format", "json")
	if opts.DocumentPrivateItems {
		args = append(args, "--document-private-items")
	}
	if opts.ExtraArgs != "" {
		extra, err := shellquote.Split(opts.ExtraArgs)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "rustdoc.extra_args %q: %s", opts.ExtraArgs, err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// BuildDocs runs cargo rustdoc for target and returns the path of the JSON it wrote.
func BuildDocs(ctx context.Context, runner Runner, target BuildTarget, opts BuildOptions) (string, error) {
	args, err := RustdocArgs(target, opts)
	if err != nil {
		return "", err
	}
	cargoBin := opts.Cargo
	if cargoBin == "" {
		cargoBin = "cargo"
	}

	if opts.Logger != nil {
		opts.Logger.Infow("Building rustdoc JSON",
			logger.FieldManifest, target.ManifestPath,
			"toolchain", opts.Toolchain,
		)
	}
	if _, err := runner.Run(ctx, filepath.Dir(target.ManifestPath), cargoBin, args...); err != nil {
		return "", errors.WithHint(
			errors.Wrap(err, "cargo rustdoc failed"),
			"JSON output needs a nightly toolchain: rustup toolchain install nightly",
		)
	}

	path := filepath.Join(target.TargetDir, "doc", libFileName(target.LibName)+".json")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("rustdoc output %s", path)
		}
		return "", errors.Wrapf(err, "stat %s", path)
	}
	return path, nil
}

// DocsForLib resolves the workspace member at lib and documents it.
func DocsForLib(ctx context.Context, runner Runner, lib string, opts BuildOptions) (string, *Package, error) {
	dir, err := filepath.Abs(lib)
	if err != nil {
		return "", nil, errors.Wrapf(err, "resolve %s", lib)
	}
	md, err := Metadata(ctx, runner, opts.Cargo, dir)
	if err != nil {
		return "", nil, err
	}
	pkg, err := md.MemberByPath(dir)
	if err != nil {
		return "", nil, err
	}
	libName := pkg.LibName()
	if libName == "" {
		return "", nil, errors.Newf("package %s has no library target", pkg.Name)
	}

	path, err := BuildDocs(ctx, runner, BuildTarget{
		ManifestPath: pkg.ManifestPath,
		LibName:      libName,
		TargetDir:    md.TargetDirectory,
	}, opts)
	if err != nil {
		return "", nil, err
	}
	return path, pkg, nil
}

func libFileName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
