package cargo

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"

	"github.com/teranos/cruxgen/errors"
)

// Package is a workspace member as reported by cargo metadata.
type Package struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	ManifestPath string   `json:"manifest_path"`
	Targets      []Target `json:"targets"`
}

// Target is a build target of a package.
type Target struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

// Dir returns the directory holding the package's Cargo.toml.
func (p Package) Dir() string {
	return filepath.Dir(p.ManifestPath)
}

// LibName returns the library target name with dashes replaced, or "" when
// the package has no library target.
func (p Package) LibName() string {
	for _, t := range p.Targets {
		for _, k := range t.Kind {
			switch k {
			case "lib", "rlib", "cdylib", "staticlib", "dylib":
				return libFileName(t.Name)
			}
		}
	}
	return ""
}

// WorkspaceMetadata is the output of cargo metadata --no-deps.
type WorkspaceMetadata struct {
	Packages         []Package `json:"packages"`
	WorkspaceMembers []string  `json:"workspace_members"`
	WorkspaceRoot    string    `json:"workspace_root"`
	TargetDirectory  string    `json:"target_directory"`
}

// Metadata runs cargo metadata in dir.
func Metadata(ctx context.Context, runner Runner, cargoBin, dir string) (*WorkspaceMetadata, error) {
	if cargoBin == "" {
		cargoBin = "cargo"
	}
	out, err := runner.Run(ctx, dir, cargoBin, "metadata", "--format-version", "1", "--no-deps")
	if err != nil {
		return nil, errors.Wrap(err, "cargo metadata failed")
	}
	var md WorkspaceMetadata
	if err := json.Unmarshal(out, &md); err != nil {
		return nil, errors.Wrap(err, "failed to decode cargo metadata")
	}
	return &md, nil
}

// MemberByPath finds the workspace member whose manifest lives in path.
// Relative paths are resolved against the workspace root.
func (md *WorkspaceMetadata) MemberByPath(path string) (*Package, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(md.WorkspaceRoot, path)
	}
	path = filepath.Clean(path)

	for i := range md.Packages {
		pkg := &md.Packages[i]
		if !slices.Contains(md.WorkspaceMembers, pkg.ID) {
			continue
		}
		if filepath.Clean(pkg.Dir()) == path {
			return pkg, nil
		}
	}
	return nil, errors.WithHint(
		errors.NewNotFoundError("workspace package with path %s", path),
		"--lib must point at the directory of a workspace member, usually ./shared",
	)
}
