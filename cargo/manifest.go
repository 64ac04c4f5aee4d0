package cargo

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/cruxgen/errors"
)

// Manifest is the part of a Cargo.toml cruxgen needs.
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
		// a string, or a table for version.workspace = true
		Version any `toml:"version"`
	} `toml:"package"`
	Lib struct {
		Name string `toml:"name"`
	} `toml:"lib"`
}

// ReadManifest parses the Cargo.toml at path.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manifest %s", path)
		}
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if m.Package.Name == "" {
		return nil, errors.Newf("%s has no [package] name", path)
	}
	return &m, nil
}

// LibName returns the library target name as rustdoc spells it in file names.
func (m *Manifest) LibName() string {
	name := m.Lib.Name
	if name == "" {
		name = m.Package.Name
	}
	return libFileName(name)
}

// RawVersion returns the version string, empty when it is inherited from the workspace.
func (m *Manifest) RawVersion() string {
	s, _ := m.Package.Version.(string)
	return s
}

// Version parses the package version. A workspace-inherited version yields nil.
func (m *Manifest) Version() (*semver.Version, error) {
	raw := m.RawVersion()
	if raw == "" {
		return nil, nil
	}
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "package %s version %q", m.Package.Name, raw)
	}
	return v, nil
}
