package registry

import (
	"os"
	"strings"

	"github.com/teranos/cruxgen/errors"
)

// Changes lists the names that differ between two registries.
type Changes struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Empty reports whether the registries were equal.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

func (c Changes) String() string {
	if c.Empty() {
		return "no changes"
	}
	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, "added: "+strings.Join(c.Added, ", "))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, "removed: "+strings.Join(c.Removed, ", "))
	}
	if len(c.Changed) > 0 {
		parts = append(parts, "changed: "+strings.Join(c.Changed, ", "))
	}
	return strings.Join(parts, "; ")
}

// Diff compares containers by name. Names come out sorted.
func Diff(old, updated *Registry) Changes {
	var c Changes
	for _, name := range updated.names {
		prev, ok := old.containers[name]
		switch {
		case !ok:
			c.Added = append(c.Added, name)
		case !prev.Equal(updated.containers[name]):
			c.Changed = append(c.Changed, name)
		}
	}
	for _, name := range old.names {
		if _, ok := updated.containers[name]; !ok {
			c.Removed = append(c.Removed, name)
		}
	}
	return c
}

// CheckResult holds the result of comparing a generated registry with a committed one.
type CheckResult struct {
	Path     string  `json:"path"`
	UpToDate bool    `json:"up_to_date"`
	Changes  Changes `json:"changes"`
}

// Check compares generated with the registry stored at path, decoded with enc.
// An empty enc is guessed from the file extension. The file is decoded first,
// so layout and key order do not matter.
func Check(generated *Registry, path string, enc Encoding) (*CheckResult, error) {
	if enc == "" {
		enc = EncodingForPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.NewNotFoundError("registry %s", path),
				"run 'cruxgen codegen' to generate it",
			)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	committed, err := Decode(f, enc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	changes := Diff(committed, generated)
	return &CheckResult{
		Path:     path,
		UpToDate: changes.Empty(),
		Changes:  changes,
	}, nil
}

// Err returns ErrOutOfDate with a summary when the check failed.
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrOutOfDate, "%s: %s", r.Path, r.Changes),
		"run 'cruxgen codegen' and commit the result",
	)
}
