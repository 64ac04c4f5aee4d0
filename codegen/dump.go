package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/teranos/cruxgen/errors"
)

// DumpRelations writes every relation of the reachability program, and the
// diagnostics of the format program when given, as indented JSON files in dir.
func DumpRelations(dir string, parsed *ParseResult, formats *Formats) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create dump directory %s", dir)
	}

	if err := dump(dir, "edge", parsed.Edges); err != nil {
		return err
	}
	if err := dump(dir, "app", parsed.Apps); err != nil {
		return err
	}
	if err := dump(dir, "effect", parsed.Effects); err != nil {
		return err
	}
	if err := dump(dir, "is_effect_of_app", parsed.EffectsOfApps); err != nil {
		return err
	}
	if err := dump(dir, "parent", parsed.Parents); err != nil {
		return err
	}
	if err := dump(dir, "root", parsed.Roots); err != nil {
		return err
	}
	if err := dump(dir, "output", parsed.Output); err != nil {
		return err
	}
	if formats != nil {
		return dump(dir, "diagnostics", formats.Diagnostics)
	}
	return nil
}

func dump[T any](dir, name string, facts []T) error {
	if facts == nil {
		facts = []T{}
	}
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode relation %s", name)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
