package codegen

import (
	"github.com/teranos/cruxgen/rustdoc"
)

// Diagnostic records a member that was left out of the registry because
// its type has no format.
type Diagnostic struct {
	Item     rustdoc.Key `json:"item"`
	Parent   rustdoc.Key `json:"parent"`
	Name     string      `json:"name,omitempty"`
	Relation string      `json:"relation"`
	Reason   string      `json:"reason"`
}

type diagnostics struct {
	seen map[Pair]struct{}
	list []Diagnostic
}

func (d *diagnostics) add(parent, child ItemNode, relation string, err error) {
	key := Pair{Parent: parent.Key, Child: child.Key}
	if d.seen == nil {
		d.seen = make(map[Pair]struct{})
	}
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}

	name, _ := child.SourceName()
	d.list = append(d.list, Diagnostic{
		Item:     child.Key,
		Parent:   parent.Key,
		Name:     name,
		Relation: relation,
		Reason:   err.Error(),
	})
}
