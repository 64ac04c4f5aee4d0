package codegen

import (
	"encoding/json"
	"slices"

	"github.com/teranos/cruxgen/rustdoc"
)

// Label says why one node leads to another.
type Label uint8

const (
	LabelAssociatedItem Label = iota
	LabelAssociatedType
	LabelType
	LabelField
	LabelVariant
	LabelTraitApp
	LabelTraitEffect
)

var labelNames = [...]string{
	LabelAssociatedItem: "AssociatedItem",
	LabelAssociatedType: "AssociatedType",
	LabelType:           "Type",
	LabelField:          "Field",
	LabelVariant:        "Variant",
	LabelTraitApp:       "TraitApp",
	LabelTraitEffect:    "TraitEffect",
}

func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return "Unknown"
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Edge is a labelled link between two nodes of the index.
type Edge struct {
	From  rustdoc.Key `json:"from"`
	To    rustdoc.Key `json:"to"`
	Label Label       `json:"label"`
}

// Trait and associated item names that anchor the type graph.
const (
	TraitApp    = "App"
	TraitEffect = "Effect"
)

var (
	associatedItemNames = []string{"Event", "ViewModel", "Capabilities"}
	associatedTypeNames = []string{"Event", "ViewModel", "Ffi"}
)

// ExtractEdges scans every documented item and emits the labelled edges the
// reachability rules consume. Items marked #[serde(skip)] emit nothing and
// edges to ids that resolve to no node are dropped.
func ExtractEdges(ix *rustdoc.Index) []Edge {
	x := &extractor{ix: ix}
	for _, node := range ix.Nodes() {
		if node.Item == nil {
			continue
		}
		source := ItemNode{node}
		if source.ShouldSkip() {
			continue
		}
		x.item(node)
	}
	return x.edges
}

type extractor struct {
	ix    *rustdoc.Index
	edges []Edge
}

func (x *extractor) add(from *rustdoc.Node, to rustdoc.ID, label Label) bool {
	dest, ok := x.ix.Lookup(to)
	if !ok {
		return false
	}
	x.edges = append(x.edges, Edge{From: from.Key, To: dest.Key, Label: label})
	return true
}

func (x *extractor) item(node *rustdoc.Node) {
	inner := &node.Item.Inner
	switch {
	case inner.Struct != nil:
		x.fields(node, &inner.Struct.Kind)
	case inner.Variant != nil:
		x.fields(node, &inner.Variant.Kind)
	case inner.StructField != nil:
		if t := inner.StructField; t.Kind == rustdoc.TypeResolvedPath && t.Path != nil {
			if x.add(node, t.Path.ID, LabelType) {
				x.args(node, t.Path.Args)
			}
		}
	case inner.Enum != nil:
		for _, id := range inner.Enum.Variants {
			x.add(node, id, LabelVariant)
		}
	case inner.Impl != nil:
		x.impl(node, inner.Impl)
	case inner.AssocType != nil:
		t := inner.AssocType.Type
		if t == nil || t.Kind != rustdoc.TypeResolvedPath || t.Path == nil {
			return
		}
		if name := node.Item.Name; name != nil && !slices.Contains(associatedTypeNames, *name) {
			return
		}
		x.add(node, t.Path.ID, LabelAssociatedType)
	}
}

func (x *extractor) fields(node *rustdoc.Node, kind *rustdoc.StructKind) {
	switch kind.Shape {
	case rustdoc.ShapeTuple:
		for _, id := range kind.Tuple {
			if id != nil {
				x.add(node, *id, LabelField)
			}
		}
	case rustdoc.ShapePlain, rustdoc.ShapeStruct:
		for _, id := range kind.Fields {
			x.add(node, id, LabelField)
		}
	}
}

// args follows the angle-bracketed type arguments of a field's type, so
// Vec<Item> leads to Item as well as to Vec. Arguments of a path that is
// not in the index are not followed.
func (x *extractor) args(node *rustdoc.Node, args *rustdoc.GenericArgs) {
	if args == nil || args.Parenthesized {
		return
	}
	for _, t := range args.Types() {
		if t.Kind != rustdoc.TypeResolvedPath || t.Path == nil {
			continue
		}
		if x.add(node, t.Path.ID, LabelType) {
			x.args(node, t.Path.Args)
		}
	}
}

func (x *extractor) impl(node *rustdoc.Node, impl *rustdoc.Impl) {
	if impl.Trait == nil || impl.For.Kind != rustdoc.TypeResolvedPath || impl.For.Path == nil {
		return
	}

	var label Label
	switch impl.Trait.LastSegment() {
	case TraitApp:
		label = LabelTraitApp
	case TraitEffect:
		label = LabelTraitEffect
	default:
		return
	}

	if !x.add(node, impl.Trait.ID, label) {
		return
	}
	if !x.add(node, impl.For.Path.ID, LabelType) {
		return
	}

	for _, id := range impl.Items {
		dest, ok := x.ix.Lookup(id)
		if !ok {
			continue
		}
		if dest.Item != nil && dest.Item.Name != nil && !slices.Contains(associatedItemNames, *dest.Item.Name) {
			continue
		}
		x.edges = append(x.edges, Edge{From: node.Key, To: dest.Key, Label: LabelAssociatedItem})
	}
}
