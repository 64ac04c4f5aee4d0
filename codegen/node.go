package codegen

import (
	"slices"

	"github.com/teranos/cruxgen/rustdoc"
	"github.com/teranos/cruxgen/serde"
)

// privateField is the placeholder rustdoc emits for fields hidden by a macro.
const privateField = "__private_field"

// ItemNode answers the questions the rules ask about a documented item.
// Every predicate returns false when the node has no item or the wrong kind.
type ItemNode struct {
	*rustdoc.Node
}

func (n ItemNode) inner() *rustdoc.ItemEnum {
	if n.Node == nil || n.Item == nil {
		return nil
	}
	return &n.Item.Inner
}

// Attrs returns the item's attributes.
func (n ItemNode) Attrs() []string {
	if n.Node == nil || n.Item == nil {
		return nil
	}
	return n.Item.Attrs
}

// SourceName returns the declared name.
func (n ItemNode) SourceName() (string, bool) {
	if n.Node == nil || n.Item == nil || n.Item.Name == nil {
		return "", false
	}
	return *n.Item.Name, true
}

// Name returns the serialization name: the last #[serde(rename)] if any,
// otherwise the declared name.
func (n ItemNode) Name() (string, bool) {
	name, ok := n.SourceName()
	if rename, renamed := serde.Rename(n.Attrs()); renamed {
		return rename, true
	}
	return name, ok
}

// ShouldSkip reports whether the item carries #[serde(skip)].
func (n ItemNode) ShouldSkip() bool {
	return serde.ShouldSkip(n.Attrs())
}

func (n ItemNode) structKind() *rustdoc.StructKind {
	inner := n.inner()
	if inner == nil || inner.Struct == nil {
		return nil
	}
	return &inner.Struct.Kind
}

func (n ItemNode) variantKind() *rustdoc.StructKind {
	inner := n.inner()
	if inner == nil || inner.Variant == nil {
		return nil
	}
	return &inner.Variant.Kind
}

func (n ItemNode) IsStruct() bool {
	return n.structKind() != nil
}

func (n ItemNode) IsStructUnit() bool {
	k := n.structKind()
	return k != nil && k.Shape == rustdoc.ShapeUnit
}

func (n ItemNode) IsStructPlain() bool {
	k := n.structKind()
	return k != nil && k.Shape == rustdoc.ShapePlain
}

func (n ItemNode) IsStructTuple() bool {
	k := n.structKind()
	return k != nil && k.Shape == rustdoc.ShapeTuple
}

func (n ItemNode) IsEnum() bool {
	inner := n.inner()
	return inner != nil && inner.Enum != nil
}

func (n ItemNode) IsVariant() bool {
	return n.variantKind() != nil
}

func (n ItemNode) IsPlainVariant() bool {
	k := n.variantKind()
	return k != nil && k.Shape == rustdoc.ShapeUnit
}

func (n ItemNode) IsTupleVariant() bool {
	k := n.variantKind()
	return k != nil && k.Shape == rustdoc.ShapeTuple
}

func (n ItemNode) IsStructVariant() bool {
	k := n.variantKind()
	return k != nil && k.Shape == rustdoc.ShapeStruct
}

// IsAggregate reports whether the item becomes a container: a struct or an enum.
func (n ItemNode) IsAggregate() bool {
	return n.IsStruct() || n.IsEnum()
}

// declaredFields lists the field ids of a struct or variant in declaration
// order. Stripped tuple fields are left out.
func (n ItemNode) declaredFields() []rustdoc.ID {
	k := n.structKind()
	if k == nil {
		k = n.variantKind()
	}
	if k == nil {
		return nil
	}
	switch k.Shape {
	case rustdoc.ShapeTuple:
		ids := make([]rustdoc.ID, 0, len(k.Tuple))
		for _, id := range k.Tuple {
			if id != nil {
				ids = append(ids, *id)
			}
		}
		return ids
	case rustdoc.ShapePlain, rustdoc.ShapeStruct:
		return k.Fields
	}
	return nil
}

func (n ItemNode) declaredVariants() []rustdoc.ID {
	inner := n.inner()
	if inner == nil || inner.Enum == nil {
		return nil
	}
	return inner.Enum.Variants
}

// HasField reports whether the struct or variant declares field, which is
// neither skipped nor a private placeholder.
func (n ItemNode) HasField(field ItemNode) bool {
	if field.Node == nil || field.ShouldSkip() {
		return false
	}
	if n.IsStruct() {
		if name, _ := field.Name(); name == privateField {
			return false
		}
	}
	return slices.Contains(n.declaredFields(), field.Key.ID)
}

// HasVariant reports whether the enum declares variant and it is not skipped.
func (n ItemNode) HasVariant(variant ItemNode) bool {
	if variant.Node == nil || variant.ShouldSkip() {
		return false
	}
	return slices.Contains(n.declaredVariants(), variant.Key.ID)
}

// Fields filters candidates down to the declared fields, in declaration
// order, leaving out skipped ones.
func (n ItemNode) Fields(candidates []ItemNode) []ItemNode {
	return pick(n.declaredFields(), candidates)
}

// Variants is Fields for enum variants.
func (n ItemNode) Variants(candidates []ItemNode) []ItemNode {
	return pick(n.declaredVariants(), candidates)
}

func pick(declared []rustdoc.ID, candidates []ItemNode) []ItemNode {
	var out []ItemNode
	for _, id := range declared {
		for _, c := range candidates {
			if c.Node != nil && c.Key.ID == id && !c.ShouldSkip() {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// IsImplFor reports whether this is an impl of a trait whose last path
// segment is traitName, for the type target.
func (n ItemNode) IsImplFor(target ItemNode, traitName string) bool {
	inner := n.inner()
	if inner == nil || inner.Impl == nil || inner.Impl.Trait == nil || target.Node == nil {
		return false
	}
	impl := inner.Impl
	return impl.Trait.LastSegment() == traitName &&
		impl.For.Kind == rustdoc.TypeResolvedPath && impl.For.Path != nil &&
		impl.For.Path.ID == target.Key.ID
}

// HasAssociatedItem reports whether this impl lists item and item is called name.
func (n ItemNode) HasAssociatedItem(item ItemNode, name string) bool {
	inner := n.inner()
	if inner == nil || inner.Impl == nil {
		return false
	}
	if itemName, ok := item.SourceName(); !ok || itemName != name {
		return false
	}
	return slices.Contains(inner.Impl.Items, item.Key.ID)
}

// IsOfLocalType reports whether this field or associated type refers to
// target, directly or through generic arguments.
func (n ItemNode) IsOfLocalType(target ItemNode) bool {
	if target.Node == nil {
		return false
	}
	return n.isOfType(target.Key.ID, false)
}

// IsOfRemoteType is IsOfLocalType for items known only by their path
// summary. Option, String and Vec never match themselves, and qualified
// paths are followed into their self type and arguments.
func (n ItemNode) IsOfRemoteType(target SummaryNode) bool {
	return n.isOfType(target.ID, true)
}

func (n ItemNode) isOfType(id rustdoc.ID, remote bool) bool {
	inner := n.inner()
	switch {
	case inner == nil:
		return false
	case inner.StructField != nil:
		return checkType(id, inner.StructField, remote)
	case inner.AssocType != nil && inner.AssocType.Type != nil:
		t := inner.AssocType.Type
		return t.Kind == rustdoc.TypeResolvedPath && t.Path != nil && t.Path.ID == id
	}
	return false
}

var builtinGenerics = []string{"Option", "String", "Vec"}

func checkType(id rustdoc.ID, t *rustdoc.Type, remote bool) bool {
	switch t.Kind {
	case rustdoc.TypeResolvedPath:
		if t.Path == nil {
			return false
		}
		if remote && slices.Contains(builtinGenerics, t.Path.LastSegment()) {
			return false
		}
		return t.Path.ID == id || checkArgs(id, t.Path.Args, remote)
	case rustdoc.TypeQualifiedPath:
		if !remote || t.Qualified == nil {
			return false
		}
		return checkType(id, &t.Qualified.SelfType, remote) || checkArgs(id, t.Qualified.Args, remote)
	case rustdoc.TypeTuple:
		for i := range t.Elems {
			if checkType(id, &t.Elems[i], remote) {
				return true
			}
		}
	case rustdoc.TypeSlice, rustdoc.TypeArray:
		return t.Elem != nil && checkType(id, t.Elem, remote)
	}
	return false
}

func checkArgs(id rustdoc.ID, args *rustdoc.GenericArgs, remote bool) bool {
	if args == nil {
		return false
	}
	if args.Parenthesized {
		for i := range args.Inputs {
			if checkType(id, &args.Inputs[i], remote) {
				return true
			}
		}
		return false
	}
	for _, arg := range args.Args {
		if arg.Type != nil && checkType(id, arg.Type, remote) {
			return true
		}
	}
	return false
}

// SummaryNode is an item known by its module path.
type SummaryNode struct {
	ID      rustdoc.ID
	Summary *rustdoc.ItemSummary
}

// NewSummaryNode returns the summary side of a node, if it has one.
func NewSummaryNode(n *rustdoc.Node) (SummaryNode, bool) {
	if n == nil || n.Summary == nil {
		return SummaryNode{}, false
	}
	return SummaryNode{ID: n.Key.ID, Summary: n.Summary}, true
}

// InSameModuleAs reports whether both paths have the same length and agree
// on every segment but the last. Empty paths are in no module.
func (s SummaryNode) InSameModuleAs(other SummaryNode) bool {
	if s.Summary == nil || other.Summary == nil {
		return false
	}
	this, that := s.Summary.Path, other.Summary.Path
	if len(this) == 0 || len(this) != len(that) {
		return false
	}
	return slices.Equal(this[:len(this)-1], that[:len(that)-1])
}
