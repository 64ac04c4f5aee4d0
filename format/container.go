package format

import (
	"maps"
	"slices"
)

// VariantKind enumerates enum variant shapes.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewType
	VariantTuple
	VariantStruct
)

var variantNames = [...]string{
	VariantUnit:    "UNIT",
	VariantNewType: "NEWTYPE",
	VariantTuple:   "TUPLE",
	VariantStruct:  "STRUCT",
}

func (k VariantKind) String() string {
	if int(k) < len(variantNames) {
		return variantNames[k]
	}
	return "UNKNOWN"
}

// VariantFormat describes one enum variant.
type VariantFormat struct {
	Kind    VariantKind
	NewType *Format
	Tuple   []Format
	Fields  []Named[Format]
}

// UnitVariant is a variant without payload.
func UnitVariant() VariantFormat {
	return VariantFormat{Kind: VariantUnit}
}

// StructVariant is a variant with named fields.
func StructVariant(fields []Named[Format]) VariantFormat {
	return VariantFormat{Kind: VariantStruct, Fields: fields}
}

// TupleVariant collapses positional fields: none is Unit, one is NewType,
// two or more stay Tuple.
func TupleVariant(fields []Format) VariantFormat {
	switch len(fields) {
	case 0:
		return UnitVariant()
	case 1:
		f := fields[0]
		return VariantFormat{Kind: VariantNewType, NewType: &f}
	}
	return VariantFormat{Kind: VariantTuple, Tuple: fields}
}

// Equal reports whether two variants describe the same shape.
func (v VariantFormat) Equal(other VariantFormat) bool {
	return v.Kind == other.Kind &&
		equalPtr(v.NewType, other.NewType) &&
		slices.EqualFunc(v.Tuple, other.Tuple, Format.Equal) &&
		equalNamed(v.Fields, other.Fields)
}

// ContainerKind enumerates top-level container shapes.
type ContainerKind uint8

const (
	ContainerUnitStruct ContainerKind = iota
	ContainerNewTypeStruct
	ContainerTupleStruct
	ContainerStruct
	ContainerEnum
)

var containerNames = [...]string{
	ContainerUnitStruct:    "UNITSTRUCT",
	ContainerNewTypeStruct: "NEWTYPESTRUCT",
	ContainerTupleStruct:   "TUPLESTRUCT",
	ContainerStruct:        "STRUCT",
	ContainerEnum:          "ENUM",
}

func (k ContainerKind) String() string {
	if int(k) < len(containerNames) {
		return containerNames[k]
	}
	return "UNKNOWN"
}

// ContainerFormat describes a named struct or enum.
type ContainerFormat struct {
	Kind     ContainerKind
	NewType  *Format
	Tuple    []Format
	Fields   []Named[Format]
	Variants map[uint32]Named[VariantFormat]
}

// UnitStruct is a struct without fields.
func UnitStruct() ContainerFormat {
	return ContainerFormat{Kind: ContainerUnitStruct}
}

// PlainStruct wraps named fields; a struct with no fields is a UnitStruct.
func PlainStruct(fields []Named[Format]) ContainerFormat {
	if len(fields) == 0 {
		return UnitStruct()
	}
	return ContainerFormat{Kind: ContainerStruct, Fields: fields}
}

// TupleStruct collapses positional fields: none is UnitStruct, one is
// NewTypeStruct, two or more stay TupleStruct.
func TupleStruct(fields []Format) ContainerFormat {
	switch len(fields) {
	case 0:
		return UnitStruct()
	case 1:
		f := fields[0]
		return ContainerFormat{Kind: ContainerNewTypeStruct, NewType: &f}
	}
	return ContainerFormat{Kind: ContainerTupleStruct, Tuple: fields}
}

// Enum wraps variants keyed by declaration index.
func Enum(variants map[uint32]Named[VariantFormat]) ContainerFormat {
	if variants == nil {
		variants = map[uint32]Named[VariantFormat]{}
	}
	return ContainerFormat{Kind: ContainerEnum, Variants: variants}
}

// VariantIndices returns the enum's variant indices in ascending order.
func (c ContainerFormat) VariantIndices() []uint32 {
	return slices.Sorted(maps.Keys(c.Variants))
}

// Children returns the number of fields or variants.
func (c ContainerFormat) Children() int {
	switch c.Kind {
	case ContainerNewTypeStruct:
		return 1
	case ContainerTupleStruct:
		return len(c.Tuple)
	case ContainerStruct:
		return len(c.Fields)
	case ContainerEnum:
		return len(c.Variants)
	}
	return 0
}

// Equal reports whether two containers describe the same type.
func (c ContainerFormat) Equal(other ContainerFormat) bool {
	if c.Kind != other.Kind || len(c.Variants) != len(other.Variants) {
		return false
	}
	for i, v := range c.Variants {
		o, ok := other.Variants[i]
		if !ok || o.Name != v.Name || !o.Value.Equal(v.Value) {
			return false
		}
	}
	return equalPtr(c.NewType, other.NewType) &&
		slices.EqualFunc(c.Tuple, other.Tuple, Format.Equal) &&
		equalNamed(c.Fields, other.Fields)
}

func equalNamed(a, b []Named[Format]) bool {
	return slices.EqualFunc(a, b, func(x, y Named[Format]) bool {
		return x.Name == y.Name && x.Value.Equal(y.Value)
	})
}
