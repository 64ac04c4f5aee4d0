// Package format describes serialized types in a language-neutral way.
//
// The model follows serde-reflection: a Format describes a field, a
// VariantFormat one enum variant and a ContainerFormat a named top-level
// struct or enum.
package format

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Kind enumerates the shapes a Format can take.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes
	KindTypeName
	KindOption
	KindSeq
	KindMap
	KindTuple
	KindTupleArray
)

var kindNames = [...]string{
	KindUnit:       "UNIT",
	KindBool:       "BOOL",
	KindI8:         "I8",
	KindI16:        "I16",
	KindI32:        "I32",
	KindI64:        "I64",
	KindI128:       "I128",
	KindU8:         "U8",
	KindU16:        "U16",
	KindU32:        "U32",
	KindU64:        "U64",
	KindU128:       "U128",
	KindF32:        "F32",
	KindF64:        "F64",
	KindChar:       "CHAR",
	KindStr:        "STR",
	KindBytes:      "BYTES",
	KindTypeName:   "TYPENAME",
	KindOption:     "OPTION",
	KindSeq:        "SEQ",
	KindMap:        "MAP",
	KindTuple:      "TUPLE",
	KindTupleArray: "TUPLEARRAY",
}

// String returns the serde-reflection tag of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsPrimitive reports whether the kind carries no payload.
func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

// Format is the description of a single serialized value.
//
// Name is set for TypeName. Elem is the payload of Option, Seq and
// TupleArray, and the key of Map. Value is the value of Map. Elems holds
// the members of Tuple and Size the length of TupleArray.
type Format struct {
	Kind  Kind
	Name  string
	Elem  *Format
	Value *Format
	Elems []Format
	Size  uint64
}

// Primitive returns the payload-free format of kind k.
func Primitive(k Kind) Format {
	return Format{Kind: k}
}

// TypeName refers to another container by name.
func TypeName(name string) Format {
	return Format{Kind: KindTypeName, Name: name}
}

// Option wraps an optional value.
func Option(f Format) Format {
	return Format{Kind: KindOption, Elem: &f}
}

// Seq is a variable length sequence.
func Seq(f Format) Format {
	return Format{Kind: KindSeq, Elem: &f}
}

// Map is a key/value map.
func Map(key, value Format) Format {
	return Format{Kind: KindMap, Elem: &key, Value: &value}
}

// Tuple is a fixed, heterogeneous sequence.
func Tuple(elems ...Format) Format {
	return Format{Kind: KindTuple, Elems: elems}
}

// TupleArray is a fixed length homogeneous sequence.
func TupleArray(f Format, size uint64) Format {
	return Format{Kind: KindTupleArray, Elem: &f, Size: size}
}

// Equal reports whether two formats describe the same type.
func (f Format) Equal(other Format) bool {
	if f.Kind != other.Kind || f.Name != other.Name || f.Size != other.Size {
		return false
	}
	if !equalPtr(f.Elem, other.Elem) || !equalPtr(f.Value, other.Value) {
		return false
	}
	return slices.EqualFunc(f.Elems, other.Elems, Format.Equal)
}

func equalPtr(a, b *Format) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders the format compactly, e.g. OPTION(SEQ(TYPENAME(Item))).
func (f Format) String() string {
	var b strings.Builder
	f.write(&b)
	return b.String()
}

func (f Format) write(b *strings.Builder) {
	b.WriteString(f.Kind.String())
	switch f.Kind {
	case KindTypeName:
		b.WriteString("(" + f.Name + ")")
	case KindOption, KindSeq:
		b.WriteByte('(')
		f.Elem.write(b)
		b.WriteByte(')')
	case KindMap:
		b.WriteByte('(')
		f.Elem.write(b)
		b.WriteString(", ")
		f.Value.write(b)
		b.WriteByte(')')
	case KindTuple:
		b.WriteByte('(')
		for i, e := range f.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteByte(')')
	case KindTupleArray:
		b.WriteByte('(')
		f.Elem.write(b)
		b.WriteString("; ")
		b.WriteString(strconv.FormatUint(f.Size, 10))
		b.WriteByte(')')
	}
}

// Named attaches a serialized name to a value.
type Named[T any] struct {
	Name  string
	Value T
}

// Indexed tags a value with its declaration position.
type Indexed[T any] struct {
	Index uint32
	Value T
}

// SortIndexed orders values by index and strips the indices.
// Indices are positions, so ties do not occur.
func SortIndexed[T any](items []Indexed[T]) []T {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b Indexed[T]) int { return cmp.Compare(a.Index, b.Index) })
	out := make([]T, len(sorted))
	for i, item := range sorted {
		out[i] = item.Value
	}
	return out
}
