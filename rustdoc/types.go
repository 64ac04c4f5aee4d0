// Package rustdoc models the subset of rustdoc's JSON output that cruxgen reads.
//
// Only the shapes needed to walk an application's type graph are decoded in
// detail. Anything else (functions, traits, constants, unknown item kinds)
// decodes into a bare kind tag and is ignored downstream.
package rustdoc

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/teranos/cruxgen/errors"
)

// ID identifies an item within a crate's documentation.
// Older rustdoc versions emit string ids ("0:12:1234"), newer ones integers.
type ID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "invalid id %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

// Crate is the root object of a rustdoc JSON document.
type Crate struct {
	Root            ID                  `json:"root"`
	CrateVersion    *string             `json:"crate_version"`
	IncludesPrivate bool                `json:"includes_private"`
	Index           map[ID]Item         `json:"index"`
	Paths           map[ID]ItemSummary  `json:"paths"`
	ExternalCrates  map[string]ExtCrate `json:"external_crates"`
	FormatVersion   uint32              `json:"format_version"`
}

// Name returns the crate's own name, taken from the root module item.
func (c *Crate) Name() string {
	if item, ok := c.Index[c.Root]; ok && item.Name != nil {
		return *item.Name
	}
	return ""
}

// Version returns the crate version or an empty string.
func (c *Crate) Version() string {
	if c.CrateVersion == nil {
		return ""
	}
	return *c.CrateVersion
}

// ExtCrate describes a crate referenced from the documented one.
type ExtCrate struct {
	Name        string  `json:"name"`
	HTMLRootURL *string `json:"html_root_url"`
}

// ItemSummary is an entry of the paths table: where an item lives, even when
// its full definition is not part of the index (external traits for example).
type ItemSummary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item is a fully documented item from the index table.
type Item struct {
	ID      ID       `json:"id"`
	CrateID uint32   `json:"crate_id"`
	Name    *string  `json:"name"`
	Attrs   Attrs    `json:"attrs"`
	Inner   ItemEnum `json:"inner"`
}

// Attrs holds an item's attributes in their source spelling.
type Attrs []string

// UnmarshalJSON accepts plain attribute strings as well as the structured
// form newer rustdoc versions emit, where unparsed attributes are wrapped as
// {"other": "#[...]"}. Structured attributes without a source spelling are skipped.
func (a *Attrs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attrs, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil {
			continue
		}
		if other, ok := obj["other"]; ok {
			if err := json.Unmarshal(other, &s); err == nil {
				out = append(out, s)
			}
		}
	}
	*a = out
	return nil
}

// ItemKind is the external tag of an item's inner payload.
type ItemKind string

const (
	KindModule      ItemKind = "module"
	KindStruct      ItemKind = "struct"
	KindStructField ItemKind = "struct_field"
	KindEnum        ItemKind = "enum"
	KindVariant     ItemKind = "variant"
	KindImpl        ItemKind = "impl"
	KindAssocType   ItemKind = "assoc_type"
)

// ItemEnum is the kind-specific payload of an item. Exactly one of the
// pointers matching Kind is set; other kinds carry no payload.
type ItemEnum struct {
	Kind        ItemKind
	Struct      *Struct
	StructField *Type
	Enum        *Enum
	Variant     *Variant
	Impl        *Impl
	AssocType   *AssocType
}

func (e *ItemEnum) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeTagged(data)
	if err != nil {
		return err
	}
	e.Kind = ItemKind(tag)
	if payload == nil {
		return nil
	}
	switch e.Kind {
	case KindStruct:
		e.Struct = &Struct{}
		return json.Unmarshal(payload, e.Struct)
	case KindStructField:
		e.StructField = &Type{}
		return json.Unmarshal(payload, e.StructField)
	case KindEnum:
		e.Enum = &Enum{}
		return json.Unmarshal(payload, e.Enum)
	case KindVariant:
		e.Variant = &Variant{}
		return json.Unmarshal(payload, e.Variant)
	case KindImpl:
		e.Impl = &Impl{}
		return json.Unmarshal(payload, e.Impl)
	case KindAssocType:
		e.AssocType = &AssocType{}
		return json.Unmarshal(payload, e.AssocType)
	}
	return nil
}

// Struct is the payload of a struct item.
type Struct struct {
	Kind  StructKind `json:"kind"`
	Impls []ID       `json:"impls"`
}

// StructShape distinguishes unit, tuple and plain (named field) structs.
type StructShape string

const (
	ShapeUnit  StructShape = "unit"
	ShapeTuple StructShape = "tuple"
	ShapePlain StructShape = "plain"
	// ShapeStruct is the variant spelling of a plain struct shape.
	ShapeStruct StructShape = "struct"
)

// StructKind is shared by structs and variants. Tuple holds positional field
// ids, nil where a field was stripped from the docs. Fields holds named fields.
type StructKind struct {
	Shape             StructShape
	Tuple             []*ID
	Fields            []ID
	HasStrippedFields bool
}

func (k *StructKind) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeTagged(data)
	if err != nil {
		return err
	}
	k.Shape = StructShape(tag)
	if payload == nil {
		return nil
	}
	switch k.Shape {
	case ShapeTuple:
		return json.Unmarshal(payload, &k.Tuple)
	case ShapePlain, ShapeStruct:
		var named struct {
			Fields            []ID `json:"fields"`
			HasStrippedFields bool `json:"has_stripped_fields"`
			// pre-v23 spelling
			FieldsStripped bool `json:"fields_stripped"`
		}
		if err := json.Unmarshal(payload, &named); err != nil {
			return err
		}
		k.Fields = named.Fields
		k.HasStrippedFields = named.HasStrippedFields || named.FieldsStripped
	}
	return nil
}

// Enum is the payload of an enum item.
type Enum struct {
	Variants            []ID `json:"variants"`
	HasStrippedVariants bool `json:"has_stripped_variants"`
	Impls               []ID `json:"impls"`
}

// Variant is the payload of an enum variant item.
// Its Kind uses ShapeUnit for "plain" variants.
type Variant struct {
	Kind StructKind `json:"kind"`
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind StructKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// unit variants are spelled "plain"
	if raw.Kind.Shape == ShapePlain {
		raw.Kind.Shape = ShapeUnit
	}
	v.Kind = raw.Kind
	return nil
}

// Impl is the payload of an impl block.
type Impl struct {
	Trait       *Path `json:"trait"`
	For         Type  `json:"for"`
	Items       []ID  `json:"items"`
	IsSynthetic bool  `json:"is_synthetic"`
	BlanketImpl *Type `json:"blanket_impl"`
}

// AssocType is the payload of an associated type. Inside an impl block Type
// holds the concrete type the associated type is bound to.
type AssocType struct {
	Type *Type
}

func (a *AssocType) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    *Type `json:"type"`
		Default *Type `json:"default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Type = raw.Type
	if a.Type == nil {
		a.Type = raw.Default
	}
	return nil
}

// decodeTagged splits serde's externally tagged enum encoding into its tag and
// payload. Bare strings are payload-less variants.
func decodeTagged(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, errors.Newf("expected a single-key tagged object, got %d keys", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}
	return "", nil, nil
}

// compareIDs orders numeric ids numerically and everything else lexically.
func compareIDs(a, b ID) int {
	na, errA := strconv.ParseUint(string(a), 10, 64)
	nb, errB := strconv.ParseUint(string(b), 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
