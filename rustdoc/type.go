package rustdoc

import (
	"encoding/json"
)

// TypeKind is the external tag of a rustdoc Type.
type TypeKind string

const (
	TypeResolvedPath    TypeKind = "resolved_path"
	TypePrimitive       TypeKind = "primitive"
	TypeTuple           TypeKind = "tuple"
	TypeQualifiedPath   TypeKind = "qualified_path"
	TypeSlice           TypeKind = "slice"
	TypeArray           TypeKind = "array"
	TypeBorrowedRef     TypeKind = "borrowed_ref"
	TypeRawPointer      TypeKind = "raw_pointer"
	TypeDynTrait        TypeKind = "dyn_trait"
	TypeGeneric         TypeKind = "generic"
	TypeFunctionPointer TypeKind = "function_pointer"
	TypeImplTrait       TypeKind = "impl_trait"
	TypeInfer           TypeKind = "infer"
	TypePat             TypeKind = "pat"
)

// Type is a use of a type in a signature or field.
//
// Which fields are populated depends on Kind:
//   - resolved_path: Path
//   - primitive, generic: Name
//   - tuple: Elems
//   - slice, array, borrowed_ref, raw_pointer, pat: Elem (array also Len)
//   - qualified_path: Qualified
//
// Other kinds keep only their tag.
type Type struct {
	Kind      TypeKind
	Path      *Path
	Name      string
	Elems     []Type
	Elem      *Type
	Len       string
	Qualified *QualifiedPath
}

// QualifiedPath is a projection such as <T as Trait>::Name.
type QualifiedPath struct {
	Name     string       `json:"name"`
	Args     *GenericArgs `json:"args"`
	SelfType Type         `json:"self_type"`
	Trait    *Path        `json:"trait"`
}

func (t *Type) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeTagged(data)
	if err != nil {
		return err
	}
	t.Kind = TypeKind(tag)
	if payload == nil {
		return nil
	}

	switch t.Kind {
	case TypeResolvedPath:
		t.Path = &Path{}
		return json.Unmarshal(payload, t.Path)
	case TypePrimitive, TypeGeneric:
		return json.Unmarshal(payload, &t.Name)
	case TypeTuple:
		return json.Unmarshal(payload, &t.Elems)
	case TypeSlice:
		t.Elem = &Type{}
		return json.Unmarshal(payload, t.Elem)
	case TypeArray:
		var arr struct {
			Type Type   `json:"type"`
			Len  string `json:"len"`
		}
		if err := json.Unmarshal(payload, &arr); err != nil {
			return err
		}
		t.Elem, t.Len = &arr.Type, arr.Len
	case TypeBorrowedRef, TypeRawPointer:
		var ref struct {
			Type Type `json:"type"`
		}
		if err := json.Unmarshal(payload, &ref); err != nil {
			return err
		}
		t.Elem = &ref.Type
	case TypePat:
		var pat struct {
			Type Type `json:"type"`
		}
		if err := json.Unmarshal(payload, &pat); err != nil {
			return err
		}
		t.Elem = &pat.Type
	case TypeQualifiedPath:
		t.Qualified = &QualifiedPath{}
		return json.Unmarshal(payload, t.Qualified)
	}
	return nil
}

// Path is a resolved path to an item together with its generic arguments.
type Path struct {
	Name string
	ID   ID
	Args *GenericArgs
}

func (p *Path) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name *string      `json:"name"`
		Path *string      `json:"path"`
		ID   ID           `json:"id"`
		Args *GenericArgs `json:"args"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Name != nil:
		p.Name = *raw.Name
	case raw.Path != nil:
		p.Name = *raw.Path
	}
	p.ID, p.Args = raw.ID, raw.Args
	return nil
}

// LastSegment returns the final "::"-separated segment of the path name.
func (p *Path) LastSegment() string {
	name := p.Name
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// TypeArgs returns the type arguments of an angle-bracketed argument list.
func (p *Path) TypeArgs() []Type {
	if p.Args == nil {
		return nil
	}
	return p.Args.Types()
}

// GenericArgs is either <A, B> or (A, B) -> C.
type GenericArgs struct {
	Parenthesized bool
	Args          []GenericArg
	Inputs        []Type
	Output        *Type
}

func (g *GenericArgs) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeTagged(data)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	switch tag {
	case "angle_bracketed":
		var ab struct {
			Args []GenericArg `json:"args"`
		}
		if err := json.Unmarshal(payload, &ab); err != nil {
			return err
		}
		g.Args = ab.Args
	case "parenthesized":
		var p struct {
			Inputs []Type `json:"inputs"`
			Output *Type  `json:"output"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		g.Parenthesized = true
		g.Inputs, g.Output = p.Inputs, p.Output
	}
	return nil
}

// Types returns the type arguments, skipping lifetimes and consts.
func (g *GenericArgs) Types() []Type {
	var out []Type
	for _, arg := range g.Args {
		if arg.Type != nil {
			out = append(out, *arg.Type)
		}
	}
	return out
}

// GenericArg is one angle-bracketed argument. Only type arguments keep a payload.
type GenericArg struct {
	Kind string
	Type *Type
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeTagged(data)
	if err != nil {
		return err
	}
	a.Kind = tag
	if tag == "type" && payload != nil {
		a.Type = &Type{}
		return json.Unmarshal(payload, a.Type)
	}
	return nil
}
