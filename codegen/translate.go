package codegen

import (
	"strconv"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/format"
	"github.com/teranos/cruxgen/rustdoc"
	"github.com/teranos/cruxgen/serde"
)

var primitives = map[string]format.Kind{
	"bool": format.KindBool,
	"char": format.KindChar,
	"str":  format.KindStr,
	"i8":   format.KindI8,
	"i16":  format.KindI16,
	"i32":  format.KindI32,
	"i64":  format.KindI64,
	"i128": format.KindI128,
	"u8":   format.KindU8,
	"u16":  format.KindU16,
	"u32":  format.KindU32,
	"u64":  format.KindU64,
	"u128": format.KindU128,
	"f32":  format.KindF32,
	"f64":  format.KindF64,
}

// Translator maps rustdoc types to formats.
type Translator struct {
	// PointerWidth decides isize and usize. Zero means the width of the host.
	PointerWidth int
}

// NewTranslator returns a translator for the given pointer width.
func NewTranslator(pointerWidth int) *Translator {
	return &Translator{PointerWidth: pointerWidth}
}

func (t *Translator) width() int {
	if t == nil || t.PointerWidth == 0 {
		return strconv.IntSize
	}
	return t.PointerWidth
}

// Field returns the format of a struct field, honouring #[serde(with)].
func (t *Translator) Field(field ItemNode) (format.Format, error) {
	inner := field.inner()
	if inner == nil || inner.StructField == nil {
		return format.Format{}, errors.NewUnsupportedError("item %s is not a struct field", field.Key)
	}
	if module, ok := serde.With(field.Attrs()); ok {
		if module == serde.BytesModule {
			return format.Primitive(format.KindBytes), nil
		}
		return format.Format{}, errors.WithHint(
			errors.Wrapf(errors.ErrUnknownSerdeWith, "%q", module),
			"only serde_bytes has a known wire format",
		)
	}
	return t.Translate(inner.StructField)
}

// Translate maps a type to its format. Shapes without a format return an
// error marked ErrUnsupportedType; pointer widths other than 32 and 64
// return ErrPrimitiveWidth.
func (t *Translator) Translate(ty *rustdoc.Type) (format.Format, error) {
	switch ty.Kind {
	case rustdoc.TypeResolvedPath:
		if ty.Path == nil {
			return format.Format{}, errors.NewUnsupportedError("resolved path without a path")
		}
		return t.path(ty.Path)

	case rustdoc.TypePrimitive:
		return t.primitive(ty.Name)

	case rustdoc.TypeTuple:
		if len(ty.Elems) == 0 {
			return format.Primitive(format.KindUnit), nil
		}
		elems := make([]format.Format, 0, len(ty.Elems))
		for i := range ty.Elems {
			f, err := t.Translate(&ty.Elems[i])
			if err != nil {
				return format.Format{}, err
			}
			elems = append(elems, f)
		}
		return format.Tuple(elems...), nil

	case rustdoc.TypeQualifiedPath:
		if ty.Qualified == nil {
			return format.Format{}, errors.NewUnsupportedError("qualified path without a name")
		}
		return format.TypeName(ty.Qualified.Name), nil
	}
	return format.Format{}, errors.NewUnsupportedError("%s types have no format", ty.Kind)
}

func (t *Translator) path(p *rustdoc.Path) (format.Format, error) {
	name := p.LastSegment()
	if name == "String" {
		return format.Primitive(format.KindStr), nil
	}
	if p.Args == nil {
		return format.TypeName(name), nil
	}
	if p.Args.Parenthesized {
		return format.Format{}, errors.NewUnsupportedError("parenthesized arguments of %s", name)
	}

	switch name {
	case "Option", "Vec":
		args := p.Args.Types()
		if len(args) == 0 {
			return format.Format{}, errors.NewUnsupportedError("%s without a type argument", name)
		}
		inner, err := t.Translate(&args[0])
		if err != nil {
			return format.Format{}, err
		}
		if name == "Option" {
			return format.Option(inner), nil
		}
		return format.Seq(inner), nil
	}
	return format.TypeName(name), nil
}

func (t *Translator) primitive(name string) (format.Format, error) {
	if k, ok := primitives[name]; ok {
		return format.Primitive(k), nil
	}

	switch name {
	case "isize", "usize":
		signed := name == "isize"
		switch t.width() {
		case 32:
			if signed {
				return format.Primitive(format.KindI32), nil
			}
			return format.Primitive(format.KindU32), nil
		case 64:
			if signed {
				return format.Primitive(format.KindI64), nil
			}
			return format.Primitive(format.KindU64), nil
		}
		return format.Format{}, errors.Wrapf(errors.ErrPrimitiveWidth, "%s on a %d-bit target", name, t.width())
	}
	return format.Format{}, errors.NewUnsupportedError("primitive %s", name)
}
