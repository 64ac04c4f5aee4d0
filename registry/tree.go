package registry

import (
	"strconv"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/format"
)

type treeKind uint8

const (
	scalarTree treeKind = iota
	numberTree
	mapTree
	seqTree
)

// tree is the ordered document every encoding is written from and every
// decoder reads into. Map keys keep their insertion order.
type tree struct {
	kind   treeKind
	str    string
	num    uint64
	keys   []tree
	values []tree
}

func scalar(s string) tree { return tree{kind: scalarTree, str: s} }

func number(n uint64) tree { return tree{kind: numberTree, num: n} }

func seq(items ...tree) tree { return tree{kind: seqTree, values: items} }

func single(key string, value tree) tree {
	return tree{kind: mapTree, keys: []tree{scalar(key)}, values: []tree{value}}
}

func (t *tree) set(key, value tree) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// text returns the scalar or number as a string.
func (t tree) text() string {
	if t.kind == numberTree {
		return strconv.FormatUint(t.num, 10)
	}
	return t.str
}

func registryTree(r *Registry) tree {
	doc := tree{kind: mapTree}
	r.Each(func(name string, c format.ContainerFormat) {
		doc.set(scalar(name), containerTree(c))
	})
	return doc
}

func containerTree(c format.ContainerFormat) tree {
	switch c.Kind {
	case format.ContainerNewTypeStruct:
		return single(c.Kind.String(), formatTree(*c.NewType))
	case format.ContainerTupleStruct:
		return single(c.Kind.String(), formatsTree(c.Tuple))
	case format.ContainerStruct:
		return single(c.Kind.String(), namedTree(c.Fields))
	case format.ContainerEnum:
		variants := tree{kind: mapTree}
		for _, i := range c.VariantIndices() {
			v := c.Variants[i]
			variants.set(number(uint64(i)), single(v.Name, variantTree(v.Value)))
		}
		return single(c.Kind.String(), variants)
	}
	return scalar(c.Kind.String())
}

func variantTree(v format.VariantFormat) tree {
	switch v.Kind {
	case format.VariantNewType:
		return single(v.Kind.String(), formatTree(*v.NewType))
	case format.VariantTuple:
		return single(v.Kind.String(), formatsTree(v.Tuple))
	case format.VariantStruct:
		return single(v.Kind.String(), namedTree(v.Fields))
	}
	return scalar(v.Kind.String())
}

func formatTree(f format.Format) tree {
	switch f.Kind {
	case format.KindTypeName:
		return single(f.Kind.String(), scalar(f.Name))
	case format.KindOption, format.KindSeq:
		return single(f.Kind.String(), formatTree(*f.Elem))
	case format.KindMap:
		m := tree{kind: mapTree}
		m.set(scalar("KEY"), formatTree(*f.Elem))
		m.set(scalar("VALUE"), formatTree(*f.Value))
		return single(f.Kind.String(), m)
	case format.KindTuple:
		return single(f.Kind.String(), formatsTree(f.Elems))
	case format.KindTupleArray:
		m := tree{kind: mapTree}
		m.set(scalar("CONTENT"), formatTree(*f.Elem))
		m.set(scalar("SIZE"), number(f.Size))
		return single(f.Kind.String(), m)
	}
	return scalar(f.Kind.String())
}

func formatsTree(fs []format.Format) tree {
	items := make([]tree, 0, len(fs))
	for _, f := range fs {
		items = append(items, formatTree(f))
	}
	return seq(items...)
}

func namedTree(fields []format.Named[format.Format]) tree {
	items := make([]tree, 0, len(fields))
	for _, f := range fields {
		items = append(items, single(f.Name, formatTree(f.Value)))
	}
	return seq(items...)
}

// The readers below invert the writers above.

func malformed(msg string, args ...any) error {
	return errors.Mark(errors.Newf("malformed registry: "+msg, args...), errors.ErrDeserialize)
}

// tag splits a single-entry map into its key and value. A bare scalar is a
// tag without payload.
func (t tree) tag() (string, *tree, error) {
	switch t.kind {
	case scalarTree:
		return t.str, nil, nil
	case mapTree:
		if len(t.keys) == 1 {
			return t.keys[0].text(), &t.values[0], nil
		}
	}
	return "", nil, malformed("expected a tag, got %s", t.describe())
}

func (t tree) describe() string {
	switch t.kind {
	case scalarTree:
		return strconv.Quote(t.str)
	case numberTree:
		return t.text()
	case mapTree:
		return "a map of " + strconv.Itoa(len(t.keys)) + " entries"
	}
	return "a sequence of " + strconv.Itoa(len(t.values)) + " items"
}

func (t tree) lookup(key string) (tree, bool) {
	for i, k := range t.keys {
		if k.text() == key {
			return t.values[i], true
		}
	}
	return tree{}, false
}

func readRegistry(doc tree) (*Registry, error) {
	if doc.kind == scalarTree && doc.str == "" {
		return New(nil), nil
	}
	if doc.kind != mapTree {
		return nil, malformed("expected a map of containers, got %s", doc.describe())
	}
	containers := make(map[string]format.ContainerFormat, len(doc.keys))
	for i, key := range doc.keys {
		c, err := readContainer(doc.values[i])
		if err != nil {
			return nil, errors.Wrapf(err, "container %s", key.text())
		}
		containers[key.text()] = c
	}
	return New(containers), nil
}

func readContainer(t tree) (format.ContainerFormat, error) {
	name, payload, err := t.tag()
	if err != nil {
		return format.ContainerFormat{}, err
	}

	switch name {
	case "UNITSTRUCT":
		return format.UnitStruct(), nil
	case "NEWTYPESTRUCT":
		f, err := readPayload(payload, readFormat)
		if err != nil {
			return format.ContainerFormat{}, err
		}
		return format.ContainerFormat{Kind: format.ContainerNewTypeStruct, NewType: &f}, nil
	case "TUPLESTRUCT":
		fs, err := readPayload(payload, readFormats)
		if err != nil {
			return format.ContainerFormat{}, err
		}
		return format.ContainerFormat{Kind: format.ContainerTupleStruct, Tuple: fs}, nil
	case "STRUCT":
		fields, err := readPayload(payload, readNamed)
		if err != nil {
			return format.ContainerFormat{}, err
		}
		return format.ContainerFormat{Kind: format.ContainerStruct, Fields: fields}, nil
	case "ENUM":
		variants, err := readPayload(payload, readVariants)
		if err != nil {
			return format.ContainerFormat{}, err
		}
		return format.Enum(variants), nil
	}
	return format.ContainerFormat{}, malformed("unknown container %q", name)
}

func readPayload[T any](payload *tree, read func(tree) (T, error)) (T, error) {
	if payload == nil {
		var zero T
		return zero, malformed("missing payload")
	}
	return read(*payload)
}

func readVariants(t tree) (map[uint32]format.Named[format.VariantFormat], error) {
	if t.kind != mapTree {
		return nil, malformed("expected a map of variants, got %s", t.describe())
	}
	variants := make(map[uint32]format.Named[format.VariantFormat], len(t.keys))
	for i, key := range t.keys {
		index, err := strconv.ParseUint(key.text(), 10, 32)
		if err != nil {
			return nil, malformed("variant index %q", key.text())
		}
		name, payload, err := t.values[i].tag()
		if err != nil {
			return nil, err
		}
		v, err := readPayload(payload, readVariant)
		if err != nil {
			return nil, errors.Wrapf(err, "variant %s", name)
		}
		variants[uint32(index)] = format.Named[format.VariantFormat]{Name: name, Value: v}
	}
	return variants, nil
}

func readVariant(t tree) (format.VariantFormat, error) {
	name, payload, err := t.tag()
	if err != nil {
		return format.VariantFormat{}, err
	}

	switch name {
	case "UNIT":
		return format.UnitVariant(), nil
	case "NEWTYPE":
		f, err := readPayload(payload, readFormat)
		if err != nil {
			return format.VariantFormat{}, err
		}
		return format.VariantFormat{Kind: format.VariantNewType, NewType: &f}, nil
	case "TUPLE":
		fs, err := readPayload(payload, readFormats)
		if err != nil {
			return format.VariantFormat{}, err
		}
		return format.VariantFormat{Kind: format.VariantTuple, Tuple: fs}, nil
	case "STRUCT":
		fields, err := readPayload(payload, readNamed)
		if err != nil {
			return format.VariantFormat{}, err
		}
		return format.StructVariant(fields), nil
	}
	return format.VariantFormat{}, malformed("unknown variant %q", name)
}

func readFormat(t tree) (format.Format, error) {
	name, payload, err := t.tag()
	if err != nil {
		return format.Format{}, err
	}
	kind, ok := format.ParseKind(name)
	if !ok {
		return format.Format{}, malformed("unknown format %q", name)
	}
	if kind.IsPrimitive() {
		return format.Primitive(kind), nil
	}
	if payload == nil {
		return format.Format{}, malformed("%s without payload", name)
	}

	switch kind {
	case format.KindTypeName:
		return format.TypeName(payload.text()), nil
	case format.KindOption, format.KindSeq:
		inner, err := readFormat(*payload)
		if err != nil {
			return format.Format{}, err
		}
		if kind == format.KindOption {
			return format.Option(inner), nil
		}
		return format.Seq(inner), nil
	case format.KindMap:
		k, okK := payload.lookup("KEY")
		v, okV := payload.lookup("VALUE")
		if !okK || !okV {
			return format.Format{}, malformed("MAP needs KEY and VALUE")
		}
		key, err := readFormat(k)
		if err != nil {
			return format.Format{}, err
		}
		value, err := readFormat(v)
		if err != nil {
			return format.Format{}, err
		}
		return format.Map(key, value), nil
	case format.KindTuple:
		elems, err := readFormats(*payload)
		if err != nil {
			return format.Format{}, err
		}
		return format.Tuple(elems...), nil
	case format.KindTupleArray:
		c, okC := payload.lookup("CONTENT")
		s, okS := payload.lookup("SIZE")
		if !okC || !okS {
			return format.Format{}, malformed("TUPLEARRAY needs CONTENT and SIZE")
		}
		content, err := readFormat(c)
		if err != nil {
			return format.Format{}, err
		}
		size, err := strconv.ParseUint(s.text(), 10, 64)
		if err != nil {
			return format.Format{}, malformed("TUPLEARRAY size %q", s.text())
		}
		return format.TupleArray(content, size), nil
	}
	return format.Format{}, malformed("unknown format %q", name)
}

func readFormats(t tree) ([]format.Format, error) {
	if t.kind != seqTree {
		return nil, malformed("expected a sequence, got %s", t.describe())
	}
	out := make([]format.Format, 0, len(t.values))
	for _, item := range t.values {
		f, err := readFormat(item)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func readNamed(t tree) ([]format.Named[format.Format], error) {
	if t.kind != seqTree {
		return nil, malformed("expected a sequence of fields, got %s", t.describe())
	}
	out := make([]format.Named[format.Format], 0, len(t.values))
	for _, item := range t.values {
		name, payload, err := item.tag()
		if err != nil {
			return nil, err
		}
		f, err := readPayload(payload, readFormat)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", name)
		}
		out = append(out, format.Named[format.Format]{Name: name, Value: f})
	}
	return out, nil
}
