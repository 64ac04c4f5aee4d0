package codegen

import (
	"context"
	"slices"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/teranos/cruxgen/datalog"
	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/format"
	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/rustdoc"
	"github.com/teranos/cruxgen/serde"
)

// FormatOptions configures the format program.
type FormatOptions struct {
	Translator *Translator
	Logger     *zap.SugaredLogger
}

// Formats is the outcome of the format program.
type Formats struct {
	// Containers maps serialization names to container formats.
	Containers  map[string]format.ContainerFormat
	Diagnostics []Diagnostic
	Stats       datalog.Stats
}

type (
	indexedFormat  = format.Indexed[format.Format]
	indexedNamed   = format.Indexed[format.Named[format.Format]]
	indexedVariant = format.Indexed[format.Named[format.VariantFormat]]
)

// Format builds a container format for every reachable struct and enum.
//
//	field(x, f)          <- edge(x, f), x.HasField(f)
//	fields(x, fs)        <- field(x, _), fs = x.Fields(collect f)
//	variant(e, v)        <- edge(e, v), e.HasVariant(v)
//	variants(e, vs)      <- variant(e, _), vs = e.Variants(collect v)
//	format(x, f, i, t)   <- field(x, f), fields(x, fs), i = pos(f, fs), t = translate(f)
//	format_named(x, f, i, n, t) <- format(x, f, i, t), n = FieldName(f, x)
//	format_variant(e, v, i, n, w) <- variant(e, v), variants(e, vs), i = pos(v, vs),
//	                       w = Unit | collapse(format(v, ...)) | Struct(format_named(v, ...))
//	container(n, c)      <- aggregate(x), n = x.Name(), c = shape(x, formats of x)
//
// Members whose type has no format are dropped and reported as diagnostics.
// A pointer width other than 32 or 64, or an unknown serde with module,
// aborts the program with an error.
func Format(ctx context.Context, ix *rustdoc.Index, parsed *ParseResult, opts FormatOptions) (*Formats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	translator := opts.Translator
	if translator == nil {
		translator = NewTranslator(0)
	}

	node := func(k rustdoc.Key) ItemNode {
		n, _ := ix.Node(k)
		return ItemNode{n}
	}

	var (
		diags diagnostics
		fatal error
	)
	reject := func(parent, child ItemNode, relation string, err error) {
		if errors.IsFatal(err) {
			if fatal == nil {
				fatal = errors.Wrapf(err, "item %s", child.Key)
			}
			return
		}
		diags.add(parent, child, relation, err)
		name, _ := child.SourceName()
		log.Warnw("Member dropped from registry",
			logger.FieldItem, name,
			logger.FieldItemID, child.Key.String(),
			logger.FieldRelation, relation,
			logger.FieldReason, err.Error(),
		)
	}

	edge := datalog.NewRelation[Pair]("edge")
	for _, p := range parsed.Output {
		edge.Insert(p)
	}

	var (
		aggregate   = datalog.NewRelation[rustdoc.Key]("aggregate")
		structUnit  = datalog.NewRelation[rustdoc.Key]("struct_unit")
		structPlain = datalog.NewRelation[rustdoc.Key]("struct_plain")
		structTuple = datalog.NewRelation[rustdoc.Key]("struct_tuple")
		enum        = datalog.NewRelation[rustdoc.Key]("enum")
		field       = datalog.NewRelation[Pair]("field")
		variant     = datalog.NewRelation[Pair]("variant")

		fields        = datalog.NewKeyed[rustdoc.Key, []ItemNode]("fields")
		variants      = datalog.NewKeyed[rustdoc.Key, []ItemNode]("variants")
		variantPlain  = datalog.NewRelation[Pair]("variant_plain")
		variantTuple  = datalog.NewRelation[Pair]("variant_tuple")
		variantStruct = datalog.NewRelation[Pair]("variant_struct")

		formats       = datalog.NewKeyed[Pair, indexedFormat]("format")
		formatsNamed  = datalog.NewKeyed[Pair, indexedNamed]("format_named")
		formatVariant = datalog.NewKeyed[Pair, indexedVariant]("format_variant")

		container = datalog.NewKeyed[string, format.ContainerFormat]("container")
	)

	prog := datalog.NewProgram("format", log)

	prog.Stratum("shapes", aggregate, structUnit, structPlain, structTuple, enum, field, variant).
		Base("aggregate", func() {
			for _, k := range parsed.Reachable() {
				if n := node(k); n.IsAggregate() && !n.ShouldSkip() {
					aggregate.Insert(k)
				}
			}
		}).
		Base("struct_unit|struct_plain|struct_tuple|enum", func() {
			for _, k := range aggregate.All() {
				n := node(k)
				switch {
				case n.IsStructUnit():
					structUnit.Insert(k)
				case n.IsStructPlain():
					structPlain.Insert(k)
				case n.IsStructTuple():
					structTuple.Insert(k)
				case n.IsEnum():
					enum.Insert(k)
				}
			}
		}).
		Base("field|variant", func() {
			for _, e := range edge.All() {
				parent, child := node(e.Parent), node(e.Child)
				if parent.HasField(child) {
					field.Insert(e)
				}
				if parent.HasVariant(child) {
					variant.Insert(e)
				}
			}
		})

	members := func(rel *datalog.Relation[Pair], into *datalog.Keyed[rustdoc.Key, []ItemNode], order func(ItemNode, []ItemNode) []ItemNode) datalog.Rule {
		return func() {
			groups := datalog.Group(rel, func(p Pair) rustdoc.Key { return p.Parent })
			for _, p := range rel.All() {
				if _, ok := into.Get(p.Parent); ok {
					continue
				}
				candidates := make([]ItemNode, 0, len(groups[p.Parent]))
				for _, c := range groups[p.Parent] {
					candidates = append(candidates, node(c.Child))
				}
				into.Insert(p.Parent, order(node(p.Parent), candidates))
			}
		}
	}

	prog.Stratum("members", fields, variants, variantPlain, variantTuple, variantStruct).
		Base("fields", members(field, fields, ItemNode.Fields)).
		Base("variants", members(variant, variants, ItemNode.Variants)).
		Base("variant_plain|variant_tuple|variant_struct", func() {
			for _, p := range variant.All() {
				v := node(p.Child)
				switch {
				case v.IsPlainVariant():
					variantPlain.Insert(p)
				case v.IsTupleVariant():
					variantTuple.Insert(p)
				case v.IsStructVariant():
					variantStruct.Insert(p)
				}
			}
		})

	position := func(member ItemNode, all []ItemNode) (uint32, bool) {
		i := slices.IndexFunc(all, func(n ItemNode) bool { return n.Key == member.Key })
		if i < 0 {
			return 0, false
		}
		index, err := safecast.Conv[uint32](i)
		if err != nil {
			fatal = errors.Wrapf(err, "position of %s", member.Key)
			return 0, false
		}
		return index, true
	}

	prog.Stratum("formats", formats, formatsNamed).
		Base("format", func() {
			for _, p := range field.All() {
				x, f := node(p.Parent), node(p.Child)
				all, _ := fields.Get(p.Parent)
				index, ok := position(f, all)
				if !ok {
					continue
				}
				value, err := translator.Field(f)
				if err != nil {
					reject(x, f, formats.Name(), err)
					continue
				}
				formats.Insert(p, indexedFormat{Index: index, Value: value})
			}
		}).
		Base("format_named", func() {
			formats.Each(func(p Pair, value indexedFormat) {
				x, f := node(p.Parent), node(p.Child)
				name, ok := f.Name()
				if !ok {
					return
				}
				formatsNamed.Insert(p, indexedNamed{
					Index: value.Index,
					Value: format.Named[format.Format]{
						Name:  serde.FieldName(name, f.Attrs(), x.Attrs()),
						Value: value.Value,
					},
				})
			})
		})

	prog.Stratum("variants", formatVariant).
		Base("format_variant", func() {
			byParent := datalog.GroupKeyed(formats, func(p Pair) rustdoc.Key { return p.Parent })
			namedByParent := datalog.GroupKeyed(formatsNamed, func(p Pair) rustdoc.Key { return p.Parent })

			emit := func(p Pair, value func() format.VariantFormat) {
				e, v := node(p.Parent), node(p.Child)
				name, ok := v.SourceName()
				if !ok {
					return
				}
				all, _ := variants.Get(p.Parent)
				index, ok := position(v, all)
				if !ok {
					return
				}
				formatVariant.Insert(p, indexedVariant{
					Index: index,
					Value: format.Named[format.VariantFormat]{
						Name:  serde.VariantName(name, v.Attrs(), e.Attrs()),
						Value: value(),
					},
				})
			}

			for _, p := range variantPlain.All() {
				emit(p, format.UnitVariant)
			}
			for _, p := range variantTuple.All() {
				emit(p, func() format.VariantFormat {
					return format.TupleVariant(format.SortIndexed(byParent[p.Child]))
				})
			}
			for _, p := range variantStruct.All() {
				emit(p, func() format.VariantFormat {
					return format.StructVariant(format.SortIndexed(namedByParent[p.Child]))
				})
			}
		})

	prog.Stratum("containers", container).
		Base("container", func() {
			byParent := datalog.GroupKeyed(formats, func(p Pair) rustdoc.Key { return p.Parent })
			namedByParent := datalog.GroupKeyed(formatsNamed, func(p Pair) rustdoc.Key { return p.Parent })
			variantsByEnum := datalog.GroupKeyed(formatVariant, func(p Pair) rustdoc.Key { return p.Parent })

			for _, k := range aggregate.All() {
				n := node(k)
				name, ok := n.Name()
				if !ok {
					log.Debugw("Aggregate without a name dropped", logger.FieldItemID, k.String())
					continue
				}

				var c format.ContainerFormat
				switch {
				case structUnit.Contains(k):
					c = format.UnitStruct()
				case structPlain.Contains(k):
					c = format.PlainStruct(format.SortIndexed(namedByParent[k]))
				case structTuple.Contains(k):
					c = format.TupleStruct(format.SortIndexed(byParent[k]))
				case enum.Contains(k):
					vs := make(map[uint32]format.Named[format.VariantFormat], len(variantsByEnum[k]))
					for _, v := range variantsByEnum[k] {
						vs[v.Index] = v.Value
					}
					c = format.Enum(vs)
				default:
					continue
				}

				if !container.Insert(name, c) {
					log.Warnw("Duplicate container name, keeping the first",
						logger.FieldItem, name,
						logger.FieldItemID, k.String(),
					)
				}
			}
		})

	stats, err := prog.Run(ctx)
	if err != nil {
		return nil, err
	}
	if fatal != nil {
		return nil, fatal
	}
	stats.Sizes[edge.Name()] = edge.Len()

	out := &Formats{
		Containers:  make(map[string]format.ContainerFormat, container.Len()),
		Diagnostics: diags.list,
		Stats:       stats,
	}
	container.Each(func(name string, c format.ContainerFormat) {
		out.Containers[name] = c
	})
	return out, nil
}
