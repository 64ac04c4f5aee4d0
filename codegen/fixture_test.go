package codegen

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/cruxgen/rustdoc"
)

// fixture builds rustdoc crates by hand. Local items live in crate 0,
// external ones (traits, std types) in crate 1 and only have a path summary.
type fixture struct {
	crate *rustdoc.Crate
	next  int
}

func newFixture() *fixture {
	f := &fixture{crate: &rustdoc.Crate{
		Root:          "0",
		Index:         map[rustdoc.ID]rustdoc.Item{},
		Paths:         map[rustdoc.ID]rustdoc.ItemSummary{},
		FormatVersion: 39,
	}}
	f.item("counter", nil, rustdoc.ItemEnum{Kind: rustdoc.KindModule}, "counter")
	return f
}

func (f *fixture) id() rustdoc.ID {
	id := rustdoc.ID(strconv.Itoa(f.next))
	f.next++
	return id
}

// item adds a local item. A non-empty path also records a summary.
func (f *fixture) item(name string, attrs []string, inner rustdoc.ItemEnum, path ...string) rustdoc.ID {
	id := f.id()
	item := rustdoc.Item{ID: id, Attrs: attrs, Inner: inner}
	if name != "" {
		item.Name = &name
	}
	f.crate.Index[id] = item
	if len(path) > 0 {
		f.crate.Paths[id] = rustdoc.ItemSummary{Path: path, Kind: string(inner.Kind)}
	}
	return id
}

func (f *fixture) external(kind string, path ...string) rustdoc.ID {
	id := f.id()
	f.crate.Paths[id] = rustdoc.ItemSummary{CrateID: 1, Path: path, Kind: kind}
	return id
}

func (f *fixture) field(name string, t rustdoc.Type, attrs ...string) rustdoc.ID {
	return f.item(name, attrs, rustdoc.ItemEnum{Kind: rustdoc.KindStructField, StructField: &t})
}

func (f *fixture) unitStruct(path []string, attrs ...string) rustdoc.ID {
	return f.structOf(path, attrs, rustdoc.StructKind{Shape: rustdoc.ShapeUnit})
}

func (f *fixture) plainStruct(path []string, attrs []string, fields ...rustdoc.ID) rustdoc.ID {
	return f.structOf(path, attrs, rustdoc.StructKind{Shape: rustdoc.ShapePlain, Fields: fields})
}

func (f *fixture) tupleStruct(path []string, attrs []string, fields ...rustdoc.ID) rustdoc.ID {
	return f.structOf(path, attrs, rustdoc.StructKind{Shape: rustdoc.ShapeTuple, Tuple: ptrs(fields)})
}

func (f *fixture) structOf(path []string, attrs []string, kind rustdoc.StructKind) rustdoc.ID {
	return f.item(path[len(path)-1], attrs, rustdoc.ItemEnum{
		Kind:   rustdoc.KindStruct,
		Struct: &rustdoc.Struct{Kind: kind},
	}, path...)
}

func (f *fixture) enum(path []string, attrs []string, variants ...rustdoc.ID) rustdoc.ID {
	return f.item(path[len(path)-1], attrs, rustdoc.ItemEnum{
		Kind: rustdoc.KindEnum,
		Enum: &rustdoc.Enum{Variants: variants},
	}, path...)
}

func (f *fixture) unitVariant(name string, attrs ...string) rustdoc.ID {
	return f.variant(name, attrs, rustdoc.StructKind{Shape: rustdoc.ShapeUnit})
}

func (f *fixture) tupleVariant(name string, attrs []string, fields ...rustdoc.ID) rustdoc.ID {
	return f.variant(name, attrs, rustdoc.StructKind{Shape: rustdoc.ShapeTuple, Tuple: ptrs(fields)})
}

func (f *fixture) structVariant(name string, attrs []string, fields ...rustdoc.ID) rustdoc.ID {
	return f.variant(name, attrs, rustdoc.StructKind{Shape: rustdoc.ShapeStruct, Fields: fields})
}

func (f *fixture) variant(name string, attrs []string, kind rustdoc.StructKind) rustdoc.ID {
	return f.item(name, attrs, rustdoc.ItemEnum{
		Kind:    rustdoc.KindVariant,
		Variant: &rustdoc.Variant{Kind: kind},
	})
}

func (f *fixture) assocType(name string, target rustdoc.Type) rustdoc.ID {
	return f.item(name, nil, rustdoc.ItemEnum{
		Kind:      rustdoc.KindAssocType,
		AssocType: &rustdoc.AssocType{Type: &target},
	})
}

func (f *fixture) impl(trait rustdoc.ID, traitName string, target rustdoc.ID, items ...rustdoc.ID) rustdoc.ID {
	return f.item("", nil, rustdoc.ItemEnum{
		Kind: rustdoc.KindImpl,
		Impl: &rustdoc.Impl{
			Trait: &rustdoc.Path{Name: traitName, ID: trait},
			For:   resolved("", target),
			Items: items,
		},
	})
}

func (f *fixture) index() *rustdoc.Index {
	return rustdoc.NewIndex(f.crate)
}

func (f *fixture) key(id rustdoc.ID) rustdoc.Key {
	if item, ok := f.crate.Index[id]; ok {
		return rustdoc.Key{Crate: item.CrateID, ID: id}
	}
	return rustdoc.Key{Crate: f.crate.Paths[id].CrateID, ID: id}
}

func (f *fixture) node(t *testing.T, id rustdoc.ID) ItemNode {
	t.Helper()
	n, ok := f.index().Lookup(id)
	require.True(t, ok, "no node %s", id)
	return ItemNode{n}
}

func ptrs(ids []rustdoc.ID) []*rustdoc.ID {
	out := make([]*rustdoc.ID, len(ids))
	for i := range ids {
		out[i] = &ids[i]
	}
	return out
}

func resolved(name string, id rustdoc.ID, args ...rustdoc.Type) rustdoc.Type {
	p := &rustdoc.Path{Name: name, ID: id}
	if args != nil {
		p.Args = &rustdoc.GenericArgs{}
		for i := range args {
			p.Args.Args = append(p.Args.Args, rustdoc.GenericArg{Kind: "type", Type: &args[i]})
		}
	}
	return rustdoc.Type{Kind: rustdoc.TypeResolvedPath, Path: p}
}

func prim(name string) rustdoc.Type {
	return rustdoc.Type{Kind: rustdoc.TypePrimitive, Name: name}
}

func tuple(elems ...rustdoc.Type) rustdoc.Type {
	return rustdoc.Type{Kind: rustdoc.TypeTuple, Elems: elems}
}

// counterApp is the shape of a typical Crux app:
//
//	pub struct Counter;                       // impl App, Event = Event, ViewModel = ViewModel
//	pub enum Event { Increment, Set(i32), Tick(i32, bool), Move { x: i32 }, #[serde(skip)] Internal(String) }
//	pub struct ViewModel { count: String, items: Vec<Item>, #[serde(rename = "lastUpdated")] updated: Option<TimeResponse> }
//	pub struct Item { id: u64, #[serde(skip)] cache: String, #[serde(with = "serde_bytes")] body: Vec<u8> }
//	pub struct TimeResponse(pub String);
//	pub enum Effect { Render(Request<RenderOperation>) } // impl Effect
//	pub struct RenderOperation;
//	pub struct Model { secret: String }       // not reachable
type counterApp struct {
	*fixture
	app, event, viewModel, item, timeResponse, effect, renderOp, model rustdoc.ID
	internal, cache                                                    rustdoc.ID
}

func newCounterApp() *counterApp {
	f := newFixture()
	c := &counterApp{fixture: f}

	appTrait := f.external("trait", "crux_core", "App")
	effectTrait := f.external("trait", "crux_core", "Effect")
	str := f.external("struct", "alloc", "string", "String")
	vec := f.external("struct", "alloc", "vec", "Vec")
	option := f.external("enum", "core", "option", "Option")
	request := f.external("struct", "crux_core", "Request")

	mod := func(name string) []string { return []string{"counter", "app", name} }

	c.timeResponse = f.tupleStruct(mod("TimeResponse"), nil, f.field("0", resolved("String", str)))

	c.cache = f.field("cache", resolved("String", str), "#[serde(skip)]")
	c.item = f.plainStruct(mod("Item"), nil,
		f.field("id", prim("u64")),
		c.cache,
		f.field("body", resolved("Vec", vec, prim("u8")), `#[serde(with = "serde_bytes")]`),
	)

	c.viewModel = f.plainStruct(mod("ViewModel"), nil,
		f.field("count", resolved("String", str)),
		f.field("items", resolved("Vec", vec, resolved("Item", c.item))),
		f.field("updated", resolved("Option", option, resolved("TimeResponse", c.timeResponse)), `#[serde(rename = "lastUpdated")]`),
	)

	c.internal = f.tupleVariant("Internal", []string{"#[serde(skip)]"}, f.field("0", resolved("String", str)))
	c.event = f.enum(mod("Event"), nil,
		f.unitVariant("Increment"),
		f.tupleVariant("Set", nil, f.field("0", prim("i32"))),
		f.tupleVariant("Tick", nil, f.field("0", prim("i32")), f.field("1", prim("bool"))),
		f.structVariant("Move", nil, f.field("x", prim("i32"))),
		c.internal,
	)

	c.app = f.unitStruct(mod("Counter"))
	f.impl(appTrait, "App", c.app,
		f.assocType("Event", resolved("Event", c.event)),
		f.assocType("ViewModel", resolved("ViewModel", c.viewModel)),
		f.assocType("Capabilities", resolved("Capabilities", f.external("struct", "counter", "app", "Capabilities"))),
	)

	c.renderOp = f.unitStruct(mod("RenderOperation"))
	c.effect = f.enum(mod("Effect"), nil,
		f.tupleVariant("Render", nil, f.field("0", resolved("crux_core::Request", request, resolved("RenderOperation", c.renderOp)))),
	)
	f.impl(effectTrait, "Effect", c.effect)

	c.model = f.plainStruct(mod("Model"), nil, f.field("secret", resolved("String", str)))
	return c
}
