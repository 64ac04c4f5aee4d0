package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTupleStructCollapse(t *testing.T) {
	assert.Equal(t, ContainerUnitStruct, TupleStruct(nil).Kind)

	newtype := TupleStruct([]Format{Primitive(KindI32)})
	require.Equal(t, ContainerNewTypeStruct, newtype.Kind)
	assert.Equal(t, KindI32, newtype.NewType.Kind)

	tuple := TupleStruct([]Format{Primitive(KindI32), Primitive(KindStr)})
	assert.Equal(t, ContainerTupleStruct, tuple.Kind)
	assert.Len(t, tuple.Tuple, 2)
}

func TestTupleVariantCollapse(t *testing.T) {
	assert.Equal(t, VariantUnit, TupleVariant(nil).Kind)
	assert.Equal(t, VariantNewType, TupleVariant([]Format{Primitive(KindBool)}).Kind)
	assert.Equal(t, VariantTuple, TupleVariant([]Format{Primitive(KindBool), Primitive(KindU8)}).Kind)
}

func TestPlainStructWithoutFieldsIsUnit(t *testing.T) {
	assert.True(t, PlainStruct(nil).Equal(UnitStruct()))
	s := PlainStruct([]Named[Format]{{Name: "count", Value: Primitive(KindU64)}})
	assert.Equal(t, ContainerStruct, s.Kind)
	assert.Equal(t, 1, s.Children())
}

func TestSortIndexed(t *testing.T) {
	items := []Indexed[string]{{2, "c"}, {0, "a"}, {1, "b"}}
	assert.Equal(t, []string{"a", "b", "c"}, SortIndexed(items))
	assert.Equal(t, "c", items[0].Value, "input must not be reordered")
	assert.Empty(t, SortIndexed[string](nil))
}

func TestFormatString(t *testing.T) {
	f := Option(Seq(TypeName("Item")))
	assert.Equal(t, "OPTION(SEQ(TYPENAME(Item)))", f.String())
	assert.Equal(t, "TUPLE(I32, BOOL)", Tuple(Primitive(KindI32), Primitive(KindBool)).String())
	assert.Equal(t, "MAP(STR, U8)", Map(Primitive(KindStr), Primitive(KindU8)).String())
	assert.Equal(t, "TUPLEARRAY(U8; 32)", TupleArray(Primitive(KindU8), 32).String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Option(Primitive(KindStr)).Equal(Option(Primitive(KindStr))))
	assert.False(t, Option(Primitive(KindStr)).Equal(Seq(Primitive(KindStr))))
	assert.False(t, TypeName("A").Equal(TypeName("B")))
	assert.True(t, Tuple().Equal(Format{Kind: KindTuple}))

	a := Enum(map[uint32]Named[VariantFormat]{0: {Name: "Reset", Value: UnitVariant()}})
	b := Enum(map[uint32]Named[VariantFormat]{0: {Name: "Reset", Value: UnitVariant()}})
	c := Enum(map[uint32]Named[VariantFormat]{1: {Name: "Reset", Value: UnitVariant()}})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Enum(nil).Equal(Enum(map[uint32]Named[VariantFormat]{})))
}

func TestParseKind(t *testing.T) {
	for k := KindUnit; k <= KindTupleArray; k++ {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("FLOAT")
	assert.False(t, ok)
	assert.True(t, KindBytes.IsPrimitive())
	assert.False(t, KindTypeName.IsPrimitive())
}

func TestVariantIndices(t *testing.T) {
	e := Enum(map[uint32]Named[VariantFormat]{
		2: {Name: "C", Value: UnitVariant()},
		0: {Name: "A", Value: UnitVariant()},
		1: {Name: "B", Value: UnitVariant()},
	})
	assert.Equal(t, []uint32{0, 1, 2}, e.VariantIndices())
}
