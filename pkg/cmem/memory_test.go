package cmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

func TestDeclareNumZeroInitializes(t *testing.T) {
	m := New()
	m.NewFrame("main")
	addr := m.DeclareNum(ctype.Int(), "x")
	cell := m.GetAtAddress(addr)
	sc, ok := cell.(ScalarCell)
	require.True(t, ok)
	assert.True(t, sc.Value.IsZero())
}

func TestScopeShadowingAndTeardown(t *testing.T) {
	m := New()
	m.NewFrame("main")
	outer := m.DeclareNum(ctype.Int(), "x")
	m.SetAtAddress(outer, cvalue.Int32(1))

	m.NewScope()
	inner := m.DeclareNum(ctype.Int(), "x")
	m.SetAtAddress(inner, cvalue.Int32(2))
	assert.Equal(t, int64(2), m.ReadScalar("x").AsInt64())
	m.DelScope()

	assert.Equal(t, int64(1), m.ReadScalar("x").AsInt64())
	m.DelFrame()
}

func TestGlobalVisibleAcrossFrames(t *testing.T) {
	m := New()
	m.DeclareConstant("g", cvalue.Int32(42))

	m.NewFrame("f")
	assert.Equal(t, int64(42), m.ReadScalar("g").AsInt64())
	m.DelFrame()
}

func TestFrameLocalsNotVisibleToOtherFrames(t *testing.T) {
	m := New()
	m.NewFrame("f")
	m.DeclareNum(ctype.Int(), "local")
	m.DelFrame()

	m.NewFrame("g")
	_, ok := m.Lookup("local")
	assert.False(t, ok)
	m.DelFrame()
}

func TestStructVarAllocatesPerField(t *testing.T) {
	m := New()
	m.DeclareStruct("Point", []ctype.Field{
		{Name: "x", Type: ctype.Int()},
		{Name: "y", Type: ctype.Int()},
	})
	m.NewFrame("main")
	addr := m.DeclareStructVar(ctype.Struct("Point", nil), "p")

	cell := m.GetAtAddress(addr)
	sc, ok := cell.(StructCell)
	require.True(t, ok)
	assert.Equal(t, "Point", sc.TypeName)
	require.Contains(t, sc.Fields, "x")
	require.Contains(t, sc.Fields, "y")

	xCell := m.GetAtAddress(sc.Fields["x"]).(ScalarCell)
	assert.True(t, xCell.Value.IsZero())
}

func TestNestedStructMaterializesRecursively(t *testing.T) {
	m := New()
	m.DeclareStruct("Inner", []ctype.Field{{Name: "v", Type: ctype.Int()}})
	m.DeclareStruct("Outer", []ctype.Field{{Name: "in", Type: ctype.Struct("Inner", nil)}})
	m.NewFrame("main")
	addr := m.DeclareStructVar(ctype.Struct("Outer", nil), "o")

	outer := m.GetAtAddress(addr).(StructCell)
	inner := m.GetAtAddress(outer.Fields["in"]).(StructCell)
	assert.Equal(t, "Inner", inner.TypeName)
}

func TestCopyStructCopiesFieldValues(t *testing.T) {
	m := New()
	m.DeclareStruct("Point", []ctype.Field{
		{Name: "x", Type: ctype.Int()},
		{Name: "y", Type: ctype.Int()},
	})
	m.NewFrame("main")
	src := m.DeclareStructVar(ctype.Struct("Point", nil), "a")
	m.SetAtAddress(m.GetAtAddress(src).(StructCell).Fields["x"], cvalue.Int32(3))
	m.SetAtAddress(m.GetAtAddress(src).(StructCell).Fields["y"], cvalue.Int32(4))

	dst := m.DeclareStructVar(ctype.Struct("Point", nil), "b")
	m.CopyStruct(dst, src)

	dstCell := m.GetAtAddress(dst).(StructCell)
	assert.Equal(t, int64(3), m.GetAtAddress(dstCell.Fields["x"]).(ScalarCell).Value.AsInt64())
	assert.Equal(t, int64(4), m.GetAtAddress(dstCell.Fields["y"]).(ScalarCell).Value.AsInt64())

	// Copies are independent: mutating the source afterward must not
	// affect the already-copied destination.
	m.SetAtAddress(m.GetAtAddress(src).(StructCell).Fields["x"], cvalue.Int32(99))
	assert.Equal(t, int64(3), m.GetAtAddress(dstCell.Fields["x"]).(ScalarCell).Value.AsInt64())
}

func TestCopyStructRecursesIntoNestedFields(t *testing.T) {
	m := New()
	m.DeclareStruct("Inner", []ctype.Field{{Name: "v", Type: ctype.Int()}})
	m.DeclareStruct("Outer", []ctype.Field{{Name: "in", Type: ctype.Struct("Inner", nil)}})
	m.NewFrame("main")

	src := m.DeclareStructVar(ctype.Struct("Outer", nil), "a")
	srcInner := m.GetAtAddress(src).(StructCell).Fields["in"]
	m.SetAtAddress(m.GetAtAddress(srcInner).(StructCell).Fields["v"], cvalue.Int32(7))

	dst := m.DeclareStructVar(ctype.Struct("Outer", nil), "b")
	m.CopyStruct(dst, src)

	dstInner := m.GetAtAddress(dst).(StructCell).Fields["in"]
	assert.Equal(t, int64(7), m.GetAtAddress(m.GetAtAddress(dstInner).(StructCell).Fields["v"]).(ScalarCell).Value.AsInt64())
}

func TestMallocAllocatesContiguousRun(t *testing.T) {
	m := New()
	first := m.Malloc(3, ctype.Int())
	for i := 0; i < 3; i++ {
		cell := m.GetAtAddress(first + Address(i))
		sc, ok := cell.(ScalarCell)
		require.True(t, ok)
		assert.True(t, sc.Value.IsZero())
	}
}

func TestGetValueInScopeFaultsOnUndeclared(t *testing.T) {
	m := New()
	m.NewFrame("main")
	assert.Panics(t, func() { m.GetValueInScope("nope") })
}

func TestDelScopeCannotPopFrameRoot(t *testing.T) {
	m := New()
	m.NewFrame("main")
	assert.Panics(t, func() { m.DelScope() })
}

func TestFrameAndScopeDepthTracking(t *testing.T) {
	m := New()
	assert.Equal(t, 0, m.FrameDepth())
	m.NewFrame("main")
	assert.Equal(t, 1, m.FrameDepth())
	assert.Equal(t, 1, m.ScopeDepth())
	m.NewScope()
	assert.Equal(t, 2, m.ScopeDepth())
	m.DelScope()
	m.DelFrame()
	assert.Equal(t, 0, m.FrameDepth())
}
