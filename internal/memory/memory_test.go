package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babyduck/internal/bytecode"
	"babyduck/internal/memory"
	"babyduck/internal/types"
)

func TestAllocGlobalRanges(t *testing.T) {
	m := memory.New()

	ai, err := m.AllocGlobal("a", types.Int)
	require.NoError(t, err)
	assert.Equal(t, bytecode.Addr(1000), ai)

	af, err := m.AllocGlobal("b", types.Float)
	require.NoError(t, err)
	assert.Equal(t, bytecode.Addr(2000), af)

	seg, err := memory.SegmentOf(ai)
	require.NoError(t, err)
	assert.Equal(t, memory.GlobalInt, seg)
}

func TestConstantInterning(t *testing.T) {
	m := memory.New()

	a1, err := m.InternConst(int64(5), types.Int)
	require.NoError(t, err)
	a2, err := m.InternConst(int64(5), types.Int)
	require.NoError(t, err)
	assert.Equal(t, a1, a2, "identical literal value and type must reuse the same address")

	a3, err := m.InternConst(int64(6), types.Int)
	require.NoError(t, err)
	assert.NotEqual(t, a1, a3)

	f1, err := m.InternConst(5.0, types.Float)
	require.NoError(t, err)
	assert.NotEqual(t, a1, f1, "int and float constants never share an address even with equal value")
}

func TestResetLocalClearsTempsAndLocals(t *testing.T) {
	m := memory.New()
	la, err := m.AllocLocal("x", types.Int)
	require.NoError(t, err)
	ta, err := m.NewTemp(types.Int)
	require.NoError(t, err)

	m.ResetLocal()

	_, ok := m.Lookup("x")
	assert.False(t, ok, "local name->address binding must not survive a reset")

	la2, err := m.AllocLocal("y", types.Int)
	require.NoError(t, err)
	assert.Equal(t, la, la2, "local numbering restarts from the segment base")

	ta2, err := m.NewTemp(types.Int)
	require.NoError(t, err)
	assert.Equal(t, ta, ta2, "temp numbering restarts from the segment base")
}

func TestLookupPrefersLocalOverGlobal(t *testing.T) {
	m := memory.New()
	g, err := m.AllocGlobal("n", types.Int)
	require.NoError(t, err)
	l, err := m.AllocLocal("n", types.Int)
	require.NoError(t, err)
	require.NotEqual(t, g, l)

	addr, ok := m.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, l, addr)
}

func TestOverflow(t *testing.T) {
	m := memory.New()
	var err error
	for i := 0; i < 1001; i++ {
		_, err = m.AllocGlobal("v", types.Int)
		if err != nil {
			break
		}
	}
	require.Error(t, err)
	var overflow *memory.OverflowError
	assert.ErrorAs(t, err, &overflow)
	assert.Equal(t, memory.GlobalInt, overflow.Segment)
}

func TestSegmentOfAndTypeOfAgree(t *testing.T) {
	for _, addr := range []bytecode.Addr{1000, 1999, 2000, 2999, 3000, 5000, 7000, 8000, 9999} {
		seg, err := memory.SegmentOf(addr)
		require.NoError(t, err)
		typ, err := memory.TypeOf(addr)
		require.NoError(t, err)
		assert.NotEqual(t, types.Invalid, typ, "segment %s at %d must resolve to a real type", seg, addr)
	}

	_, err := memory.SegmentOf(bytecode.Addr(42))
	assert.Error(t, err, "address outside every segment range is invalid")
}
