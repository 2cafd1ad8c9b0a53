package funcdir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babyduck/internal/funcdir"
	"babyduck/internal/types"
)

func TestDeclareRejectsDuplicate(t *testing.T) {
	fd := funcdir.New()
	_, err := fd.Declare("fib")
	require.NoError(t, err)

	_, err = fd.Declare("fib")
	require.Error(t, err)
	var dup *funcdir.DuplicateError
	assert.ErrorAs(t, err, &dup)
}

func TestAddParamAndLocalPreserveOrder(t *testing.T) {
	fd := funcdir.New()
	rec, err := fd.Declare("step")
	require.NoError(t, err)

	rec.AddParam("k", types.Int, 3000)
	rec.AddParam("limit", types.Int, 3001)
	rec.AddLocal("acc", types.Float, 4000)

	require.Len(t, rec.Params, 2)
	assert.Equal(t, "k", rec.Params[0].Name)
	assert.Equal(t, "limit", rec.Params[1].Name)
	require.Len(t, rec.Locals, 1)
	assert.Equal(t, "acc", rec.Locals[0].Name)
	assert.Equal(t, types.Float, rec.Locals[0].Type)
}

func TestLookupUndeclared(t *testing.T) {
	fd := funcdir.New()
	_, ok := fd.Lookup("missing")
	assert.False(t, ok)
}

func TestNamesPreservesDeclarationOrder(t *testing.T) {
	fd := funcdir.New()
	_, _ = fd.Declare("a")
	_, _ = fd.Declare("b")
	_, _ = fd.Declare("c")
	assert.Equal(t, []string{"a", "b", "c"}, fd.Names())
}
