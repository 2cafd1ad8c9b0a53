package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"babyduck/internal/bytecode"
	"babyduck/internal/semantic"
	"babyduck/internal/types"
)

func TestResolveArithmetic(t *testing.T) {
	c := semantic.New()

	t.Run("int+int stays int", func(t *testing.T) {
		r, ok := c.Resolve(types.Int, bytecode.Add, types.Int)
		assert.True(t, ok)
		assert.Equal(t, types.Int, r)
	})

	t.Run("any float operand promotes to float", func(t *testing.T) {
		r, ok := c.Resolve(types.Int, bytecode.Mul, types.Float)
		assert.True(t, ok)
		assert.Equal(t, types.Float, r)
	})

	t.Run("division always produces float, even int/int", func(t *testing.T) {
		r, ok := c.Resolve(types.Int, bytecode.Div, types.Int)
		assert.True(t, ok)
		assert.Equal(t, types.Float, r)
	})
}

func TestResolveRelational(t *testing.T) {
	c := semantic.New()
	for _, op := range []bytecode.OpCode{bytecode.Lt, bytecode.Gt, bytecode.Neq} {
		r, ok := c.Resolve(types.Float, op, types.Int)
		assert.True(t, ok)
		assert.Equal(t, types.Bool, r)
	}
}

func TestResolveRejectsUnlistedTriple(t *testing.T) {
	c := semantic.New()
	_, ok := c.Resolve(types.Bool, bytecode.Add, types.Int)
	assert.False(t, ok, "bool never participates in arithmetic")
}
