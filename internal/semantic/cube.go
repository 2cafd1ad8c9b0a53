// Package semantic implements the Semantic Cube: a constant table
// mapping (type, op, type) triples to a result type (spec §4.2).
package semantic

import (
	"babyduck/internal/bytecode"
	"babyduck/internal/types"
)

type triple struct {
	left  types.Type
	op    bytecode.OpCode
	right types.Type
}

// Cube resolves (left, op, right) triples to a result type.
type Cube struct {
	table map[triple]types.Type
}

// New builds the fixed semantic cube described in spec §4.2:
// arithmetic +-*/ over int/float (int/int -> int except int/int -> float
// for division; any float operand -> float), relational < > != over any
// numeric pairing -> bool.
func New() *Cube {
	c := &Cube{table: map[triple]types.Type{}}

	numeric := []types.Type{types.Int, types.Float}
	arith := []bytecode.OpCode{bytecode.Add, bytecode.Sub, bytecode.Mul}
	for _, l := range numeric {
		for _, r := range numeric {
			result := types.Int
			if l == types.Float || r == types.Float {
				result = types.Float
			}
			for _, op := range arith {
				c.table[triple{l, op, r}] = result
			}
			c.table[triple{l, bytecode.Div, r}] = types.Float
		}
	}

	rel := []bytecode.OpCode{bytecode.Lt, bytecode.Gt, bytecode.Neq}
	for _, l := range numeric {
		for _, r := range numeric {
			for _, op := range rel {
				c.table[triple{l, op, r}] = types.Bool
			}
		}
	}

	return c
}

// Resolve looks up the result type for (left, op, right). ok is false
// for any triple not listed in the cube; the caller must reject with a
// type error (spec §4.2).
func (c *Cube) Resolve(left types.Type, op bytecode.OpCode, right types.Type) (types.Type, bool) {
	t, ok := c.table[triple{left, op, right}]
	return t, ok
}
