package compiler

import (
	"go.uber.org/zap"

	"babyduck/internal/bytecode"
	"babyduck/internal/compileerr"
	"babyduck/internal/parser"
	"babyduck/internal/types"
)

// translateExpr is the Expression Translator (spec §4.5). The parser has
// already shaped the expression into a tree whose structure encodes
// operator precedence and left-associativity, so the walk below drives
// the same operand/operator/type-stack discipline spec §4.5 describes
// through recursion instead of three explicit stacks: each recursive
// call plays the role of a reduce step (pop two operands + their types,
// resolve the result type through the semantic cube, emit the
// quadruple, "push" the resulting temp by returning it to the caller).
// Because the tree already carries the correct shape, every pending
// reduction is completed before its recursive call returns, which is
// exactly invariant I5 (operand/operator stacks empty after every
// statement): there is nothing left over once translateExpr returns.
func (c *Compiler) translateExpr(e parser.Expr) (bytecode.Addr, types.Type, error) {
	switch n := e.(type) {
	case *parser.IntLit:
		addr, err := c.mm.InternConst(n.Value, types.Int)
		if err != nil {
			return bytecode.NoAddr, types.Invalid, memErr(err)
		}
		return addr, types.Int, nil

	case *parser.FloatLit:
		addr, err := c.mm.InternConst(n.Value, types.Float)
		if err != nil {
			return bytecode.NoAddr, types.Invalid, memErr(err)
		}
		return addr, types.Float, nil

	case *parser.Ident:
		sym, ok := c.st.Lookup(n.Name)
		if !ok {
			return bytecode.NoAddr, types.Invalid, compileerr.NewDeclarationError("undeclared variable %q", n.Name)
		}
		if !sym.Initialized {
			return bytecode.NoAddr, types.Invalid, compileerr.NewUseBeforeInitError("variable %q used before assignment", n.Name)
		}
		return sym.Addr, sym.Type, nil

	case *parser.Unary:
		// Unary minus lowers to "0 - operand" (spec §4.5); unary plus
		// is a no-op already stripped by the parser.
		operandAddr, operandType, err := c.translateExpr(n.Operand)
		if err != nil {
			return bytecode.NoAddr, types.Invalid, err
		}
		if !n.Negative {
			return operandAddr, operandType, nil
		}
		zeroType := types.Int
		var zeroAddr bytecode.Addr
		if operandType == types.Float {
			zeroType = types.Float
			zeroAddr, err = c.mm.InternConst(0.0, types.Float)
		} else {
			zeroAddr, err = c.mm.InternConst(int64(0), types.Int)
		}
		if err != nil {
			return bytecode.NoAddr, types.Invalid, memErr(err)
		}
		return c.reduce(bytecode.Sub, zeroAddr, zeroType, operandAddr, operandType)

	case *parser.Binary:
		leftAddr, leftType, err := c.translateExpr(n.Left)
		if err != nil {
			return bytecode.NoAddr, types.Invalid, err
		}
		rightAddr, rightType, err := c.translateExpr(n.Right)
		if err != nil {
			return bytecode.NoAddr, types.Invalid, err
		}
		return c.reduce(n.Op, leftAddr, leftType, rightAddr, rightType)

	default:
		return bytecode.NoAddr, types.Invalid, compileerr.NewSyntaxError("unsupported expression node %T", e)
	}
}

// reduce resolves the result type of (leftType, op, rightType) through
// the semantic cube, allocates a temp of that type, and emits the
// binary-op quadruple (spec §4.5 reduce step, invariant I3).
func (c *Compiler) reduce(op bytecode.OpCode, leftAddr bytecode.Addr, leftType types.Type, rightAddr bytecode.Addr, rightType types.Type) (bytecode.Addr, types.Type, error) {
	resultType, ok := c.cube.Resolve(leftType, op, rightType)
	if !ok {
		return bytecode.NoAddr, types.Invalid, compileerr.NewTypeError("invalid operation %s between %s and %s", op, leftType, rightType)
	}
	temp, err := c.mm.NewTemp(resultType)
	if err != nil {
		return bytecode.NoAddr, types.Invalid, memErr(err)
	}
	c.prog.Emit(bytecode.Quadruple{Op: op, Arg1: leftAddr, Arg2: rightAddr, Dest: temp})
	c.log.Debug("emit", zap.String("op", op.String()), zap.Int("arg1", int(leftAddr)), zap.Int("arg2", int(rightAddr)), zap.Int("dest", int(temp)))
	return temp, resultType, nil
}

func memErr(err error) error {
	return compileerr.NewMemoryError("%s", err)
}
