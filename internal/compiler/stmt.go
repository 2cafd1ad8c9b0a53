package compiler

import (
	"go.uber.org/zap"

	"babyduck/internal/bytecode"
	"babyduck/internal/compileerr"
	"babyduck/internal/parser"
	"babyduck/internal/types"
)

// translateStmts translates a block, statement by statement, in order.
func (c *Compiler) translateStmts(stmts []parser.Stmt) error {
	for _, s := range stmts {
		if err := c.translateStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// translateStmt is the Statement Translator (spec §4.6): it dispatches
// on statement kind, driving the Expression Translator for expressions
// and emitting control-flow quadruples with backpatching via a jump
// stack (here, plain local variables recording pending quad indices,
// since each statement's own call frame is exactly the scope spec's
// jump stack J needs — nothing survives across statements, satisfying
// the "jump stack is empty at end of program" testable property).
func (c *Compiler) translateStmt(s parser.Stmt) error {
	switch n := s.(type) {
	case *parser.AssignStmt:
		return c.translateAssign(n)
	case *parser.IfStmt:
		return c.translateIf(n)
	case *parser.WhileStmt:
		return c.translateWhile(n)
	case *parser.PrintStmt:
		return c.translatePrint(n)
	case *parser.CallStmt:
		return c.translateCall(n)
	default:
		return compileerr.NewSyntaxError("unsupported statement node %T", s)
	}
}

func (c *Compiler) translateAssign(n *parser.AssignStmt) error {
	sym, ok := c.st.Lookup(n.Name)
	if !ok {
		return compileerr.NewDeclarationError("undeclared variable %q", n.Name)
	}

	valAddr, valType, err := c.translateExpr(n.Value)
	if err != nil {
		return err
	}

	if valType != sym.Type {
		// The sole widening exception (spec §4.6, §9 Open Question): int -> float.
		if !(sym.Type == types.Float && valType == types.Int) {
			return compileerr.NewTypeError("cannot assign %s value to %s variable %q", valType, sym.Type, n.Name)
		}
	}

	sym.MarkInitialized()
	c.prog.Emit(bytecode.Quadruple{Op: bytecode.Assign, Arg1: valAddr, Arg2: bytecode.NoAddr, Dest: sym.Addr})
	return nil
}

func (c *Compiler) translateIf(n *parser.IfStmt) error {
	condAddr, condType, err := c.translateExpr(n.Cond)
	if err != nil {
		return err
	}
	if condType != types.Bool {
		return compileerr.NewTypeError("if condition must be bool, got %s", condType)
	}

	gotoFIdx := c.prog.Emit(bytecode.Quadruple{Op: bytecode.GotoF, Arg1: condAddr, Arg2: bytecode.NoAddr, Dest: bytecode.NoAddr})

	if err := c.translateStmts(n.Then); err != nil {
		return err
	}

	if n.Else != nil {
		gotoIdx := c.prog.Emit(bytecode.Quadruple{Op: bytecode.Goto, Arg1: bytecode.NoAddr, Arg2: bytecode.NoAddr, Dest: bytecode.NoAddr})
		c.prog.Patch(gotoFIdx, bytecode.Addr(c.prog.Next()))

		if err := c.translateStmts(n.Else); err != nil {
			return err
		}
		c.prog.Patch(gotoIdx, bytecode.Addr(c.prog.Next()))
	} else {
		c.prog.Patch(gotoFIdx, bytecode.Addr(c.prog.Next()))
	}

	return nil
}

func (c *Compiler) translateWhile(n *parser.WhileStmt) error {
	loopStart := c.prog.Next()

	condAddr, condType, err := c.translateExpr(n.Cond)
	if err != nil {
		return err
	}
	if condType != types.Bool {
		return compileerr.NewTypeError("while condition must be bool, got %s", condType)
	}

	gotoFIdx := c.prog.Emit(bytecode.Quadruple{Op: bytecode.GotoF, Arg1: condAddr, Arg2: bytecode.NoAddr, Dest: bytecode.NoAddr})

	if err := c.translateStmts(n.Body); err != nil {
		return err
	}

	c.prog.Emit(bytecode.Quadruple{Op: bytecode.Goto, Arg1: bytecode.NoAddr, Arg2: bytecode.NoAddr, Dest: bytecode.Addr(loopStart)})
	c.prog.Patch(gotoFIdx, bytecode.Addr(c.prog.Next()))

	return nil
}

// translatePrint emits one PRINT quad per item. Every item, across every
// PRINT statement in the whole program, is followed by a single space
// (spec §4.6, matching the original's `print(value, end=' ')`); the VM
// emits the program's sole trailing newline once, after ENDPROGRAM.
func (c *Compiler) translatePrint(n *parser.PrintStmt) error {
	for _, item := range n.Items {
		if item.IsStr {
			c.prog.Emit(bytecode.Quadruple{
				Op:            bytecode.Print,
				Arg1:          bytecode.NoAddr,
				Arg2:          bytecode.NoAddr,
				Dest:          bytecode.NoAddr,
				Arg1Name:      item.String,
				IsStringPrint: true,
			})
			continue
		}
		addr, _, err := c.translateExpr(item.Expr)
		if err != nil {
			return err
		}
		c.prog.Emit(bytecode.Quadruple{Op: bytecode.Print, Arg1: bytecode.NoAddr, Arg2: bytecode.NoAddr, Dest: addr})
	}
	return nil
}

func (c *Compiler) translateCall(n *parser.CallStmt) error {
	rec, ok := c.fd.Lookup(n.Name)
	if !ok {
		return compileerr.NewDeclarationError("undeclared function %q", n.Name)
	}
	if len(n.Args) != len(rec.Params) {
		return compileerr.NewArityError("function %q expects %d argument(s), got %d", n.Name, len(rec.Params), len(n.Args))
	}

	c.prog.Emit(bytecode.Quadruple{Op: bytecode.Era, Arg1Name: n.Name})
	c.log.Debug("call", zap.String("function", n.Name))

	for i, arg := range n.Args {
		argAddr, argType, err := c.translateExpr(arg)
		if err != nil {
			return err
		}
		param := rec.Params[i]
		if argType != param.Type && !(param.Type == types.Float && argType == types.Int) {
			return compileerr.NewTypeError("argument %d to %q: expected %s, got %s", i+1, n.Name, param.Type, argType)
		}
		c.prog.Emit(bytecode.Quadruple{Op: bytecode.Param, Arg1: argAddr, Arg2: bytecode.NoAddr, Dest: param.Addr})
	}

	c.prog.Emit(bytecode.Quadruple{Op: bytecode.Gosub, Arg1Name: n.Name})
	return nil
}
