package compiler

import (
	"go.uber.org/zap"

	"babyduck/internal/bytecode"
	"babyduck/internal/compileerr"
	"babyduck/internal/parser"
)

// translateProgram is the Program Translator (spec §4.7): it orchestrates
// global variable allocation, function emission, main-entry backpatching,
// and program termination.
func (c *Compiler) translateProgram(ast *parser.Program) (*bytecode.Program, error) {
	// 1. Reserve quad 0 as MAIN_START, backpatched once main's start
	// index is known.
	mainStartIdx := c.prog.Emit(bytecode.Quadruple{Op: bytecode.MainStart, Dest: bytecode.NoAddr})

	// 2. Allocate all global variables.
	for _, decl := range ast.Globals {
		for _, name := range decl.Names {
			addr, err := c.mm.AllocGlobal(name, decl.Type)
			if err != nil {
				return nil, compileerr.NewMemoryError("%s", err)
			}
			if _, err := c.st.DeclareGlobal(name, decl.Type, addr); err != nil {
				return nil, compileerr.NewDeclarationError("%s", err)
			}
		}
	}

	// 3. Compile each procedure in source order.
	for _, fn := range ast.Funcs {
		if err := c.translateFunc(fn); err != nil {
			return nil, err
		}
	}

	// 4. Backpatch MAIN_START to the current index.
	c.prog.Patch(mainStartIdx, bytecode.Addr(c.prog.Next()))
	c.log.Debug("main entry", zap.Int("quad", c.prog.Next()))

	// 5. Translate main (spec §4.7 note 5 / §9: main has no local scope
	// of its own; its declarations were already folded into globals by
	// the parser producing no separate var-decl list for main, so here
	// we just reset temp numbering for a clean frame before translating).
	c.mm.ResetLocal()
	if err := c.translateStmts(ast.Main); err != nil {
		return nil, err
	}

	// 6. Halt.
	c.prog.Emit(bytecode.Quadruple{Op: bytecode.EndProgram})

	return c.prog, nil
}

func (c *Compiler) translateFunc(fn parser.FuncDecl) error {
	rec, err := c.fd.Declare(fn.Name)
	if err != nil {
		return compileerr.NewDeclarationError("%s", err)
	}

	c.prog.Emit(bytecode.Quadruple{Op: bytecode.Func, Arg1Name: fn.Name})
	startQuad := c.prog.Next()

	c.st.EnterLocal()
	c.mm.ResetLocal()

	for _, p := range fn.Params {
		addr, err := c.mm.AllocParam(p.Name, p.Type)
		if err != nil {
			return compileerr.NewMemoryError("%s", err)
		}
		if _, err := c.st.DeclareParam(p.Name, p.Type, addr); err != nil {
			return compileerr.NewDeclarationError("%s", err)
		}
		rec.AddParam(p.Name, p.Type, addr)
	}

	for _, decl := range fn.Locals {
		for _, name := range decl.Names {
			addr, err := c.mm.AllocLocal(name, decl.Type)
			if err != nil {
				return compileerr.NewMemoryError("%s", err)
			}
			if _, err := c.st.DeclareLocal(name, decl.Type, addr); err != nil {
				return compileerr.NewDeclarationError("%s", err)
			}
			rec.AddLocal(name, decl.Type, addr)
		}
	}

	if err := c.translateStmts(fn.Body); err != nil {
		return err
	}

	c.prog.Emit(bytecode.Quadruple{Op: bytecode.EndFunc, Arg1Name: fn.Name})
	rec.StartQuad = startQuad
	rec.EndQuad = c.prog.Next() - 1

	c.st.ExitLocal()
	return nil
}
