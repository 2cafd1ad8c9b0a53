// Package compiler implements the Expression Translator (XT), Statement
// Translator (SXT), and Program Translator (PT) of spec §4.5-§4.7: a
// single-pass translator from the syntax tree to a quadruple vector,
// driven by the semantic cube, function directory, symbol table, and
// memory manager.
package compiler

import (
	"go.uber.org/zap"

	"babyduck/internal/bytecode"
	"babyduck/internal/funcdir"
	"babyduck/internal/memory"
	"babyduck/internal/parser"
	"babyduck/internal/semantic"
	"babyduck/internal/symtab"
	"babyduck/internal/types"
)

// Artifact is the persisted compilation artifact handed to the VM loader
// (spec §6): the quadruple vector, the function directory, the global
// variable address map, and the constant pool snapshot. Nothing about
// compile-time state (the symbol table, semantic cube, memory manager's
// allocation counters) survives past Compile returning; the VM only ever
// sees this bundle.
type Artifact struct {
	Program   *bytecode.Program
	Funcs     *funcdir.Directory
	Globals   map[bytecode.Addr]types.Type
	Constants map[bytecode.Addr]interface{}
}

// Compiler owns the shared compile-time state: the quadruple vector
// under construction, and the memory manager, symbol table, function
// directory, and semantic cube it consults (spec §5: none of these
// components is re-entrant; the driver below owns them single-threaded).
type Compiler struct {
	prog *bytecode.Program
	mm   *memory.Manager
	st   *symtab.Table
	fd   *funcdir.Directory
	cube *semantic.Cube
	log  *zap.Logger
}

// New returns a Compiler ready to translate one Program AST.
func New(log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		prog: bytecode.NewProgram(),
		mm:   memory.New(),
		st:   symtab.New(),
		fd:   funcdir.New(),
		cube: semantic.New(),
		log:  log,
	}
}

// Compile runs the Program Translator over ast and returns the finished
// Artifact, or the first fatal *compileerr.Error encountered (spec §7:
// all errors are fatal, none recovered locally).
func (c *Compiler) Compile(ast *parser.Program) (*Artifact, error) {
	prog, err := c.translateProgram(ast)
	if err != nil {
		return nil, err
	}

	globals := make(map[bytecode.Addr]types.Type, len(c.st.Globals()))
	for _, sym := range c.st.Globals() {
		globals[sym.Addr] = sym.Type
	}

	return &Artifact{
		Program:   prog,
		Funcs:     c.fd,
		Globals:   globals,
		Constants: c.mm.Constants(),
	}, nil
}
