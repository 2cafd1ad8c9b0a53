// Package bytecode defines the quadruple intermediate representation
// emitted by the compiler and consumed by the virtual machine.
package bytecode

import "fmt"

// OpCode is the closed set of quadruple operations (spec §6).
type OpCode int

const (
	MainStart OpCode = iota
	Func
	EndFunc
	Era
	Param
	Gosub
	Assign
	Add
	Sub
	Mul
	Div
	Lt
	Gt
	Neq
	Goto
	GotoF
	Print
	EndProgram
)

func (op OpCode) String() string {
	switch op {
	case MainStart:
		return "MAIN_START"
	case Func:
		return "FUNC"
	case EndFunc:
		return "ENDFUNC"
	case Era:
		return "ERA"
	case Param:
		return "PARAM"
	case Gosub:
		return "GOSUB"
	case Assign:
		return "="
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Neq:
		return "!="
	case Goto:
		return "GOTO"
	case GotoF:
		return "GOTOF"
	case Print:
		return "PRINT"
	case EndProgram:
		return "ENDPROGRAM"
	default:
		return fmt.Sprintf("OP(%d)", int(op))
	}
}

// IsArithmeticOrRelational reports whether op is one of the binary
// operators the semantic cube resolves (+ - * / < > !=).
func (op OpCode) IsArithmeticOrRelational() bool {
	switch op {
	case Add, Sub, Mul, Div, Lt, Gt, Neq:
		return true
	default:
		return false
	}
}

// Addr is a virtual address: a non-negative integer into one of the
// fixed memory segments, or NoAddr when the field does not apply.
type Addr int

// NoAddr is the null marker for a quadruple field that carries no address.
const NoAddr Addr = -1

// Quadruple is the 4-field IR instruction: operation, two operands, a
// destination. arg1/arg2/dest are addresses except where op dictates a
// different meaning (FUNC/ERA/GOSUB/ENDFUNC carry a function name in
// Arg1Name; PRINT of a string literal carries the literal in Arg1Name;
// jump ops carry a quadruple index in Dest).
type Quadruple struct {
	Op       OpCode
	Arg1     Addr
	Arg2     Addr
	Dest     Addr
	Arg1Name      string // function name (FUNC/ERA/GOSUB/ENDFUNC) or string literal (PRINT)
	IsStringPrint bool
}

// Program is the flat quadruple vector produced by the compiler and the
// sole artifact the virtual machine needs to run.
type Program struct {
	Quads []Quadruple
}

// NewProgram returns an empty quadruple vector.
func NewProgram() *Program {
	return &Program{Quads: []Quadruple{}}
}

// Emit appends q and returns its index.
func (p *Program) Emit(q Quadruple) int {
	p.Quads = append(p.Quads, q)
	return len(p.Quads) - 1
}

// Next is the index the next Emit call will assign.
func (p *Program) Next() int {
	return len(p.Quads)
}

// Patch rewrites the Dest field of the quadruple at idx. Used for
// backpatching GOTO/GOTOF/MAIN_START targets once known.
func (p *Program) Patch(idx int, dest Addr) {
	p.Quads[idx].Dest = dest
}

func (q Quadruple) String() string {
	fmtAddr := func(a Addr) string {
		if a == NoAddr {
			return "_"
		}
		return fmt.Sprintf("%d", a)
	}
	a1 := fmtAddr(q.Arg1)
	if q.Arg1Name != "" {
		a1 = q.Arg1Name
	}
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, a1, fmtAddr(q.Arg2), fmtAddr(q.Dest))
}
