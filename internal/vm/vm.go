// Package vm implements the quadruple virtual machine: the fetch-execute
// loop that walks the compiler's quadruple vector against segmented
// global/constant memory and a stack of per-call activation frames
// (spec §4.8).
//
// Activation is split in two halves across ERA/PARAM/GOSUB, matching the
// order the compiler emits them in: ERA opens a pending frame for the
// callee without yet making it current, so PARAM's source reads still
// resolve against the caller's still-active frame (its own locals and
// temps), while PARAM's writes land in the pending frame. GOSUB is the
// instant the call actually happens: it saves the caller's frame on a
// frame stack, installs the pending frame as current, zero-initializes
// any declared local of the callee that wasn't bound by a PARAM, and
// jumps. ENDFUNC reverses exactly that: pop the return address, pop the
// saved frame back into current. Because each call gets a genuinely new
// Frame and the caller's is preserved underneath, recursive calls work
// the same as any other call (spec §9's redesign over the single flat
// local-memory reset of the original).
package vm

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"babyduck/internal/bytecode"
	"babyduck/internal/compileerr"
	"babyduck/internal/funcdir"
	"babyduck/internal/memory"
	"babyduck/internal/types"
)

// VM owns the full run-time state of one program execution. It is built
// once from a compiled Artifact and run to completion or fatal error; it
// is not reusable across programs.
type VM struct {
	prog *bytecode.Program
	fd   *funcdir.Directory

	global   map[bytecode.Addr]Value
	constant map[bytecode.Addr]Value

	current     *Frame
	pending     *Frame
	savedFrames []*Frame
	callStack   []int

	pc int

	out   io.Writer
	log   *zap.Logger
	trace bool
}

// New builds a VM ready to run prog. globals maps every declared global
// variable's address to its type, used to pre-zero global memory;
// constants is the constant pool snapshot (spec §6). out receives PRINT
// output; a nil out discards it. trace, when true, logs every executed
// quadruple at debug level (wired to the CLI's -trace flag).
func New(prog *bytecode.Program, fd *funcdir.Directory, globals map[bytecode.Addr]types.Type, constants map[bytecode.Addr]interface{}, out io.Writer, log *zap.Logger, trace bool) *VM {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}

	global := make(map[bytecode.Addr]Value, len(globals))
	for addr, t := range globals {
		global[addr] = zeroValue(t)
	}
	constant := make(map[bytecode.Addr]Value, len(constants))
	for addr, v := range constants {
		constant[addr] = v
	}

	return &VM{
		prog:     prog,
		fd:       fd,
		global:   global,
		constant: constant,
		current:  newFrame(),
		out:      out,
		log:      log,
		trace:    trace,
	}
}

// Run executes the quadruple vector from MAIN_START to ENDPROGRAM,
// returning the first fatal *compileerr.Error encountered (spec §7:
// division by zero and any unresolved address are runtime faults).
func (vm *VM) Run() error {
	quads := vm.prog.Quads
	for {
		if vm.pc < 0 || vm.pc >= len(quads) {
			return compileerr.NewRuntimeError("program counter %d out of range", vm.pc)
		}
		q := quads[vm.pc]
		if vm.trace {
			vm.log.Debug("exec", zap.Int("pc", vm.pc), zap.String("quad", q.String()))
		}

		switch q.Op {
		case bytecode.MainStart:
			vm.pc = int(q.Dest)

		case bytecode.Func:
			vm.pc++

		case bytecode.Era:
			vm.pending = newFrame()
			vm.pc++

		case bytecode.Param:
			v, err := vm.read(q.Arg1)
			if err != nil {
				return err
			}
			if vm.pending == nil {
				return compileerr.NewRuntimeError("PARAM outside of a pending call")
			}
			vm.pending.Local[q.Dest] = v
			vm.pc++

		case bytecode.Gosub:
			if err := vm.call(q.Arg1Name); err != nil {
				return err
			}

		case bytecode.EndFunc:
			if err := vm.ret(); err != nil {
				return err
			}

		case bytecode.Assign:
			v, err := vm.read(q.Arg1)
			if err != nil {
				return err
			}
			if err := vm.write(q.Dest, v); err != nil {
				return err
			}
			vm.pc++

		case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Lt, bytecode.Gt, bytecode.Neq:
			if err := vm.execBinary(q); err != nil {
				return err
			}
			vm.pc++

		case bytecode.Goto:
			vm.pc = int(q.Dest)

		case bytecode.GotoF:
			cond, err := vm.read(q.Arg1)
			if err != nil {
				return err
			}
			b, _ := cond.(bool)
			if !b {
				vm.pc = int(q.Dest)
			} else {
				vm.pc++
			}

		case bytecode.Print:
			if err := vm.execPrint(q); err != nil {
				return err
			}
			vm.pc++

		case bytecode.EndProgram:
			fmt.Fprintln(vm.out)
			return nil

		default:
			return compileerr.NewRuntimeError("unknown opcode %s", q.Op)
		}
	}
}

// call performs the GOSUB half of activation: zero-initialize any
// declared local the call's PARAMs didn't already bind, push the
// caller's frame and return address, install the pending frame, and
// jump to the callee's first quad (spec §4.8, §9).
func (vm *VM) call(name string) error {
	rec, ok := vm.fd.Lookup(name)
	if !ok {
		return compileerr.NewRuntimeError("call to undeclared function %q", name)
	}
	if vm.pending == nil {
		return compileerr.NewRuntimeError("GOSUB %q without a matching ERA", name)
	}
	for _, local := range rec.Locals {
		if _, bound := vm.pending.Local[local.Addr]; !bound {
			vm.pending.Local[local.Addr] = zeroValue(local.Type)
		}
	}

	vm.callStack = append(vm.callStack, vm.pc+1)
	vm.savedFrames = append(vm.savedFrames, vm.current)
	vm.current = vm.pending
	vm.pending = nil
	vm.pc = rec.StartQuad
	return nil
}

// ret performs ENDFUNC: restore the caller's frame and return address.
func (vm *VM) ret() error {
	if len(vm.callStack) == 0 || len(vm.savedFrames) == 0 {
		return compileerr.NewRuntimeError("ENDFUNC with no active call")
	}
	top := len(vm.callStack) - 1
	vm.pc = vm.callStack[top]
	vm.callStack = vm.callStack[:top]

	ftop := len(vm.savedFrames) - 1
	vm.current = vm.savedFrames[ftop]
	vm.savedFrames = vm.savedFrames[:ftop]
	return nil
}

// read resolves addr against the segment it falls in: constant pool,
// global memory, or the current activation's local/temp maps (spec
// §4.1). An address with no stored value is a fatal address fault.
func (vm *VM) read(addr bytecode.Addr) (Value, error) {
	seg, err := memory.SegmentOf(addr)
	if err != nil {
		return nil, compileerr.NewRuntimeError("%s", err)
	}
	switch seg {
	case memory.GlobalInt, memory.GlobalFloat:
		if v, ok := vm.global[addr]; ok {
			return v, nil
		}
	case memory.LocalInt, memory.LocalFloat:
		if v, ok := vm.current.Local[addr]; ok {
			return v, nil
		}
	case memory.TempInt, memory.TempFloat, memory.TempBool:
		if v, ok := vm.current.Temp[addr]; ok {
			return v, nil
		}
	case memory.ConstInt, memory.ConstFloat:
		if v, ok := vm.constant[addr]; ok {
			return v, nil
		}
	}
	return nil, compileerr.NewRuntimeError("read of unresolved address %d", addr)
}

// write stores v at addr, widening an int64 into a float64 destination
// (the one allowed implicit conversion, spec §4.6).
func (vm *VM) write(addr bytecode.Addr, v Value) error {
	seg, err := memory.SegmentOf(addr)
	if err != nil {
		return compileerr.NewRuntimeError("%s", err)
	}
	switch seg {
	case memory.GlobalFloat:
		vm.global[addr] = asFloat(v)
	case memory.GlobalInt:
		vm.global[addr] = v
	case memory.LocalFloat:
		vm.current.Local[addr] = asFloat(v)
	case memory.LocalInt:
		vm.current.Local[addr] = v
	case memory.TempFloat:
		vm.current.Temp[addr] = asFloat(v)
	case memory.TempInt, memory.TempBool:
		vm.current.Temp[addr] = v
	default:
		return compileerr.NewRuntimeError("address %d is not writable", addr)
	}
	return nil
}

// execBinary applies an arithmetic or relational opcode, following the
// same int/float promotion the semantic cube decided at compile time:
// int-int arithmetic stays int, any float operand promotes to float,
// division always produces float, relational ops always produce bool.
func (vm *VM) execBinary(q bytecode.Quadruple) error {
	a, err := vm.read(q.Arg1)
	if err != nil {
		return err
	}
	b, err := vm.read(q.Arg2)
	if err != nil {
		return err
	}
	result, err := apply(q.Op, a, b)
	if err != nil {
		return err
	}
	return vm.write(q.Dest, result)
}

func apply(op bytecode.OpCode, a, b Value) (Value, error) {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	bothInt := aIsInt && bIsInt

	switch op {
	case bytecode.Add:
		if bothInt {
			return ai + bi, nil
		}
		return asFloat(a) + asFloat(b), nil
	case bytecode.Sub:
		if bothInt {
			return ai - bi, nil
		}
		return asFloat(a) - asFloat(b), nil
	case bytecode.Mul:
		if bothInt {
			return ai * bi, nil
		}
		return asFloat(a) * asFloat(b), nil
	case bytecode.Div:
		bf := asFloat(b)
		if bf == 0 {
			return nil, compileerr.NewRuntimeError("division by zero")
		}
		return asFloat(a) / bf, nil
	case bytecode.Lt, bytecode.Gt, bytecode.Neq:
		if bothInt {
			switch op {
			case bytecode.Lt:
				return ai < bi, nil
			case bytecode.Gt:
				return ai > bi, nil
			default:
				return ai != bi, nil
			}
		}
		af, bf := asFloat(a), asFloat(b)
		switch op {
		case bytecode.Lt:
			return af < bf, nil
		case bytecode.Gt:
			return af > bf, nil
		default:
			return af != bf, nil
		}
	default:
		return nil, compileerr.NewRuntimeError("unsupported binary opcode %s", op)
	}
}

// execPrint writes one PRINT item (string literal or value) followed by a
// single space, matching the original's `print(value, end=' ')` (spec
// §4.6, §8 scenario 3): every item of every PRINT statement in the whole
// program lands on the same line. The VM emits the program's sole
// trailing newline once, after ENDPROGRAM.
func (vm *VM) execPrint(q bytecode.Quadruple) error {
	text := q.Arg1Name
	if !q.IsStringPrint {
		v, err := vm.read(q.Dest)
		if err != nil {
			return err
		}
		text = formatValue(v)
	}
	if _, err := fmt.Fprint(vm.out, text, " "); err != nil {
		return compileerr.NewRuntimeError("%s", err)
	}
	return nil
}

func formatValue(v Value) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case bool:
		if n {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
