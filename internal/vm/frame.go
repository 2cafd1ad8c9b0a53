package vm

import "babyduck/internal/bytecode"

// Frame is one procedure activation record: its locals (including bound
// parameters) and its temporaries, keyed by virtual address (spec §4.8).
// A fresh Frame is installed for every call and stacked beneath the
// caller's so recursive calls each get their own storage.
type Frame struct {
	Local map[bytecode.Addr]Value
	Temp  map[bytecode.Addr]Value
}

func newFrame() *Frame {
	return &Frame{Local: map[bytecode.Addr]Value{}, Temp: map[bytecode.Addr]Value{}}
}
