// Package symtab implements the Symbol Table / Scope Stack: a global
// table plus at most one active local table per procedure (spec §4.3).
package symtab

import (
	"fmt"

	"babyduck/internal/bytecode"
	"babyduck/internal/types"
)

// Scope identifies which tier a symbol belongs to.
type Scope int

const (
	Global Scope = iota
	Local
	Param
)

// Symbol is a variable record (spec §3).
type Symbol struct {
	Name        string
	Type        types.Type
	Addr        bytecode.Addr
	Scope       Scope
	Initialized bool
}

// DuplicateError reports redeclaration within the same tier.
type DuplicateError struct{ Name string }

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("variable %q already declared in this scope", e.Name)
}

// Table holds a global tier and an optional active local tier.
type Table struct {
	global map[string]*Symbol
	local  map[string]*Symbol
}

// New returns an empty table with only the global tier active.
func New() *Table {
	return &Table{global: map[string]*Symbol{}}
}

// EnterLocal installs a fresh, empty local tier, discarding any previous
// one (called once per procedure via the Program Translator).
func (t *Table) EnterLocal() {
	t.local = map[string]*Symbol{}
}

// ExitLocal discards the active local tier.
func (t *Table) ExitLocal() {
	t.local = nil
}

// DeclareGlobal adds a symbol to the global tier. Duplicate names within
// the tier are rejected (spec §4.3).
func (t *Table) DeclareGlobal(name string, typ types.Type, addr bytecode.Addr) (*Symbol, error) {
	if _, ok := t.global[name]; ok {
		return nil, &DuplicateError{Name: name}
	}
	sym := &Symbol{Name: name, Type: typ, Addr: addr, Scope: Global}
	t.global[name] = sym
	return sym, nil
}

// DeclareLocal adds a symbol to the active local tier.
func (t *Table) DeclareLocal(name string, typ types.Type, addr bytecode.Addr) (*Symbol, error) {
	if _, ok := t.local[name]; ok {
		return nil, &DuplicateError{Name: name}
	}
	sym := &Symbol{Name: name, Type: typ, Addr: addr, Scope: Local}
	t.local[name] = sym
	return sym, nil
}

// DeclareParam adds a parameter to the active local tier, already marked
// initialized (spec §3: "initialized is set true on declaration for
// parameters").
func (t *Table) DeclareParam(name string, typ types.Type, addr bytecode.Addr) (*Symbol, error) {
	if _, ok := t.local[name]; ok {
		return nil, &DuplicateError{Name: name}
	}
	sym := &Symbol{Name: name, Type: typ, Addr: addr, Scope: Param, Initialized: true}
	t.local[name] = sym
	return sym, nil
}

// Lookup resolves name, checking the local tier first, then global
// (spec §4.3's declared lookup order). ok is false if undeclared.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	if t.local != nil {
		if sym, ok := t.local[name]; ok {
			return sym, true
		}
	}
	if sym, ok := t.global[name]; ok {
		return sym, true
	}
	return nil, false
}

// MarkInitialized sets sym's initialized flag, called on first
// successful assignment (spec §3).
func (sym *Symbol) MarkInitialized() {
	sym.Initialized = true
}

// Globals returns every symbol declared in the global tier, for the
// loader to pre-size global memory (spec §6, "global variable address
// map").
func (t *Table) Globals() []*Symbol {
	out := make([]*Symbol, 0, len(t.global))
	for _, sym := range t.global {
		out = append(out, sym)
	}
	return out
}
