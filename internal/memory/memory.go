// Package memory implements the Memory Manager: a pure allocator of
// virtual addresses over the fixed segments described in spec §3.
package memory

import (
	"fmt"

	"babyduck/internal/bytecode"
	"babyduck/internal/types"
)

// Segment identifies one of the fixed address ranges.
type Segment int

const (
	GlobalInt Segment = iota
	GlobalFloat
	LocalInt
	LocalFloat
	TempInt
	TempFloat
	TempBool
	ConstInt
	ConstFloat
)

type segRange struct {
	base, limit int // [base, limit] inclusive
}

var ranges = map[Segment]segRange{
	GlobalInt:   {1000, 1999},
	GlobalFloat: {2000, 2999},
	LocalInt:    {3000, 3999},
	LocalFloat:  {4000, 4999},
	TempInt:     {5000, 5999},
	TempFloat:   {6000, 6999},
	TempBool:    {7000, 7999},
	ConstInt:    {8000, 8999},
	ConstFloat:  {9000, 9999},
}

func (s Segment) String() string {
	switch s {
	case GlobalInt:
		return "global_int"
	case GlobalFloat:
		return "global_float"
	case LocalInt:
		return "local_int"
	case LocalFloat:
		return "local_float"
	case TempInt:
		return "temp_int"
	case TempFloat:
		return "temp_float"
	case TempBool:
		return "temp_bool"
	case ConstInt:
		return "const_int"
	case ConstFloat:
		return "const_float"
	default:
		return "unknown_segment"
	}
}

// OverflowError reports a segment running out of addresses (spec §7,
// "Memory-exhaustion").
type OverflowError struct {
	Segment Segment
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("out of memory in %s segment", e.Segment)
}

// Manager allocates addresses and interns constants across segments. It
// is not safe for concurrent use; the compiler drives it single-threaded
// (spec §5).
type Manager struct {
	next map[Segment]int

	// name -> address, scoped: global entries persist for the program,
	// local/param entries are cleared by ResetLocal.
	globalAddrs map[string]bytecode.Addr
	localAddrs  map[string]bytecode.Addr

	constInt   map[int64]bytecode.Addr
	constFloat map[float64]bytecode.Addr
}

// New returns a Manager with every segment counter at its base.
func New() *Manager {
	m := &Manager{
		next:        map[Segment]int{},
		globalAddrs: map[string]bytecode.Addr{},
		localAddrs:  map[string]bytecode.Addr{},
		constInt:    map[int64]bytecode.Addr{},
		constFloat:  map[float64]bytecode.Addr{},
	}
	for seg, r := range ranges {
		m.next[seg] = r.base
	}
	return m
}

func (m *Manager) alloc(seg Segment) (bytecode.Addr, error) {
	addr := m.next[seg]
	if addr > ranges[seg].limit {
		return bytecode.NoAddr, &OverflowError{Segment: seg}
	}
	m.next[seg] = addr + 1
	return bytecode.Addr(addr), nil
}

func segFor(base Segment, t types.Type) Segment {
	switch t {
	case types.Int:
		return base
	case types.Float:
		return base + 1 // *Int segments are immediately followed by their *Float twin, see const table above
	default:
		panic(fmt.Sprintf("memory: unsupported variable type %s", t))
	}
}

// AllocGlobal reserves a fresh address for a global variable of type t.
func (m *Manager) AllocGlobal(name string, t types.Type) (bytecode.Addr, error) {
	addr, err := m.alloc(segFor(GlobalInt, t))
	if err != nil {
		return bytecode.NoAddr, err
	}
	m.globalAddrs[name] = addr
	return addr, nil
}

// AllocLocal reserves a fresh address for a local variable of type t.
func (m *Manager) AllocLocal(name string, t types.Type) (bytecode.Addr, error) {
	addr, err := m.alloc(segFor(LocalInt, t))
	if err != nil {
		return bytecode.NoAddr, err
	}
	m.localAddrs[name] = addr
	return addr, nil
}

// AllocParam reserves a fresh local-segment address for a formal
// parameter of type t; params and locals share the local_int/local_float
// segments (spec §3).
func (m *Manager) AllocParam(name string, t types.Type) (bytecode.Addr, error) {
	return m.AllocLocal(name, t)
}

// NewTemp allocates a fresh temporary of type t.
func (m *Manager) NewTemp(t types.Type) (bytecode.Addr, error) {
	var seg Segment
	switch t {
	case types.Int:
		seg = TempInt
	case types.Float:
		seg = TempFloat
	case types.Bool:
		seg = TempBool
	default:
		return bytecode.NoAddr, fmt.Errorf("memory: no temp segment for type %s", t)
	}
	return m.alloc(seg)
}

// InternConst returns the address of the constant pool entry for value
// under type t, allocating one on first sight. Identical literal value
// and type always yield the same address (spec §3).
func (m *Manager) InternConst(value interface{}, t types.Type) (bytecode.Addr, error) {
	switch t {
	case types.Int:
		v := value.(int64)
		if addr, ok := m.constInt[v]; ok {
			return addr, nil
		}
		addr, err := m.alloc(ConstInt)
		if err != nil {
			return bytecode.NoAddr, err
		}
		m.constInt[v] = addr
		return addr, nil
	case types.Float:
		v := value.(float64)
		if addr, ok := m.constFloat[v]; ok {
			return addr, nil
		}
		addr, err := m.alloc(ConstFloat)
		if err != nil {
			return bytecode.NoAddr, err
		}
		m.constFloat[v] = addr
		return addr, nil
	default:
		return bytecode.NoAddr, fmt.Errorf("memory: constants of type %s are not supported", t)
	}
}

// Constants returns the constant pool snapshot (address -> literal value,
// int64 or float64) for the VM loader to populate constant memory at
// load time (spec §6, "constant pool snapshot").
func (m *Manager) Constants() map[bytecode.Addr]interface{} {
	out := make(map[bytecode.Addr]interface{}, len(m.constInt)+len(m.constFloat))
	for v, addr := range m.constInt {
		out[addr] = v
	}
	for v, addr := range m.constFloat {
		out[addr] = v
	}
	return out
}

// Lookup returns the address bound to name, checking locals first, then
// globals, matching the Symbol Table's declared lookup order (spec §4.3).
func (m *Manager) Lookup(name string) (bytecode.Addr, bool) {
	if addr, ok := m.localAddrs[name]; ok {
		return addr, true
	}
	if addr, ok := m.globalAddrs[name]; ok {
		return addr, true
	}
	return bytecode.NoAddr, false
}

// ResetLocal rewinds the local_int/local_float counters and drops the
// local/param name->address map, so each procedure numbers its locals
// from the base of the local segment (spec §4.1).
func (m *Manager) ResetLocal() {
	m.next[LocalInt] = ranges[LocalInt].base
	m.next[LocalFloat] = ranges[LocalFloat].base
	m.next[TempInt] = ranges[TempInt].base
	m.next[TempFloat] = ranges[TempFloat].base
	m.next[TempBool] = ranges[TempBool].base
	m.localAddrs = map[string]bytecode.Addr{}
}

// TypeOf decodes the segment an address falls in and returns the
// corresponding value type (spec §4.1).
func TypeOf(addr bytecode.Addr) (types.Type, error) {
	a := int(addr)
	switch {
	case a >= ranges[GlobalInt].base && a <= ranges[GlobalInt].limit,
		a >= ranges[LocalInt].base && a <= ranges[LocalInt].limit,
		a >= ranges[TempInt].base && a <= ranges[TempInt].limit,
		a >= ranges[ConstInt].base && a <= ranges[ConstInt].limit:
		return types.Int, nil
	case a >= ranges[GlobalFloat].base && a <= ranges[GlobalFloat].limit,
		a >= ranges[LocalFloat].base && a <= ranges[LocalFloat].limit,
		a >= ranges[TempFloat].base && a <= ranges[TempFloat].limit,
		a >= ranges[ConstFloat].base && a <= ranges[ConstFloat].limit:
		return types.Float, nil
	case a >= ranges[TempBool].base && a <= ranges[TempBool].limit:
		return types.Bool, nil
	default:
		return types.Invalid, fmt.Errorf("memory: invalid address %d", a)
	}
}

// SegmentOf returns which segment addr belongs to.
func SegmentOf(addr bytecode.Addr) (Segment, error) {
	a := int(addr)
	for seg, r := range ranges {
		if a >= r.base && a <= r.limit {
			return seg, nil
		}
	}
	return 0, fmt.Errorf("memory: invalid address %d", a)
}
