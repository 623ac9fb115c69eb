// Package cmem implements the Memory model (spec C3): a flat
// address-indexed store plus a stack of frames, each a stack of
// scopes, each a name-to-address map. Grounded directly on spec.md
// §4.2's operation list; informed by the teacher repo's
// pkg/stacking/pkg/simpllocals (the CompCert passes that also reason
// about a stack of named storage slots), generalized here from a
// compile-time slot assignment to a runtime store.
package cmem

import (
	"fmt"

	"github.com/raymyers/cwalk/pkg/ast"
	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

// Address is a stable index into the Memory store.
type Address int

// Cell is a store slot: a scalar value, a struct instance, a
// user-function entry, or a builtin entry. Exactly one concrete type is
// stored at any Address.
type Cell interface{ isCell() }

// ScalarCell holds a Typed Value.
type ScalarCell struct{ Value cvalue.Value }

// StructCell holds a Struct Instance: a mapping from field name to the
// Address of that field's own cell.
type StructCell struct {
	TypeName string
	Fields   map[string]Address
}

// FunctionCell holds a user function's AST definition.
type FunctionCell struct{ Decl *ast.FunctionDecl }

// StringCell holds a string literal's contents in the read-only string
// arena (SPEC_FULL.md Supplemented Features #5: spec.md doesn't specify
// string literals since arrays are out of scope, but printf's
// format-string argument needs them to round-trip through the same
// address-of/dereference machinery as any other pointer).
type StringCell struct{ Value string }

// HostFunc is a host-implemented builtin's callable shape: it receives
// its arguments as Typed Values (each builtin reads the payloads it
// needs via AsInt64/AsFloat64) and the Memory handle, and returns a
// Typed Value that pkg/eval casts to the declared return type (the
// result is ignored if that type is void).
type HostFunc func(args []cvalue.Value, mem *Memory) cvalue.Value

// BuiltinCell holds a host callable decorated with its declared
// return-type tag (spec.md §6). TakesMemory marks the builtins that
// read or write the store (printf, scanf, malloc, free, strcpy,
// strcat). It is informational only: pkg/eval passes the Memory handle
// to every HostFunc regardless of this flag.
type BuiltinCell struct {
	Name        string
	ReturnType  ctype.Type
	Void        bool
	TakesMemory bool
	Fn          HostFunc
}

func (ScalarCell) isCell()   {}
func (StructCell) isCell()   {}
func (FunctionCell) isCell() {}
func (BuiltinCell) isCell()  {}
func (StringCell) isCell()   {}

// Fault is an internal "should-not-happen" error (spec.md §7, error
// kinds 1/2/4): an upstream-prevented condition, a runtime-detectable
// fault, or control-flow misuse. Memory and eval raise these by
// panicking with a *Fault; pkg/eval's Run recovers it at the outermost
// boundary and turns it into a returned error, matching spec.md §7's
// "any fault aborts interpretation and is surfaced to the driver."
type Fault struct{ Msg string }

func (f *Fault) Error() string { return f.Msg }

func fault(format string, args ...interface{}) {
	panic(&Fault{Msg: fmt.Sprintf(format, args...)})
}

// Scope is an ordered name-to-address map for one lexical block.
type Scope struct {
	names map[string]Address
}

func newScope() *Scope { return &Scope{names: make(map[string]Address)} }

// Frame is a call-stack entry: a named stack of Scopes. The bottom
// scope (index 0) is the function's parameter/local root.
type Frame struct {
	Name   string
	scopes []*Scope
}

// Memory is the evaluator's flat store plus call stack and global
// namespace (spec.md §3 Store/Scope/Frame/Global Namespace).
type Memory struct {
	store     map[Address]Cell
	nextAddr  Address
	global    *Scope
	frames    []*Frame
	structDef map[string][]ctype.Field
}

// New creates an empty Memory with only the global namespace populated.
func New() *Memory {
	return &Memory{
		store:     make(map[Address]Cell),
		global:    newScope(),
		structDef: make(map[string][]ctype.Field),
	}
}

func (m *Memory) alloc(c Cell) Address {
	addr := m.nextAddr
	m.nextAddr++
	m.store[addr] = c
	return addr
}

// currentScope returns the innermost scope of the current frame, or
// the global scope if no frame is active (used by the Program preamble
// for global variable declarations).
func (m *Memory) currentScope() *Scope {
	if len(m.frames) == 0 {
		return m.global
	}
	f := m.frames[len(m.frames)-1]
	return f.scopes[len(f.scopes)-1]
}

// ---- declarations ----

// DeclareFun binds name to a user function's AST node in the global
// namespace (spec.md §4.2 declare_fun).
func (m *Memory) DeclareFun(name string, decl *ast.FunctionDecl) {
	m.global.names[name] = m.alloc(FunctionCell{Decl: decl})
}

// DeclareBuiltin binds name to a host callable in the global namespace,
// used by pkg/builtin when a library is #include'd.
func (m *Memory) DeclareBuiltin(name string, entry BuiltinCell) {
	m.global.names[name] = m.alloc(entry)
}

// DeclareConstant binds name to a fixed Typed Value in the global
// namespace (spec.md §4.2 declare_constant), e.g. a library's constant.
func (m *Memory) DeclareConstant(name string, value cvalue.Value) {
	m.global.names[name] = m.alloc(ScalarCell{Value: value})
}

// DeclareNum allocates a fresh scalar cell in the current innermost
// scope, zero-initialized to t, and binds name to it (spec.md §4.2
// declare_num).
func (m *Memory) DeclareNum(t ctype.Type, name string) Address {
	addr := m.alloc(ScalarCell{Value: cvalue.Zero(t)})
	m.currentScope().names[name] = addr
	return addr
}

// DeclareStruct registers name's field schema in the struct
// declaration table (spec.md §4.2 declare_struct).
func (m *Memory) DeclareStruct(name string, fields []ctype.Field) {
	m.structDef[name] = fields
}

// StructFields returns the registered field schema for a struct name.
func (m *Memory) StructFields(name string) ([]ctype.Field, bool) {
	f, ok := m.structDef[name]
	return f, ok
}

// DeclareStructVar materializes a fresh instance of the struct named by
// t.StructName, recursively allocating one cell per field, and binds
// name to the instance in the current scope (spec.md §4.2
// declare_struct_var).
func (m *Memory) DeclareStructVar(t ctype.Type, name string) Address {
	addr := m.newStructInstance(t.StructName)
	m.currentScope().names[name] = addr
	return addr
}

// newStructInstance recursively allocates a cell per field of the
// named struct, materializing nested structs inline.
func (m *Memory) newStructInstance(structName string) Address {
	schema, ok := m.structDef[structName]
	if !ok {
		fault("cmem: undeclared struct type %q", structName)
	}
	fields := make(map[string]Address, len(schema))
	for _, f := range schema {
		var fieldAddr Address
		if f.Type.IsStruct() {
			fieldAddr = m.newStructInstance(f.Type.StructName)
		} else {
			fieldAddr = m.alloc(ScalarCell{Value: cvalue.Zero(f.Type)})
		}
		fields[f.Name] = fieldAddr
	}
	return m.alloc(StructCell{TypeName: structName, Fields: fields})
}

// CopyStruct copies src's field values into dst's cells, recursing into
// nested struct fields (spec.md §4.3: "every parameter is a fresh cell
// initialized from the argument's payload", with no exception for
// struct-typed arguments). dst and src must both address StructCells
// sharing the same field schema, as is guaranteed when dst was just
// materialized via DeclareStructVar from src's own declared type.
func (m *Memory) CopyStruct(dst, src Address) {
	dstCell, ok := m.store[dst].(StructCell)
	if !ok {
		fault("cmem: copy_struct: address %d does not hold a struct", dst)
	}
	srcCell, ok := m.store[src].(StructCell)
	if !ok {
		fault("cmem: copy_struct: address %d does not hold a struct", src)
	}
	for name, srcAddr := range srcCell.Fields {
		dstAddr, ok := dstCell.Fields[name]
		if !ok {
			fault("cmem: copy_struct: destination has no field %q", name)
		}
		switch sc := m.store[srcAddr].(type) {
		case ScalarCell:
			m.SetAtAddress(dstAddr, sc.Value)
		case StructCell:
			m.CopyStruct(dstAddr, srcAddr)
		default:
			fault("cmem: copy_struct: field %q is neither scalar nor struct", name)
		}
	}
}

// ---- frames and scopes ----

// NewFrame pushes a call frame with one root scope (spec.md §4.2
// new_frame).
func (m *Memory) NewFrame(name string) {
	m.frames = append(m.frames, &Frame{Name: name, scopes: []*Scope{newScope()}})
}

// DelFrame pops the current call frame; its scopes and their cells
// become unreachable (spec.md §4.2 del_frame).
func (m *Memory) DelFrame() {
	if len(m.frames) == 0 {
		fault("cmem: del_frame with no active frame")
	}
	m.frames = m.frames[:len(m.frames)-1]
}

// NewScope pushes a lexical scope within the current frame (spec.md
// §4.2 new_scope). Only valid while a frame is active.
func (m *Memory) NewScope() {
	if len(m.frames) == 0 {
		fault("cmem: new_scope with no active frame")
	}
	f := m.frames[len(m.frames)-1]
	f.scopes = append(f.scopes, newScope())
}

// DelScope pops the innermost scope of the current frame; all names it
// bound go out of reach (spec.md §4.2 del_scope).
func (m *Memory) DelScope() {
	if len(m.frames) == 0 {
		fault("cmem: del_scope with no active frame")
	}
	f := m.frames[len(m.frames)-1]
	if len(f.scopes) <= 1 {
		fault("cmem: del_scope would pop the frame's root scope")
	}
	f.scopes = f.scopes[:len(f.scopes)-1]
}

// FrameDepth and ScopeDepth expose the call-depth/lexical-nesting
// invariants spec.md §8 quantifies over, mainly useful to tests.
func (m *Memory) FrameDepth() int { return len(m.frames) }

func (m *Memory) ScopeDepth() int {
	if len(m.frames) == 0 {
		return 0
	}
	return len(m.frames[len(m.frames)-1].scopes)
}

// ---- lookup and access ----

// GetValueInScope resolves name by searching the current frame's scope
// stack innermost-first, then the global namespace (spec.md §4.2
// get_value_in_scope). Raises a Fault if unbound — this should never
// occur for an upstream-analyzed program.
func (m *Memory) GetValueInScope(name string) Address {
	if len(m.frames) > 0 {
		f := m.frames[len(m.frames)-1]
		for i := len(f.scopes) - 1; i >= 0; i-- {
			if addr, ok := f.scopes[i].names[name]; ok {
				return addr
			}
		}
	}
	if addr, ok := m.global.names[name]; ok {
		return addr
	}
	fault("cmem: undeclared identifier %q", name)
	return 0
}

// Lookup is GetValueInScope plus existence reporting, for callers where
// a missing identifier is expected and should be reported rather than
// faulted.
func (m *Memory) Lookup(name string) (Address, bool) {
	if len(m.frames) > 0 {
		f := m.frames[len(m.frames)-1]
		for i := len(f.scopes) - 1; i >= 0; i-- {
			if addr, ok := f.scopes[i].names[name]; ok {
				return addr, true
			}
		}
	}
	addr, ok := m.global.names[name]
	return addr, ok
}

// GetAtAddress reads the cell at addr directly (spec.md §4.2
// get_at_address), used by the evaluator for pointer dereferences and
// lvalue reads.
func (m *Memory) GetAtAddress(addr Address) Cell {
	c, ok := m.store[addr]
	if !ok {
		fault("cmem: read of unallocated address %d", addr)
	}
	return c
}

// SetAtAddress overwrites the scalar cell at addr (spec.md §4.2
// set_at_address). The cell's declared type is retained and value's
// payload is converted to it with cvalue.Cast, so the payload is not
// stored verbatim: a floating value written to an integer or pointer
// cell is truncated toward zero. Faults if addr does not hold a scalar
// cell.
func (m *Memory) SetAtAddress(addr Address, value cvalue.Value) {
	c, ok := m.store[addr]
	if !ok {
		fault("cmem: write to unallocated address %d", addr)
	}
	sc, ok := c.(ScalarCell)
	if !ok {
		fault("cmem: write of a scalar value to a non-scalar cell at address %d", addr)
	}
	m.store[addr] = ScalarCell{Value: cvalue.Cast(sc.Value.Type, value)}
}

// ReadScalar resolves name to its bound Typed Value, faulting if the
// binding is not a scalar cell (used for ordinary variable reads).
func (m *Memory) ReadScalar(name string) cvalue.Value {
	addr := m.GetValueInScope(name)
	cell := m.GetAtAddress(addr)
	sc, ok := cell.(ScalarCell)
	if !ok {
		fault("cmem: %q does not name a scalar variable", name)
	}
	return sc.Value
}

// WriteScalar stores value at the address bound to name (used for
// ordinary variable assignment).
func (m *Memory) WriteScalar(name string, value cvalue.Value) {
	addr := m.GetValueInScope(name)
	m.SetAtAddress(addr, value)
}

// Entry resolves name to whatever the global namespace holds for it —
// a FunctionCell or BuiltinCell — for function-call dispatch (spec.md
// §4.3 "For globals holding AST function nodes or host callables, read
// yields the entry itself").
func (m *Memory) Entry(name string) (Cell, bool) {
	addr, ok := m.global.names[name]
	if !ok {
		return nil, false
	}
	return m.store[addr], true
}

// ---- heap ----

// Malloc allocates n fresh zero-initialized scalar cells of type t and
// returns the address of the first (spec.md §6 "malloc allocates n
// fresh scalar cells and returns the address of the first").
func (m *Memory) Malloc(n int, t ctype.Type) Address {
	if n <= 0 {
		return 0
	}
	first := m.alloc(ScalarCell{Value: cvalue.Zero(t)})
	for i := 1; i < n; i++ {
		m.alloc(ScalarCell{Value: cvalue.Zero(t)})
	}
	return first
}

// Free is advisory: the store never recycles addresses (spec.md §9
// Open Question Decisions — "free correctness"), so this is a no-op
// kept only to give pkg/builtin's free() something to call.
func (m *Memory) Free(addr Address) {}

// ---- string arena ----

// InternString allocates a read-only string-literal cell and returns a
// char-pointer Typed Value addressing it (SPEC_FULL.md Supplemented
// Features #5).
func (m *Memory) InternString(s string) cvalue.Value {
	addr := m.alloc(StringCell{Value: s})
	return cvalue.Value{Type: ctype.Pointer(ctype.Char()), Int: int64(addr)}
}

// ReadCString reads a NUL-terminated string starting at addr. If addr
// names a string-arena cell directly (the common case: a literal
// passed straight through, e.g. printf's format argument) its contents
// are returned verbatim; otherwise addr is treated as the first of a
// run of char-typed scalar cells (e.g. a malloc'd buffer written by
// strcpy) and walked until a zero byte.
func (m *Memory) ReadCString(addr Address) string {
	if c, ok := m.store[addr]; ok {
		if sc, ok := c.(StringCell); ok {
			return sc.Value
		}
	}
	var b []byte
	for {
		cell, ok := m.store[addr]
		if !ok {
			break
		}
		sc, ok := cell.(ScalarCell)
		if !ok || sc.Value.AsInt64() == 0 {
			break
		}
		b = append(b, byte(sc.Value.AsInt64()))
		addr++
	}
	return string(b)
}

// WriteCString writes s's bytes followed by a NUL terminator into a run
// of char-typed scalar cells starting at addr (used by the string.h
// strcpy/strcat shims to write through a pointer argument).
func (m *Memory) WriteCString(addr Address, s string) {
	for i := 0; i < len(s); i++ {
		m.writeCharCell(addr+Address(i), s[i])
	}
	m.writeCharCell(addr+Address(len(s)), 0)
}

func (m *Memory) writeCharCell(addr Address, b byte) {
	if _, ok := m.store[addr]; !ok {
		fault("cmem: write to unallocated address %d", addr)
	}
	m.store[addr] = ScalarCell{Value: cvalue.CharVal(int64(b))}
}
