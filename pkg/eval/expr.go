package eval

import (
	"github.com/raymyers/cwalk/pkg/ast"
	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

// evalExpr evaluates an expression node to a Typed Value (spec.md
// §4.3). Dispatch mirrors original_source's visit_BinOp/visit_UnOp/
// visit_FieldAccess family, one method per node shape.
func (e *Evaluator) evalExpr(expr ast.Expr) cvalue.Value {
	switch n := expr.(type) {
	case ast.IntLit:
		return cvalue.Int32(n.Value)
	case ast.CharLit:
		return cvalue.CharVal(n.Value)
	case ast.FloatLit:
		return cvalue.Dbl(n.Value)
	case ast.StringLit:
		return e.mem.InternString(n.Value)
	case ast.Ident:
		return e.identValue(n.Name)
	case ast.Unary:
		return e.evalUnary(n)
	case ast.Postfix:
		return e.evalPostfix(n)
	case ast.Binary:
		return e.evalBinary(n)
	case ast.Assign:
		return e.evalAssign(n)
	case ast.Call:
		return e.call(n.Name, n.Args)
	case ast.Member:
		return e.valueAt(e.memberAddress(n))
	case ast.Cast:
		t, err := ctype.ParseSpec(n.TypeSpec)
		if err != nil {
			fault("eval: cast: %v", err)
		}
		return cvalue.Cast(t, e.evalExpr(n.Expr))
	default:
		fault("eval: unhandled expression node %T", expr)
		return cvalue.Value{}
	}
}

// identValue resolves an identifier to its bound value via valueAt.
func (e *Evaluator) identValue(name string) cvalue.Value {
	return e.valueAt(e.mem.GetValueInScope(name))
}

// valueAt reads whatever addr holds as an operand value: a scalar's
// payload directly, or — since struct is not a spec Non-goal and a
// struct instance is a valid operand in its own right (e.g. a call
// argument, spec.md §4.3's function-call algorithm) — a struct-typed
// Value carrying the instance's own address, the same way a pointer's
// payload is an address.
func (e *Evaluator) valueAt(addr cmem.Address) cvalue.Value {
	switch cell := e.mem.GetAtAddress(addr).(type) {
	case cmem.ScalarCell:
		return cell.Value
	case cmem.StructCell:
		return cvalue.Value{Type: ctype.Struct(cell.TypeName, nil), Int: int64(addr)}
	default:
		fault("eval: address %d does not hold a value", addr)
		return cvalue.Value{}
	}
}

func (e *Evaluator) evalUnary(n ast.Unary) cvalue.Value {
	switch n.Op {
	case ast.OpAddrOf:
		addr := e.lvalueAddress(n.Expr)
		return cvalue.Value{Type: ctype.Int(), Int: int64(addr)}
	case ast.OpDeref:
		ptr := e.evalExpr(n.Expr)
		return e.readScalarAt(cmem.Address(ptr.AsInt64()))
	case ast.OpPreInc:
		return e.step(n.Expr, cvalue.Value.Add)
	case ast.OpPreDec:
		return e.step(n.Expr, cvalue.Value.Sub)
	case ast.OpNeg:
		return e.evalExpr(n.Expr).Neg()
	case ast.OpNot:
		return e.evalExpr(n.Expr).Not()
	case ast.OpBitNot:
		return e.evalExpr(n.Expr).BitNot()
	case ast.OpUnaryPlus:
		return e.evalExpr(n.Expr)
	default:
		fault("eval: unhandled unary operator %v", n.Op)
		return cvalue.Value{}
	}
}

func (e *Evaluator) evalPostfix(n ast.Postfix) cvalue.Value {
	addr := e.lvalueAddress(n.Expr)
	old := e.readScalarAt(addr)
	var updated cvalue.Value
	if n.Op == ast.OpPostInc {
		updated = old.Add(cvalue.One())
	} else {
		updated = old.Sub(cvalue.One())
	}
	e.mem.SetAtAddress(addr, updated)
	return old
}

// step implements prefix ++/-- (spec.md §4.3: "read lvalue, increment/
// decrement by an int-typed 1, write back, return the new value").
func (e *Evaluator) step(target ast.Expr, op func(cvalue.Value, cvalue.Value) cvalue.Value) cvalue.Value {
	addr := e.lvalueAddress(target)
	updated := op(e.readScalarAt(addr), cvalue.One())
	e.mem.SetAtAddress(addr, updated)
	return e.readScalarAt(addr)
}

func (e *Evaluator) evalBinary(n ast.Binary) cvalue.Value {
	switch n.Op {
	case ast.OpLogAnd:
		if e.evalExpr(n.Left).IsZero() {
			return cvalue.Int32(0)
		}
		return boolOf(!e.evalExpr(n.Right).IsZero())
	case ast.OpLogOr:
		if !e.evalExpr(n.Left).IsZero() {
			return cvalue.Int32(1)
		}
		return boolOf(!e.evalExpr(n.Right).IsZero())
	case ast.OpComma:
		e.evalExpr(n.Left)
		return e.evalExpr(n.Right)
	}

	l, r := e.evalExpr(n.Left), e.evalExpr(n.Right)
	switch n.Op {
	case ast.OpAdd:
		return l.Add(r)
	case ast.OpSub:
		return l.Sub(r)
	case ast.OpMul:
		return l.Mul(r)
	case ast.OpDiv:
		return l.Div(r)
	case ast.OpMod:
		return l.Mod(r)
	case ast.OpLt:
		return l.Lt(r)
	case ast.OpLe:
		return l.Le(r)
	case ast.OpGt:
		return l.Gt(r)
	case ast.OpGe:
		return l.Ge(r)
	case ast.OpEq:
		return l.Eq(r)
	case ast.OpNe:
		return l.Ne(r)
	case ast.OpBitAnd:
		return l.BitAnd(r)
	case ast.OpBitOr:
		return l.BitOr(r)
	case ast.OpBitXor:
		return l.BitXor(r)
	default:
		fault("eval: unhandled binary operator %v", n.Op)
		return cvalue.Value{}
	}
}

func boolOf(b bool) cvalue.Value {
	if b {
		return cvalue.Int32(1)
	}
	return cvalue.Int32(0)
}

// evalAssign implements spec.md §4.3's Assignment table: `=` stores
// rhs at the lvalue's address retaining its declared type (enforced by
// cmem.SetAtAddress itself); the compound operators read-modify-write
// using the lvalue's current value and the rhs.
func (e *Evaluator) evalAssign(n ast.Assign) cvalue.Value {
	addr := e.lvalueAddress(n.Left)
	rhs := e.evalExpr(n.Right)

	var result cvalue.Value
	switch n.Op {
	case ast.OpAssign:
		result = rhs
	case ast.OpAddAssign:
		result = e.readScalarAt(addr).Add(rhs)
	case ast.OpSubAssign:
		result = e.readScalarAt(addr).Sub(rhs)
	case ast.OpMulAssign:
		result = e.readScalarAt(addr).Mul(rhs)
	case ast.OpDivAssign:
		result = e.readScalarAt(addr).Div(rhs)
	default:
		fault("eval: unhandled assignment operator %v", n.Op)
	}
	e.mem.SetAtAddress(addr, result)
	return e.readScalarAt(addr)
}

// lvalueAddress resolves an expression to the Address of its target
// cell (spec.md §4.3 Assignment and lvalues: "a variable reference, a
// dereferenced pointer expression, a field access, or an arrow
// access").
func (e *Evaluator) lvalueAddress(expr ast.Expr) cmem.Address {
	switch n := expr.(type) {
	case ast.Ident:
		return e.mem.GetValueInScope(n.Name)
	case ast.Unary:
		if n.Op == ast.OpDeref {
			return cmem.Address(e.evalExpr(n.Expr).AsInt64())
		}
	case ast.Member:
		return e.memberAddress(n)
	}
	fault("eval: not an lvalue: %T", expr)
	return 0
}

// memberAddress implements Field access (spec.md §4.3): `.` walks a
// Struct Instance already in hand; `->` first dereferences a pointer
// to reach one. Both forms resolve their base recursively so chained
// access (p.inner.x, p->inner.x) works without a separate struct
// value-type in the AST.
func (e *Evaluator) memberAddress(n ast.Member) cmem.Address {
	var structAddr cmem.Address
	if n.IsArrow {
		ptr := e.evalExpr(n.Expr)
		structAddr = cmem.Address(ptr.AsInt64())
	} else {
		structAddr = e.structInstanceAddress(n.Expr)
	}
	cell, ok := e.mem.GetAtAddress(structAddr).(cmem.StructCell)
	if !ok {
		fault("eval: member access on a non-struct address")
	}
	addr, ok := cell.Fields[n.Name]
	if !ok {
		fault("eval: struct %s has no field %q", cell.TypeName, n.Name)
	}
	return addr
}

// structInstanceAddress resolves expr to the address of a StructCell
// without going through a pointer dereference, for the `.` side of
// field access and for chained dot access on a nested field.
func (e *Evaluator) structInstanceAddress(expr ast.Expr) cmem.Address {
	switch n := expr.(type) {
	case ast.Ident:
		return e.mem.GetValueInScope(n.Name)
	case ast.Member:
		return e.memberAddress(n)
	default:
		fault("eval: not a struct lvalue: %T", expr)
		return 0
	}
}

// readScalarAt reads the Typed Value held at addr, faulting if addr
// does not currently hold a scalar cell.
func (e *Evaluator) readScalarAt(addr cmem.Address) cvalue.Value {
	cell, ok := e.mem.GetAtAddress(addr).(cmem.ScalarCell)
	if !ok {
		fault("eval: address %d does not hold a scalar value", addr)
	}
	return cell.Value
}
