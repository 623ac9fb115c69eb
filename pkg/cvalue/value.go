// Package cvalue implements the Typed Value (spec C1): a tagged
// numeric carrying a ctype.Type and a host-native payload, with
// arithmetic, comparison, and logical operators that propagate type
// the way spec.md §4.1 defines. Operator dispatch is grounded on the
// teacher repo's pkg/cshmgen/operators.go, which switches on
// ctypes.Type to pick a lowered opcode the same way Value's methods
// switch on ctype.Type to pick integer-vs-float arithmetic.
package cvalue

import (
	"fmt"

	"github.com/raymyers/cwalk/pkg/ctype"
)

// Value pairs a C-type descriptor with a host-native numeric payload.
// Integers (including addresses and pointers) are carried as int64;
// floating types are carried as float64. Exactly one of Int/Float is
// meaningful, selected by Type.IsFloating().
type Value struct {
	Type  ctype.Type
	Int   int64
	Float float64
}

// Int32 builds an int-typed Value, the literal type for integer
// constants (spec.md §4.1).
func Int32(n int64) Value { return Value{Type: ctype.Int(), Int: n} }

// CharVal builds a char-typed Value, the literal type for char
// constants.
func CharVal(n int64) Value { return Value{Type: ctype.Char(), Int: n} }

// Dbl builds a double-typed Value, the literal type for real constants.
func Dbl(f float64) Value { return Value{Type: ctype.Double(), Float: f} }

// Zero returns the zero value of the given type (spec.md §4.2: a fresh
// scalar cell's "initial payload is zero of the given type").
func Zero(t ctype.Type) Value { return Value{Type: t} }

func (v Value) IsFloat() bool { return v.Type.IsFloating() }

// AsInt64 and AsFloat64 expose the payload under a uniform numeric
// view, used by pkg/builtin when marshaling arguments to host
// callables (spec.md §4.3: "strip Typed-Value wrappers to their raw
// payloads").
func (v Value) AsInt64() int64 {
	if v.IsFloat() {
		return int64(v.Float)
	}
	return v.Int
}

func (v Value) AsFloat64() float64 {
	if v.IsFloat() {
		return v.Float
	}
	return float64(v.Int)
}

// IsZero reports whether the value is the zero value of its kind —
// used for condition evaluation (nonzero is true) and logical negation.
func (v Value) IsZero() bool {
	if v.IsFloat() {
		return v.Float == 0
	}
	return v.Int == 0
}

func (v Value) String() string {
	if v.IsFloat() {
		return fmt.Sprintf("%v", v.Float)
	}
	return fmt.Sprintf("%d", v.Int)
}

// binArith applies an integer and a float combinator, carrying the
// left operand's type forward (spec.md §4.1: "result carries the left
// operand's type" — the unconditional-promotion divergence from real C
// is intentional; see SPEC_FULL.md Open Question Decisions). If either
// operand is floating the arithmetic is done in float64 and the result
// is then cast to the left operand's type, so an integer left operand
// truncates it.
func binArith(l, r Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) Value {
	if l.IsFloat() || r.IsFloat() {
		return Cast(l.Type, Dbl(floatOp(l.AsFloat64(), r.AsFloat64())))
	}
	return Value{Type: l.Type, Int: intOp(l.Int, r.Int)}
}

func (l Value) Add(r Value) Value {
	return binArith(l, r, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}

func (l Value) Sub(r Value) Value {
	return binArith(l, r, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
}

func (l Value) Mul(r Value) Value {
	return binArith(l, r, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
}

// Div implements integer division truncating toward zero (spec.md
// §4.1, Go's int64 "/" already truncates toward zero). Integer division
// by zero panics, caught by pkg/eval's Fault recovery at the call
// boundary (spec.md §8: "surfaces as a fault").
func (l Value) Div(r Value) Value {
	return binArith(l, r, func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })
}

// Mod is defined for integer types only (spec.md §4.1): it operates on
// the Int payloads. Neither this method nor pkg/eval checks the operand
// types before dispatching here.
func (l Value) Mod(r Value) Value {
	return Value{Type: l.Type, Int: l.Int % r.Int}
}

func (l Value) BitAnd(r Value) Value { return Value{Type: l.Type, Int: l.Int & r.Int} }
func (l Value) BitOr(r Value) Value  { return Value{Type: l.Type, Int: l.Int | r.Int} }
func (l Value) BitXor(r Value) Value { return Value{Type: l.Type, Int: l.Int ^ r.Int} }

func boolValue(b bool) Value {
	if b {
		return Int32(1)
	}
	return Int32(0)
}

// Comparisons yield an int-typed 1/0 (spec.md §4.1).
func (l Value) Lt(r Value) Value { return boolValue(compare(l, r) < 0) }
func (l Value) Le(r Value) Value { return boolValue(compare(l, r) <= 0) }
func (l Value) Gt(r Value) Value { return boolValue(compare(l, r) > 0) }
func (l Value) Ge(r Value) Value { return boolValue(compare(l, r) >= 0) }
func (l Value) Eq(r Value) Value { return boolValue(compare(l, r) == 0) }
func (l Value) Ne(r Value) Value { return boolValue(compare(l, r) != 0) }

func compare(l, r Value) int {
	if l.IsFloat() || r.IsFloat() {
		a, b := l.AsFloat64(), r.AsFloat64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	a, b := l.Int, r.Int
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Neg implements unary minus: (type-of-operand, -payload).
func (v Value) Neg() Value {
	if v.IsFloat() {
		return Value{Type: v.Type, Float: -v.Float}
	}
	return Value{Type: v.Type, Int: -v.Int}
}

// Not implements logical negation: int-typed 1 if zero-valued, else 0.
func (v Value) Not() Value { return boolValue(v.IsZero()) }

// BitNot implements bitwise complement (integer types only).
func (v Value) BitNot() Value { return Value{Type: v.Type, Int: ^v.Int} }

// One returns an int-typed Value of 1, used by pkg/eval for ++/--
// (spec.md §4.3: "increment/decrement by an int-typed 1").
func One() Value { return Int32(1) }

// Cast returns a Value with the given type and v's numeric payload
// reinterpreted under it (spec.md §4.3 Cast semantics).
func Cast(t ctype.Type, v Value) Value {
	if t.IsFloating() {
		return Value{Type: t, Float: v.AsFloat64()}
	}
	return Value{Type: t, Int: v.AsInt64()}
}
