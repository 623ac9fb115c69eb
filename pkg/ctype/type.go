// Package ctype defines the C type system the evaluator operates over:
// scalar types with an optional pointer level, and struct types with an
// ordered field schema. It mirrors the shape of the teacher repo's
// Ctypes.v-derived package, collapsed to what a tree-walking evaluator
// needs rather than what a code generator needs.
package ctype

import (
	"fmt"
	"strings"
)

// Kind distinguishes the scalar specifier a Type carries.
type Kind int

const (
	KindChar Kind = iota
	KindShort
	KindInt
	KindLong
	KindLongLong
	KindFloat
	KindDouble
	KindLongDouble
	KindVoid
)

func (k Kind) String() string {
	names := [...]string{"char", "short", "int", "long", "long long", "float", "double", "long double", "void"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// IsFloating reports whether values of this kind carry a float64 payload.
func (k Kind) IsFloating() bool {
	return k == KindFloat || k == KindDouble || k == KindLongDouble
}

// Type is either a scalar (with a Kind, signedness, and pointer level)
// or a struct (with a name and ordered field schema). Exactly one of
// Struct's fields is meaningful depending on IsStruct.
type Type struct {
	Kind         Kind
	Unsigned     bool
	PointerLevel int // 0 = not a pointer; >0 = pointer-to-pointer-to-...

	IsStructType bool
	StructName   string
	Fields       []Field // ordered; only set on the struct declaration's canonical Type
}

// Field is one member of a struct's schema.
type Field struct {
	Name string
	Type Type
}

// Scalar constructors.

func Char() Type   { return Type{Kind: KindChar} }
func UChar() Type  { return Type{Kind: KindChar, Unsigned: true} }
func Short() Type  { return Type{Kind: KindShort} }
func Int() Type    { return Type{Kind: KindInt} }
func UInt() Type   { return Type{Kind: KindInt, Unsigned: true} }
func Long() Type   { return Type{Kind: KindLong} }
func Float() Type  { return Type{Kind: KindFloat} }
func Double() Type { return Type{Kind: KindDouble} }
func Void() Type   { return Type{Kind: KindVoid} }

// Struct returns the canonical Type for a declared struct.
func Struct(name string, fields []Field) Type {
	return Type{IsStructType: true, StructName: name, Fields: fields}
}

// Pointer returns t with its pointer level incremented by one.
func Pointer(t Type) Type {
	t.PointerLevel++
	return t
}

// Deref returns t with its pointer level decremented by one. Panics if
// t is not a pointer; callers must check IsPointer first.
func Deref(t Type) Type {
	if t.PointerLevel == 0 {
		panic("ctype: Deref of non-pointer type")
	}
	t.PointerLevel--
	return t
}

// IsPointer reports whether t has pointer level > 0.
func (t Type) IsPointer() bool { return t.PointerLevel > 0 }

// IsStruct reports whether t names a struct type at pointer level 0.
func (t Type) IsStruct() bool { return t.IsStructType && t.PointerLevel == 0 }

// IsInteger reports whether t is a non-pointer integer scalar.
func (t Type) IsInteger() bool {
	if t.IsStructType || t.PointerLevel > 0 {
		return false
	}
	switch t.Kind {
	case KindChar, KindShort, KindInt, KindLong, KindLongLong:
		return true
	}
	return false
}

// IsFloating reports whether t is a non-pointer floating scalar.
func (t Type) IsFloating() bool {
	return !t.IsStructType && t.PointerLevel == 0 && t.Kind.IsFloating()
}

// Field looks up a struct field's schema by name.
func (t Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (t Type) String() string {
	var b strings.Builder
	if t.IsStructType {
		fmt.Fprintf(&b, "struct %s", t.StructName)
	} else {
		if t.Unsigned {
			b.WriteString("unsigned ")
		}
		b.WriteString(t.Kind.String())
	}
	for i := 0; i < t.PointerLevel; i++ {
		b.WriteString(" *")
	}
	return b.String()
}

// Equal reports whether a and b describe the same type shape.
func Equal(a, b Type) bool {
	if a.PointerLevel != b.PointerLevel {
		return false
	}
	if a.IsStructType != b.IsStructType {
		return false
	}
	if a.IsStructType {
		return a.StructName == b.StructName
	}
	return a.Kind == b.Kind && a.Unsigned == b.Unsigned
}

// specWords maps a declared-type token sequence to a scalar Kind +
// signedness, used by ParseSpec for both builtin return-type tags and
// the type strings the parser records for declarations.
var specWords = map[string]Type{
	"void":               Void(),
	"char":               Char(),
	"signed char":        Char(),
	"unsigned char":      UChar(),
	"short":              Short(),
	"short int":          Short(),
	"unsigned short":     {Kind: KindShort, Unsigned: true},
	"int":                Int(),
	"signed":             Int(),
	"signed int":         Int(),
	"unsigned":           UInt(),
	"unsigned int":       UInt(),
	"long":               Long(),
	"long int":           Long(),
	"unsigned long":      {Kind: KindLong, Unsigned: true},
	"long long":          {Kind: KindLongLong},
	"unsigned long long": {Kind: KindLongLong, Unsigned: true},
	"float":              Float(),
	"double":             Double(),
	"long double":        {Kind: KindLongDouble},
}

// ParseSpec parses a C declared-type spelling, e.g. "int", "unsigned
// long", "double", "struct Point", into a Type. A trailing run of "*"
// characters (space-separated or not) adds pointer levels. Struct specs
// ("struct Name") produce a Type with only IsStructType/StructName set;
// Fields stays empty, and pkg/cmem looks the field schema up by
// StructName in its struct declaration table.
func ParseSpec(spec string) (Type, error) {
	spec = strings.TrimSpace(spec)
	level := 0
	for strings.HasSuffix(spec, "*") {
		level++
		spec = strings.TrimSpace(strings.TrimSuffix(spec, "*"))
	}

	fields := strings.Fields(spec)
	if len(fields) >= 2 && fields[0] == "struct" {
		name := strings.Join(fields[1:], " ")
		t := Struct(name, nil)
		t.PointerLevel = level
		return t, nil
	}

	key := strings.Join(fields, " ")
	if t, ok := specWords[key]; ok {
		t.PointerLevel = level
		return t, nil
	}
	return Type{}, fmt.Errorf("ctype: unrecognized type spec %q", spec)
}
