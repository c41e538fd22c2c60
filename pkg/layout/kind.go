package layout

import (
	"fmt"
	"math"
)

// Kind is the wire type of a slot, struct member or vector element.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	String
	KindTable
	Vector
	KindStruct
)

var kindNames = [...]string{
	Invalid:    "invalid",
	Bool:       "bool",
	Int8:       "int8",
	Uint8:      "uint8",
	Int16:      "int16",
	Uint16:     "uint16",
	Int32:      "int32",
	Uint32:     "uint32",
	Int64:      "int64",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	String:     "string",
	KindTable:  "table",
	Vector:     "vector",
	KindStruct: "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsScalar reports whether k is a fixed-size primitive kind.
func (k Kind) IsScalar() bool {
	return k >= Bool && k <= Float64
}

// IsOffset reports whether values of kind k are stored as a uoffset to
// another location in the buffer.
func (k Kind) IsOffset() bool {
	return k == String || k == KindTable || k == Vector
}

// Width returns the inline byte width for scalar and offset kinds, and -1 for
// structs, whose width depends on their layout.
func (k Kind) Width() int {
	switch k {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	case String, KindTable, Vector:
		return 4
	default:
		return -1
	}
}

// ParseKind maps a schema type name to a scalar or string kind. The short
// flatbuffers aliases (ubyte, int, ulong, ...) are accepted as well.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "int8", "byte":
		return Int8, true
	case "uint8", "ubyte":
		return Uint8, true
	case "int16", "short":
		return Int16, true
	case "uint16", "ushort":
		return Uint16, true
	case "int32", "int":
		return Int32, true
	case "uint32", "uint":
		return Uint32, true
	case "int64", "long":
		return Int64, true
	case "uint64", "ulong":
		return Uint64, true
	case "float32", "float":
		return Float32, true
	case "float64", "double":
		return Float64, true
	case "string":
		return String, true
	}
	return Invalid, false
}

// Value is a scalar default. The zero Value carries no default.
type Value struct {
	kind Kind
	bits uint64
}

// Uint returns an unsigned default of kind k.
func Uint(k Kind, v uint64) Value { return Value{kind: k, bits: v} }

// Int returns a signed default of kind k.
func Int(k Kind, v int64) Value { return Value{kind: k, bits: uint64(v)} }

// Float returns a floating point default of kind k.
func Float(k Kind, v float64) Value {
	if k == Float32 {
		return Value{kind: k, bits: uint64(math.Float32bits(float32(v)))}
	}
	return Value{kind: k, bits: math.Float64bits(v)}
}

// BoolValue returns a bool default.
func BoolValue(b bool) Value {
	if b {
		return Value{kind: Bool, bits: 1}
	}
	return Value{kind: Bool}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsSet() bool  { return v.kind != Invalid }
func (v Value) Bool() bool   { return v.bits != 0 }
func (v Value) Uint() uint64 { return v.bits }
func (v Value) Int() int64   { return int64(v.bits) }

func (v Value) Float() float64 {
	if v.kind == Float32 {
		return float64(math.Float32frombits(uint32(v.bits)))
	}
	return math.Float64frombits(v.bits)
}

// Native returns the value as the Go type matching its kind; nil when unset.
func (v Value) Native() any {
	switch v.kind {
	case Bool:
		return v.Bool()
	case Int8:
		return int8(v.bits)
	case Uint8:
		return uint8(v.bits)
	case Int16:
		return int16(v.bits)
	case Uint16:
		return uint16(v.bits)
	case Int32:
		return int32(v.bits)
	case Uint32:
		return uint32(v.bits)
	case Int64:
		return int64(v.bits)
	case Uint64:
		return v.bits
	case Float32:
		return float32(v.Float())
	case Float64:
		return v.Float()
	}
	return nil
}

func (v Value) String() string {
	if !v.IsSet() {
		return "<none>"
	}
	return fmt.Sprint(v.Native())
}
