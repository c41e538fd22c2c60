package zcconfig

import (
	"fmt"
	"unsafe"

	fb "github.com/dolthub/flatbuffers/v23/go"

	"github.com/rawbytedev/zcconfig/internal/wire"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// View is a window onto one table of a buffer. It borrows the buffer and
// never copies it; the buffer must outlive the view and stay unmodified.
//
// A View whose table is absent from the buffer still answers every read, with
// the declared defaults.
//
// Reading an undeclared slot, or reading a slot with the accessor of another
// kind, panics.
type View struct {
	tab           fb.Table
	table         *layout.Table
	unsafeStrings bool
}

// Layout is the table description the view was created with.
func (v View) Layout() *layout.Table { return v.table }

// Present reports whether the table is stored in the buffer.
func (v View) Present() bool { return v.tab.Bytes != nil }

// Has reports whether the buffer stores slot, as opposed to the value
// resolving to its default. Slots unknown to the layout may be asked for.
func (v View) Has(slot uint16) bool { return v.offset(slot) != 0 }

func (v View) offset(slot uint16) fb.VOffsetT {
	if v.tab.Bytes == nil {
		return 0
	}
	so := wire.SlotOffset(slot)
	if so > 0xFFFF-wire.SizeVOffset {
		return 0
	}
	return v.tab.Offset(fb.VOffsetT(so))
}

func (v View) spec(slot uint16, k layout.Kind) layout.FieldSpec {
	f := v.table.Field(slot)
	if f.Type.Kind != k {
		panic(fmt.Sprintf("zcconfig: %s.%s is %s, read as %s", v.table.Name, f.Name, f.Type, k))
	}
	return f
}

func (v View) scalar(slot uint16, k layout.Kind) layout.Value {
	f := v.spec(slot, k)
	if o := v.offset(slot); o != 0 {
		return wire.Scalar(v.tab.Bytes, int(v.tab.Pos)+int(o), k)
	}
	return f.DefaultValue()
}

func (v View) Bool(slot uint16) bool       { return v.scalar(slot, layout.Bool).Bool() }
func (v View) Int8(slot uint16) int8       { return int8(v.scalar(slot, layout.Int8).Int()) }
func (v View) Uint8(slot uint16) uint8     { return uint8(v.scalar(slot, layout.Uint8).Uint()) }
func (v View) Int16(slot uint16) int16     { return int16(v.scalar(slot, layout.Int16).Int()) }
func (v View) Uint16(slot uint16) uint16   { return uint16(v.scalar(slot, layout.Uint16).Uint()) }
func (v View) Int32(slot uint16) int32     { return int32(v.scalar(slot, layout.Int32).Int()) }
func (v View) Uint32(slot uint16) uint32   { return uint32(v.scalar(slot, layout.Uint32).Uint()) }
func (v View) Int64(slot uint16) int64     { return v.scalar(slot, layout.Int64).Int() }
func (v View) Uint64(slot uint16) uint64   { return v.scalar(slot, layout.Uint64).Uint() }
func (v View) Float32(slot uint16) float32 { return float32(v.scalar(slot, layout.Float32).Float()) }
func (v View) Float64(slot uint16) float64 { return v.scalar(slot, layout.Float64).Float() }

// Bytes returns the contents of a string or [uint8] slot, aliasing the
// buffer. The second result is false when the slot is absent.
func (v View) Bytes(slot uint16) ([]byte, bool) {
	f := v.table.Field(slot)
	if f.Type.Kind != layout.String && !(f.Type.Kind == layout.Vector && f.Type.Elem == layout.Uint8) {
		panic(fmt.Sprintf("zcconfig: %s.%s is %s, read as bytes", v.table.Name, f.Name, f.Type))
	}
	o := v.offset(slot)
	if o == 0 {
		return nil, false
	}
	return v.tab.ByteVector(fb.UOffsetT(o) + v.tab.Pos), true
}

// String returns a string slot. It is copied out of the buffer unless the
// view was created with Options.UnsafeStrings.
func (v View) String(slot uint16) (string, bool) {
	v.spec(slot, layout.String)
	o := v.offset(slot)
	if o == 0 {
		return "", false
	}
	return toString(v.tab.ByteVector(fb.UOffsetT(o)+v.tab.Pos), v.unsafeStrings), true
}

// Struct returns an inline struct slot.
func (v View) Struct(slot uint16) (StructView, bool) {
	f := v.spec(slot, layout.KindStruct)
	o := v.offset(slot)
	if o == 0 {
		return StructView{s: f.Type.StructLayout()}, false
	}
	return StructView{buf: v.tab.Bytes, pos: int(v.tab.Pos) + int(o), s: f.Type.StructLayout()}, true
}

// Table returns a nested table. An absent table yields a view that is not
// Present and reads every slot as its default.
func (v View) Table(slot uint16) View {
	f := v.spec(slot, layout.KindTable)
	sub := View{table: f.Type.Target(), unsafeStrings: v.unsafeStrings}
	if o := v.offset(slot); o != 0 {
		sub.tab = fb.Table{Bytes: v.tab.Bytes, Pos: v.tab.Indirect(fb.UOffsetT(o) + v.tab.Pos)}
	}
	return sub
}

// Vector returns a vector slot. An absent vector has length zero.
func (v View) Vector(slot uint16) Vector {
	f := v.spec(slot, layout.Vector)
	vec := Vector{typ: f.Type, unsafeStrings: v.unsafeStrings}
	if o := v.offset(slot); o != 0 {
		vec.buf = v.tab.Bytes
		vec.body = int(v.tab.Vector(fb.UOffsetT(o)))
		vec.n = v.tab.VectorLen(fb.UOffsetT(o))
	}
	return vec
}

// Map renders every declared slot, defaults resolved, for inspection and
// debugging. Absent strings, structs, tables and vectors render as nil.
func (v View) Map() map[string]any {
	out := make(map[string]any, len(v.table.Fields))
	for _, f := range v.table.Fields {
		out[f.Name] = v.value(f)
	}
	return out
}

func (v View) value(f layout.FieldSpec) any {
	switch k := f.Type.Kind; {
	case k.IsScalar():
		return v.scalar(f.Slot, k).Native()
	case k == layout.String:
		if s, ok := v.String(f.Slot); ok {
			return s
		}
	case k == layout.KindStruct:
		if s, ok := v.Struct(f.Slot); ok {
			return s.Map()
		}
	case k == layout.KindTable:
		if t := v.Table(f.Slot); t.Present() {
			return t.Map()
		}
	case k == layout.Vector:
		if v.Has(f.Slot) {
			return v.Vector(f.Slot).Values()
		}
	}
	return nil
}

func toString(b []byte, zeroCopy bool) string {
	if zeroCopy && len(b) > 0 {
		return unsafe.String(unsafe.SliceData(b), len(b))
	}
	return string(b)
}
