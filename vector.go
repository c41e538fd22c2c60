package zcconfig

import (
	"fmt"

	fb "github.com/dolthub/flatbuffers/v23/go"

	"github.com/rawbytedev/zcconfig/internal/wire"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// Vector is a borrowed view of a vector slot. Indexing past Len, or reading
// elements with the accessor of another kind, panics.
type Vector struct {
	buf           []byte
	body          int
	n             int
	typ           layout.WireType
	unsafeStrings bool
}

func (v Vector) Len() int              { return v.n }
func (v Vector) Type() layout.WireType { return v.typ }

// elem returns the position of element i.
func (v Vector) elem(i int, k layout.Kind) int {
	if v.typ.Elem != k {
		panic(fmt.Sprintf("zcconfig: vector of %s read as %s", v.typ, k))
	}
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("zcconfig: index %d out of range [0:%d]", i, v.n))
	}
	return v.body + i*v.typ.ElemWidth()
}

func (v Vector) scalar(i int, k layout.Kind) layout.Value {
	return wire.Scalar(v.buf, v.elem(i, k), k)
}

func (v Vector) Bool(i int) bool       { return v.scalar(i, layout.Bool).Bool() }
func (v Vector) Int8(i int) int8       { return int8(v.scalar(i, layout.Int8).Int()) }
func (v Vector) Uint8(i int) uint8     { return uint8(v.scalar(i, layout.Uint8).Uint()) }
func (v Vector) Int16(i int) int16     { return int16(v.scalar(i, layout.Int16).Int()) }
func (v Vector) Uint16(i int) uint16   { return uint16(v.scalar(i, layout.Uint16).Uint()) }
func (v Vector) Int32(i int) int32     { return int32(v.scalar(i, layout.Int32).Int()) }
func (v Vector) Uint32(i int) uint32   { return uint32(v.scalar(i, layout.Uint32).Uint()) }
func (v Vector) Int64(i int) int64     { return v.scalar(i, layout.Int64).Int() }
func (v Vector) Uint64(i int) uint64   { return v.scalar(i, layout.Uint64).Uint() }
func (v Vector) Float32(i int) float32 { return float32(v.scalar(i, layout.Float32).Float()) }
func (v Vector) Float64(i int) float64 { return v.scalar(i, layout.Float64).Float() }

// Bytes returns string element i, aliasing the buffer.
func (v Vector) Bytes(i int) []byte {
	p := v.elem(i, layout.String)
	s := p + int(wire.UOffset(v.buf, p))
	n := int(wire.UOffset(v.buf, s))
	return v.buf[s+wire.SizeUOffset : s+wire.SizeUOffset+n]
}

func (v Vector) String(i int) string { return toString(v.Bytes(i), v.unsafeStrings) }

func (v Vector) Struct(i int) StructView {
	return StructView{buf: v.buf, pos: v.elem(i, layout.KindStruct), s: v.typ.StructLayout()}
}

func (v Vector) Table(i int) View {
	p := v.elem(i, layout.KindTable)
	return View{
		tab:           fb.Table{Bytes: v.buf, Pos: fb.UOffsetT(p) + fb.GetUOffsetT(v.buf[p:])},
		table:         v.typ.Target(),
		unsafeStrings: v.unsafeStrings,
	}
}

// Values renders every element the way View.Map renders fields.
func (v Vector) Values() []any {
	out := make([]any, v.n)
	for i := range out {
		switch k := v.typ.Elem; {
		case k.IsScalar():
			out[i] = v.scalar(i, k).Native()
		case k == layout.String:
			out[i] = v.String(i)
		case k == layout.KindStruct:
			out[i] = v.Struct(i).Map()
		case k == layout.KindTable:
			out[i] = v.Table(i).Map()
		}
	}
	return out
}
