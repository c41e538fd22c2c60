package zcconfig

import (
	"fmt"

	"github.com/rawbytedev/zcconfig/internal/wire"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// StructView reads the members of an inline struct by index. Members of an
// absent struct read as zero.
type StructView struct {
	buf []byte
	pos int
	s   *layout.Struct
}

func (s StructView) Layout() *layout.Struct { return s.s }
func (s StructView) NumFields() int         { return len(s.s.Fields) }

func (s StructView) scalar(i int, k layout.Kind) layout.Value {
	f := s.s.Field(i)
	if f.Kind != k {
		panic(fmt.Sprintf("zcconfig: %s.%s is %s, read as %s", s.s.Name, f.Name, f.Kind, k))
	}
	if s.buf == nil {
		return layout.Value{}
	}
	return wire.Scalar(s.buf, s.pos+f.Offset, k)
}

func (s StructView) Bool(i int) bool       { return s.scalar(i, layout.Bool).Bool() }
func (s StructView) Int8(i int) int8       { return int8(s.scalar(i, layout.Int8).Int()) }
func (s StructView) Uint8(i int) uint8     { return uint8(s.scalar(i, layout.Uint8).Uint()) }
func (s StructView) Int16(i int) int16     { return int16(s.scalar(i, layout.Int16).Int()) }
func (s StructView) Uint16(i int) uint16   { return uint16(s.scalar(i, layout.Uint16).Uint()) }
func (s StructView) Int32(i int) int32     { return int32(s.scalar(i, layout.Int32).Int()) }
func (s StructView) Uint32(i int) uint32   { return uint32(s.scalar(i, layout.Uint32).Uint()) }
func (s StructView) Int64(i int) int64     { return s.scalar(i, layout.Int64).Int() }
func (s StructView) Uint64(i int) uint64   { return s.scalar(i, layout.Uint64).Uint() }
func (s StructView) Float32(i int) float32 { return float32(s.scalar(i, layout.Float32).Float()) }
func (s StructView) Float64(i int) float64 { return s.scalar(i, layout.Float64).Float() }

// Map renders the members by name.
func (s StructView) Map() map[string]any {
	out := make(map[string]any, len(s.s.Fields))
	for i, f := range s.s.Fields {
		if s.buf == nil {
			out[f.Name] = layout.FieldSpec{Type: layout.TypeOf(f.Kind)}.DefaultValue().Native()
			continue
		}
		out[f.Name] = s.scalar(i, f.Kind).Native()
	}
	return out
}
