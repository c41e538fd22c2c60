// Package wire holds the low-level primitives shared by the verifier and the
// accessors: bounds arithmetic that cannot overflow and little-endian scalar
// decoding keyed by layout kind.
package wire

import (
	"math"
	"math/bits"

	fb "github.com/dolthub/flatbuffers/v23/go"

	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// MaxBufferSize is the largest buffer addressable by 32-bit signed offsets.
const MaxBufferSize = math.MaxInt32

const (
	SizeUOffset = fb.SizeUOffsetT
	SizeSOffset = fb.SizeSOffsetT
	SizeVOffset = fb.SizeVOffsetT

	// VTableHeader is the vtable size and the table size, one VOffset each.
	VTableHeader = 2 * SizeVOffset
)

// SlotOffset is the position of slot's entry inside a vtable.
func SlotOffset(slot uint16) int { return VTableHeader + SizeVOffset*int(slot) }

// Add returns a+b and whether the sum fits in a non-negative int32.
func Add(a, b uint64) (uint64, bool) {
	s, carry := bits.Add64(a, b, 0)
	return s, carry == 0 && s <= MaxBufferSize
}

// Mul returns a*b and whether the product fits in a non-negative int32.
func Mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0 && lo <= MaxBufferSize
}

// InBounds reports whether [pos, pos+n) lies inside a buffer of length size.
func InBounds(size, pos, n int) bool {
	if pos < 0 || n < 0 {
		return false
	}
	end, ok := Add(uint64(pos), uint64(n))
	return ok && end <= uint64(size)
}

// Aligned reports whether pos is a multiple of a. Widths of one and
// non-positive widths are always aligned.
func Aligned(pos, a int) bool {
	if a <= 1 {
		return true
	}
	return pos&(a-1) == 0
}

func UOffset(buf []byte, pos int) uint32 { return uint32(fb.GetUOffsetT(buf[pos:])) }
func SOffset(buf []byte, pos int) int32  { return int32(fb.GetSOffsetT(buf[pos:])) }
func VOffset(buf []byte, pos int) uint16 { return uint16(fb.GetVOffsetT(buf[pos:])) }

// Scalar decodes the scalar of kind k stored at pos. The caller guarantees
// the bytes are in bounds.
func Scalar(buf []byte, pos int, k layout.Kind) layout.Value {
	b := buf[pos:]
	switch k {
	case layout.Bool:
		// any non-zero byte is true
		return layout.BoolValue(b[0] != 0)
	case layout.Int8:
		return layout.Int(k, int64(fb.GetInt8(b)))
	case layout.Uint8:
		return layout.Uint(k, uint64(fb.GetUint8(b)))
	case layout.Int16:
		return layout.Int(k, int64(fb.GetInt16(b)))
	case layout.Uint16:
		return layout.Uint(k, uint64(fb.GetUint16(b)))
	case layout.Int32:
		return layout.Int(k, int64(fb.GetInt32(b)))
	case layout.Uint32:
		return layout.Uint(k, uint64(fb.GetUint32(b)))
	case layout.Int64:
		return layout.Int(k, fb.GetInt64(b))
	case layout.Uint64:
		return layout.Uint(k, fb.GetUint64(b))
	case layout.Float32:
		return layout.Float(k, float64(fb.GetFloat32(b)))
	case layout.Float64:
		return layout.Float(k, fb.GetFloat64(b))
	}
	panic("wire: not a scalar kind: " + k.String())
}
