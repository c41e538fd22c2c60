package wire

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/zcconfig/pkg/layout"
)

func TestCheckedArithmetic(t *testing.T) {
	_, ok := Add(math.MaxInt32, 1)
	assert.False(t, ok)
	_, ok = Add(math.MaxUint64, 2)
	assert.False(t, ok)
	s, ok := Add(10, 20)
	assert.True(t, ok)
	assert.Equal(t, uint64(30), s)

	_, ok = Mul(1<<32, 1<<32)
	assert.False(t, ok)
	_, ok = Mul(0xFFFFFFFF, 8)
	assert.False(t, ok)
	p, ok := Mul(1000, 12)
	assert.True(t, ok)
	assert.Equal(t, uint64(12000), p)
}

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(8, 4, 4))
	assert.True(t, InBounds(8, 8, 0))
	assert.False(t, InBounds(8, 5, 4))
	assert.False(t, InBounds(8, -1, 1))
	assert.False(t, InBounds(8, math.MaxInt, 2))

	// pos+n never wraps around into range
	f := func(pos, n uint32) bool {
		got := InBounds(1024, int(pos), int(n))
		want := uint64(pos)+uint64(n) <= 1024
		return got == want
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestAligned(t *testing.T) {
	assert.True(t, Aligned(16, 8))
	assert.False(t, Aligned(12, 8))
	assert.True(t, Aligned(7, 1))
	assert.True(t, Aligned(3, -1))
}

func TestScalarDecoding(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, int8(-1), Scalar(buf, 0, layout.Int8).Native())
	assert.Equal(t, uint16(0xFFFF), Scalar(buf, 0, layout.Uint16).Native())
	assert.Equal(t, int64(-1), Scalar(buf, 0, layout.Int64).Native())
	assert.Equal(t, true, Scalar(buf, 7, layout.Bool).Native())

	le := []byte{0x00, 0x00, 0xC0, 0x3F}
	assert.Equal(t, float32(1.5), Scalar(le, 0, layout.Float32).Native())
	assert.Equal(t, uint32(0x3FC00000), Scalar(le, 0, layout.Uint32).Native())

	assert.Panics(t, func() { Scalar(buf, 0, layout.String) })
}

func TestScalarBoolNonZeroIsTrue(t *testing.T) {
	for b, want := range map[byte]bool{0x00: false, 0x01: true, 0x02: true, 0x80: true, 0xFF: true} {
		assert.Equal(t, want, Scalar([]byte{b}, 0, layout.Bool).Native(), "byte %#x", b)
	}
}

func TestOffsets(t *testing.T) {
	buf := []byte{0x0C, 0, 0, 0, 0xF8, 0xFF, 0xFF, 0xFF, 0x06, 0x00}
	assert.Equal(t, uint32(12), UOffset(buf, 0))
	assert.Equal(t, int32(-8), SOffset(buf, 4))
	assert.Equal(t, uint16(6), VOffset(buf, 8))
	assert.Equal(t, 4, SlotOffset(0))
	assert.Equal(t, 16, SlotOffset(6))
}
