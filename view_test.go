package zcconfig_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/internal/fixture"
	"github.com/rawbytedev/zcconfig/pkg/configexample"
)

func kitchen(t *testing.T, buf []byte, opts zcconfig.Options) zcconfig.View {
	t.Helper()
	v, err := zcconfig.NewReader(fixture.Descriptor, opts).VerifyAndView(buf, "Kitchen")
	require.NoError(t, err)
	return v
}

func TestViewScalars(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	assert.Equal(t, false, v.Bool(fixture.KitchenB))
	assert.Equal(t, int8(-100), v.Int8(fixture.KitchenI8))
	assert.Equal(t, uint8(200), v.Uint8(fixture.KitchenU8))
	assert.Equal(t, int16(-300), v.Int16(fixture.KitchenI16))
	assert.Equal(t, uint16(60000), v.Uint16(fixture.KitchenU16))
	assert.Equal(t, int32(-100000), v.Int32(fixture.KitchenI32))
	assert.Equal(t, uint32(4000000000), v.Uint32(fixture.KitchenU32))
	assert.Equal(t, int64(-1<<40), v.Int64(fixture.KitchenI64))
	assert.Equal(t, uint64(1<<63), v.Uint64(fixture.KitchenU64))
	assert.Equal(t, float32(-3.5), v.Float32(fixture.KitchenF32))
	assert.Equal(t, 6.75, v.Float64(fixture.KitchenF64))
}

func TestViewDefaults(t *testing.T) {
	v := kitchen(t, fixture.EmptyKitchen(), zcconfig.DefaultOptions())
	assert.Equal(t, true, v.Bool(fixture.KitchenB))
	assert.Equal(t, int8(-8), v.Int8(fixture.KitchenI8))
	assert.Equal(t, uint8(8), v.Uint8(fixture.KitchenU8))
	assert.Equal(t, int16(-16), v.Int16(fixture.KitchenI16))
	assert.Equal(t, uint16(16), v.Uint16(fixture.KitchenU16))
	assert.Equal(t, int32(-32), v.Int32(fixture.KitchenI32))
	assert.Equal(t, uint32(32), v.Uint32(fixture.KitchenU32))
	assert.Equal(t, int64(-64), v.Int64(fixture.KitchenI64))
	assert.Equal(t, uint64(64), v.Uint64(fixture.KitchenU64))
	assert.Equal(t, float32(0.5), v.Float32(fixture.KitchenF32))
	assert.Equal(t, -0.25, v.Float64(fixture.KitchenF64))

	_, ok := v.String(fixture.KitchenName)
	assert.False(t, ok)
	p, ok := v.Struct(fixture.KitchenPoint)
	assert.False(t, ok)
	assert.Equal(t, int16(0), p.Int16(0))
	assert.Equal(t, 0, v.Vector(fixture.KitchenPorts).Len())
	assert.Equal(t, 0, v.Vector(fixture.KitchenNodes).Len())

	for slot := fixture.KitchenB; slot <= fixture.KitchenTags; slot++ {
		assert.False(t, v.Has(slot), "slot %d", slot)
	}
}

func TestViewHas(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	for slot := fixture.KitchenB; slot <= fixture.KitchenTags; slot++ {
		assert.True(t, v.Has(slot), "slot %d", slot)
	}
	assert.False(t, v.Has(fixture.KitchenTags+1))
	assert.False(t, v.Has(0xFFFF))
}

func TestViewStringsAndBytes(t *testing.T) {
	buf := fixture.FullKitchen()
	v := kitchen(t, buf, zcconfig.DefaultOptions())

	s, ok := v.String(fixture.KitchenName)
	require.True(t, ok)
	assert.Equal(t, "kitchen", s)

	raw, ok := v.Bytes(fixture.KitchenName)
	require.True(t, ok)
	assert.Equal(t, []byte("kitchen"), raw)
	assert.NotSame(t, unsafe.StringData(s), unsafe.SliceData(raw))
	tags := v.Vector(fixture.KitchenTags)
	assert.NotSame(t, unsafe.StringData(tags.String(0)), unsafe.SliceData(tags.Bytes(0)))

	blob, ok := v.Bytes(fixture.KitchenBlob)
	require.True(t, ok)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, blob)
}

func TestViewUnsafeStringsAlias(t *testing.T) {
	opts := zcconfig.DefaultOptions()
	opts.UnsafeStrings = true
	v := kitchen(t, fixture.FullKitchen(), opts)

	s, _ := v.String(fixture.KitchenName)
	raw, _ := v.Bytes(fixture.KitchenName)
	assert.Equal(t, "kitchen", s)
	assert.Same(t, unsafe.StringData(s), unsafe.SliceData(raw))

	tags := v.Vector(fixture.KitchenTags)
	assert.Same(t, unsafe.StringData(tags.String(0)), unsafe.SliceData(tags.Bytes(0)))
}

func TestViewStruct(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	p, ok := v.Struct(fixture.KitchenPoint)
	require.True(t, ok)
	require.Equal(t, 3, p.NumFields())
	assert.Equal(t, int16(3), p.Int16(0))
	assert.Equal(t, 1.25, p.Float64(1))
	assert.Equal(t, uint8(255), p.Uint8(2))
	assert.Equal(t, map[string]any{"x": int16(3), "y": 1.25, "tag": uint8(255)}, p.Map())
	assert.Equal(t, 24, p.Layout().Size())
}

func TestViewVectors(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())

	ports := v.Vector(fixture.KitchenPorts)
	require.Equal(t, 3, ports.Len())
	assert.Equal(t, []uint16{22, 80, 443}, []uint16{ports.Uint16(0), ports.Uint16(1), ports.Uint16(2)})

	weights := v.Vector(fixture.KitchenWeights)
	require.Equal(t, 2, weights.Len())
	assert.Equal(t, -1.5, weights.Float64(0))
	assert.Equal(t, 2.5, weights.Float64(1))

	points := v.Vector(fixture.KitchenPoints)
	require.Equal(t, 2, points.Len())
	assert.Equal(t, int16(1), points.Struct(0).Int16(0))
	assert.Equal(t, -0.5, points.Struct(0).Float64(1))
	assert.Equal(t, uint8(9), points.Struct(1).Uint8(2))

	blob := v.Vector(fixture.KitchenBlob)
	require.Equal(t, 4, blob.Len())
	assert.Equal(t, uint8(0xEF), blob.Uint8(3))

	tags := v.Vector(fixture.KitchenTags)
	assert.Equal(t, []any{"a", "", "ünï"}, tags.Values())
}

func TestViewNestedTables(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	nodes := v.Vector(fixture.KitchenNodes)
	require.Equal(t, 2, nodes.Len())

	leaf := nodes.Table(0)
	assert.Equal(t, "Node", leaf.Layout().Name)
	assert.Equal(t, int64(7), leaf.Int64(fixture.NodeWeight))
	assert.False(t, leaf.Table(fixture.NodeChild).Present())

	parent := nodes.Table(1)
	assert.Equal(t, int64(-1), parent.Int64(fixture.NodeWeight))
	assert.False(t, parent.Has(fixture.NodeWeight))
	child := parent.Table(fixture.NodeChild)
	require.True(t, child.Present())
	label, ok := child.String(fixture.NodeLabel)
	require.True(t, ok)
	assert.Equal(t, "leaf", label)

	// reading through an absent table still resolves defaults
	missing := leaf.Table(fixture.NodeChild).Table(fixture.NodeChild)
	assert.Equal(t, int64(-1), missing.Int64(fixture.NodeWeight))
	assert.Equal(t, 0, missing.Vector(fixture.NodeChildren).Len())
}

func TestViewMap(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	m := v.Map()
	assert.Equal(t, "kitchen", m["name"])
	assert.Equal(t, uint32(4000000000), m["u32"])
	assert.Equal(t, []any{uint16(22), uint16(80), uint16(443)}, m["ports"])
	assert.Equal(t, []any{-1.5, 2.5}, m["weights"])
	leaf := map[string]any{"child": nil, "children": nil, "label": "leaf", "weight": int64(7)}
	assert.Equal(t, []any{
		leaf,
		map[string]any{"child": leaf, "children": nil, "label": "parent", "weight": int64(-1)},
	}, m["nodes"])

	empty := kitchen(t, fixture.EmptyKitchen(), zcconfig.DefaultOptions()).Map()
	assert.Len(t, empty, 19)
	assert.Equal(t, true, empty["b"])
	assert.Equal(t, float32(0.5), empty["f32"])
	for _, k := range []string{"name", "point", "ports", "points", "blob", "weights", "nodes", "tags"} {
		assert.Nil(t, empty[k], k)
	}
}

func TestViewMisusePanics(t *testing.T) {
	v := kitchen(t, fixture.FullKitchen(), zcconfig.DefaultOptions())
	assert.Panics(t, func() { v.Uint32(fixture.KitchenTags + 1) }, "undeclared slot")
	assert.Panics(t, func() { v.Uint32(fixture.KitchenI32) }, "kind mismatch")
	assert.Panics(t, func() { v.String(fixture.KitchenPorts) }, "string of a vector")
	assert.Panics(t, func() { v.Bytes(fixture.KitchenPorts) }, "bytes of [uint16]")
	assert.Panics(t, func() { v.Table(fixture.KitchenName) }, "table of a string")

	ports := v.Vector(fixture.KitchenPorts)
	assert.Panics(t, func() { ports.Uint16(3) }, "index past Len")
	assert.Panics(t, func() { ports.Uint16(-1) }, "negative index")
	assert.Panics(t, func() { ports.Uint32(0) }, "element kind mismatch")

	p, _ := v.Struct(fixture.KitchenPoint)
	assert.Panics(t, func() { p.Int32(0) }, "member kind mismatch")
	assert.Panics(t, func() { p.Int16(3) }, "member index")
}

func TestConcurrentReaders(t *testing.T) {
	buf := fixture.BasicBytes()
	r := zcconfig.NewReader(configexample.Descriptor, zcconfig.DefaultOptions())
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				v, err := r.VerifyAndView(buf, "")
				if err != nil {
					return err
				}
				c := configexample.AsAppConfig(v)
				adv, _ := c.AdvancedSettings()
				if c.AppName() != "TestApp" || adv.AllowedHosts(1) != "host2" {
					t.Errorf("unexpected read %q %q", c.AppName(), adv.AllowedHosts(1))
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
