package fixture

import (
	fb "github.com/dolthub/flatbuffers/v23/go"

	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// Descriptor covers every wire kind the reader supports:
//
//	struct Point { x:int16; y:double; tag:ubyte; }
//	table Kitchen {
//	  b:bool = true; i8:byte = -8; u8:ubyte = 8; i16:short = -16;
//	  u16:ushort = 16; i32:int = -32; u32:uint = 32; i64:long = -64;
//	  u64:ulong = 64; f32:float = 0.5; f64:double = -0.25;
//	  name:string; point:Point; ports:[ushort]; points:[Point];
//	  blob:[ubyte]; weights:[double]; nodes:[Node]; tags:[string];
//	}
//	table Node { child:Node; children:[Node]; label:string; weight:long = -1; }
var Descriptor = layout.MustCompile(layout.Schema{
	Root: "Kitchen",
	Structs: []*layout.Struct{{
		Name: "Point",
		Fields: []layout.StructField{
			{Name: "x", Kind: layout.Int16},
			{Name: "y", Kind: layout.Float64},
			{Name: "tag", Kind: layout.Uint8},
		},
	}},
	Tables: []*layout.Table{
		{
			Name: "Kitchen",
			Fields: []layout.FieldSpec{
				{Name: "b", Slot: KitchenB, Type: layout.TypeOf(layout.Bool), Default: layout.BoolValue(true)},
				{Name: "i8", Slot: KitchenI8, Type: layout.TypeOf(layout.Int8), Default: layout.Int(layout.Int8, -8)},
				{Name: "u8", Slot: KitchenU8, Type: layout.TypeOf(layout.Uint8), Default: layout.Uint(layout.Uint8, 8)},
				{Name: "i16", Slot: KitchenI16, Type: layout.TypeOf(layout.Int16), Default: layout.Int(layout.Int16, -16)},
				{Name: "u16", Slot: KitchenU16, Type: layout.TypeOf(layout.Uint16), Default: layout.Uint(layout.Uint16, 16)},
				{Name: "i32", Slot: KitchenI32, Type: layout.TypeOf(layout.Int32), Default: layout.Int(layout.Int32, -32)},
				{Name: "u32", Slot: KitchenU32, Type: layout.TypeOf(layout.Uint32), Default: layout.Uint(layout.Uint32, 32)},
				{Name: "i64", Slot: KitchenI64, Type: layout.TypeOf(layout.Int64), Default: layout.Int(layout.Int64, -64)},
				{Name: "u64", Slot: KitchenU64, Type: layout.TypeOf(layout.Uint64), Default: layout.Uint(layout.Uint64, 64)},
				{Name: "f32", Slot: KitchenF32, Type: layout.TypeOf(layout.Float32), Default: layout.Float(layout.Float32, 0.5)},
				{Name: "f64", Slot: KitchenF64, Type: layout.TypeOf(layout.Float64), Default: layout.Float(layout.Float64, -0.25)},
				{Name: "name", Slot: KitchenName, Type: layout.TypeOf(layout.String)},
				{Name: "point", Slot: KitchenPoint, Type: layout.StructOf("Point")},
				{Name: "ports", Slot: KitchenPorts, Type: layout.VectorOf(layout.Uint16)},
				{Name: "points", Slot: KitchenPoints, Type: layout.VectorOfStructs("Point")},
				{Name: "blob", Slot: KitchenBlob, Type: layout.VectorOf(layout.Uint8)},
				{Name: "weights", Slot: KitchenWeights, Type: layout.VectorOf(layout.Float64)},
				{Name: "nodes", Slot: KitchenNodes, Type: layout.VectorOfTables("Node")},
				{Name: "tags", Slot: KitchenTags, Type: layout.VectorOf(layout.String)},
			},
		},
		{
			Name: "Node",
			Fields: []layout.FieldSpec{
				{Name: "child", Slot: NodeChild, Type: layout.TableOf("Node")},
				{Name: "children", Slot: NodeChildren, Type: layout.VectorOfTables("Node")},
				{Name: "label", Slot: NodeLabel, Type: layout.TypeOf(layout.String)},
				{Name: "weight", Slot: NodeWeight, Type: layout.TypeOf(layout.Int64), Default: layout.Int(layout.Int64, -1)},
			},
		},
	},
})

const (
	KitchenB uint16 = iota
	KitchenI8
	KitchenU8
	KitchenI16
	KitchenU16
	KitchenI32
	KitchenU32
	KitchenI64
	KitchenU64
	KitchenF32
	KitchenF64
	KitchenName
	KitchenPoint
	KitchenPorts
	KitchenPoints
	KitchenBlob
	KitchenWeights
	KitchenNodes
	KitchenTags
)

const (
	NodeChild uint16 = iota
	NodeChildren
	NodeLabel
	NodeWeight
)

type Point struct {
	X   int16
	Y   float64
	Tag uint8
}

// FullKitchen stores a non-default value in every Kitchen slot.
func FullKitchen() []byte {
	b := fb.NewBuilder(256)
	name := b.CreateString("kitchen")
	blob := b.CreateByteVector([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	tags := StringVector(b, []string{"a", "", "ünï"})

	b.StartVector(2, 3, 2)
	for _, p := range []uint16{443, 80, 22} {
		b.PrependUint16(p)
	}
	ports := b.EndVector(3)

	b.StartVector(8, 2, 8)
	b.PrependFloat64(2.5)
	b.PrependFloat64(-1.5)
	weights := b.EndVector(2)

	b.StartVector(24, 2, 8)
	createPoint(b, Point{X: -2, Y: 4.5, Tag: 9})
	createPoint(b, Point{X: 1, Y: -0.5, Tag: 7})
	points := b.EndVector(2)

	leaf := node(b, 0, nil, "leaf", 7)
	nodes := OffsetVector(b, []fb.UOffsetT{leaf, node(b, leaf, nil, "parent", -1)})

	b.StartObject(int(KitchenTags) + 1)
	b.PrependStructSlot(int(KitchenPoint), createPoint(b, Point{X: 3, Y: 1.25, Tag: 255}), 0)
	b.PrependFloat64Slot(int(KitchenF64), 6.75, -0.25)
	b.PrependInt64Slot(int(KitchenI64), -1<<40, -64)
	b.PrependUint64Slot(int(KitchenU64), 1<<63, 64)
	b.PrependUOffsetTSlot(int(KitchenName), name, 0)
	b.PrependUOffsetTSlot(int(KitchenPorts), ports, 0)
	b.PrependUOffsetTSlot(int(KitchenPoints), points, 0)
	b.PrependUOffsetTSlot(int(KitchenBlob), blob, 0)
	b.PrependUOffsetTSlot(int(KitchenWeights), weights, 0)
	b.PrependUOffsetTSlot(int(KitchenNodes), nodes, 0)
	b.PrependUOffsetTSlot(int(KitchenTags), tags, 0)
	b.PrependFloat32Slot(int(KitchenF32), -3.5, 0.5)
	b.PrependInt32Slot(int(KitchenI32), -100000, -32)
	b.PrependUint32Slot(int(KitchenU32), 4000000000, 32)
	b.PrependInt16Slot(int(KitchenI16), -300, -16)
	b.PrependUint16Slot(int(KitchenU16), 60000, 16)
	b.PrependInt8Slot(int(KitchenI8), -100, -8)
	b.PrependUint8Slot(int(KitchenU8), 200, 8)
	b.PrependBoolSlot(int(KitchenB), false, true)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

// EmptyKitchen is a Kitchen table with no fields stored.
func EmptyKitchen() []byte {
	b := fb.NewBuilder(64)
	b.StartObject(0)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

func createPoint(b *fb.Builder, p Point) fb.UOffsetT {
	b.Prep(8, 24)
	b.Pad(7)
	b.PrependUint8(p.Tag)
	b.PrependFloat64(p.Y)
	b.Pad(6)
	b.PrependInt16(p.X)
	return b.Offset()
}

func node(b *fb.Builder, child fb.UOffsetT, children []fb.UOffsetT, label string, weight int64) fb.UOffsetT {
	var l, kids fb.UOffsetT
	if label != "" {
		l = b.CreateString(label)
	}
	if children != nil {
		kids = OffsetVector(b, children)
	}
	b.StartObject(int(NodeWeight) + 1)
	b.PrependInt64Slot(int(NodeWeight), weight, -1)
	if child != 0 {
		b.PrependUOffsetTSlot(int(NodeChild), child, 0)
	}
	if kids != 0 {
		b.PrependUOffsetTSlot(int(NodeChildren), kids, 0)
	}
	if l != 0 {
		b.PrependUOffsetTSlot(int(NodeLabel), l, 0)
	}
	return b.EndObject()
}

// Chain is a Node nested depth levels deep through its child slot.
func Chain(depth int) []byte {
	b := fb.NewBuilder(64 * depth)
	var n fb.UOffsetT
	for i := 0; i < depth; i++ {
		n = node(b, n, nil, "", int64(i))
	}
	b.Finish(n)
	return b.FinishedBytes()
}

// Fanout is a Node DAG: every level holds width references to the single
// node of the level below, so levels*width offsets describe width^levels
// paths to the leaf.
func Fanout(levels, width int) []byte {
	b := fb.NewBuilder(1024)
	n := node(b, 0, nil, "leaf", 0)
	for i := 0; i < levels; i++ {
		kids := make([]fb.UOffsetT, width)
		for j := range kids {
			kids[j] = n
		}
		n = node(b, 0, kids, "", int64(i))
	}
	b.Finish(n)
	return b.FinishedBytes()
}
