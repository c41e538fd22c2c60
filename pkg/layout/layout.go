// Package layout describes the fixed, schema-derived layout of every table a
// buffer may contain: which slots exist, what is stored in them and what an
// absent slot resolves to.
//
// A Descriptor is produced once by Compile and never mutated afterwards, so it
// can be shared by any number of concurrent readers.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSchema = errors.New("invalid schema")

// StructField is one member of an inline struct.
type StructField struct {
	Name   string
	Kind   Kind
	Offset int // filled by Compile
}

// Struct is a fixed-size aggregate stored inline in tables and vectors.
type Struct struct {
	Name   string
	Fields []StructField

	size  int
	align int
}

func (s *Struct) Size() int  { return s.size }
func (s *Struct) Align() int { return s.align }

// Field returns the i-th member. Out of range indexes panic.
func (s *Struct) Field(i int) StructField { return s.Fields[i] }

// WireType tells the reader how many bytes a slot occupies and whether they
// hold the value itself or an offset to it.
type WireType struct {
	Kind Kind
	Elem Kind   // element kind when Kind == Vector
	Ref  string // table or struct name for Table/Struct kinds and elements

	table *Table
	strct *Struct
}

func TypeOf(k Kind) WireType              { return WireType{Kind: k} }
func TableOf(name string) WireType        { return WireType{Kind: KindTable, Ref: name} }
func StructOf(name string) WireType       { return WireType{Kind: KindStruct, Ref: name} }
func VectorOf(elem Kind) WireType         { return WireType{Kind: Vector, Elem: elem} }
func VectorOfTables(name string) WireType { return WireType{Kind: Vector, Elem: KindTable, Ref: name} }
func VectorOfStructs(name string) WireType {
	return WireType{Kind: Vector, Elem: KindStruct, Ref: name}
}

// Target is the nested table layout for Table kinds and vectors of tables.
func (w WireType) Target() *Table { return w.table }

// StructLayout is the struct layout for Struct kinds and vectors of structs.
func (w WireType) StructLayout() *Struct { return w.strct }

// InlineWidth is the number of bytes the slot occupies inside its table.
func (w WireType) InlineWidth() int {
	if w.Kind == KindStruct {
		return w.strct.size
	}
	return w.Kind.Width()
}

// InlineAlign is the alignment the slot must satisfy.
func (w WireType) InlineAlign() int {
	if w.Kind == KindStruct {
		return w.strct.align
	}
	return w.Kind.Width()
}

// ElemWidth is the byte width of one vector element.
func (w WireType) ElemWidth() int {
	if w.Elem == KindStruct {
		return w.strct.size
	}
	return w.Elem.Width()
}

// ElemAlign is the alignment of the first vector element.
func (w WireType) ElemAlign() int {
	if w.Elem == KindStruct {
		return w.strct.align
	}
	return w.Elem.Width()
}

func (w WireType) String() string {
	switch w.Kind {
	case KindTable, KindStruct:
		return w.Ref
	case Vector:
		if w.Elem == KindTable || w.Elem == KindStruct {
			return "[" + w.Ref + "]"
		}
		return "[" + w.Elem.String() + "]"
	default:
		return w.Kind.String()
	}
}

// FieldSpec is the static description of one slot.
type FieldSpec struct {
	Name     string
	Slot     uint16
	Type     WireType
	Default  Value
	Required bool
}

// DefaultValue is what an absent scalar slot reads as. Scalars without a
// declared default resolve to the zero value of their kind.
func (f FieldSpec) DefaultValue() Value {
	if f.Default.IsSet() {
		return f.Default
	}
	return Value{kind: f.Type.Kind}
}

// Table is the ordered set of slots of one table type.
type Table struct {
	Name   string
	Fields []FieldSpec

	bySlot []int
	byName map[string]int
}

// Field returns the field declared at slot. Asking for an undeclared slot
// is a programming error and panics.
func (t *Table) Field(slot uint16) FieldSpec {
	if int(slot) >= len(t.bySlot) || t.bySlot[slot] < 0 {
		panic(fmt.Sprintf("layout: table %s declares no slot %d", t.Name, slot))
	}
	return t.Fields[t.bySlot[slot]]
}

// Declared reports whether slot is part of the table.
func (t *Table) Declared(slot uint16) bool {
	return int(slot) < len(t.bySlot) && t.bySlot[slot] >= 0
}

func (t *Table) Lookup(name string) (FieldSpec, bool) {
	i, ok := t.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return t.Fields[i], true
}

// NumSlots is one past the highest declared slot.
func (t *Table) NumSlots() int { return len(t.bySlot) }

// Schema is the uncompiled input to Compile.
type Schema struct {
	Root       string
	Identifier string
	Structs    []*Struct
	Tables     []*Table
}

// Descriptor is a compiled, immutable Schema.
type Descriptor struct {
	root       *Table
	identifier string
	tables     map[string]*Table
	order      []*Table
	structs    map[string]*Struct
}

func (d *Descriptor) Root() *Table       { return d.root }
func (d *Descriptor) Identifier() string { return d.identifier }
func (d *Descriptor) Tables() []*Table   { return d.order }

func (d *Descriptor) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

func (d *Descriptor) Struct(name string) (*Struct, bool) {
	s, ok := d.structs[name]
	return s, ok
}

// MustTable panics when name is not a declared table.
func (d *Descriptor) MustTable(name string) *Table {
	t, ok := d.tables[name]
	if !ok {
		panic(fmt.Sprintf("layout: no table %q", name))
	}
	return t
}

// FieldSpec returns the spec for slot of the named table. Unknown tables and
// undeclared slots panic.
func (d *Descriptor) FieldSpec(table string, slot uint16) FieldSpec {
	return d.MustTable(table).Field(slot)
}

// MustCompile is Compile for package-level schemas; it panics on error.
func MustCompile(s Schema) *Descriptor {
	d, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Compile validates s and resolves every cross reference. The input is not
// retained: tables and structs are copied.
func Compile(s Schema) (*Descriptor, error) {
	if n := len(s.Identifier); n != 0 && n != 4 {
		return nil, fmt.Errorf("%w: file identifier %q must be 4 bytes", ErrInvalidSchema, s.Identifier)
	}
	d := &Descriptor{
		identifier: s.Identifier,
		tables:     make(map[string]*Table, len(s.Tables)),
		structs:    make(map[string]*Struct, len(s.Structs)),
	}
	for _, st := range s.Structs {
		cs, err := compileStruct(st)
		if err != nil {
			return nil, err
		}
		if _, dup := d.structs[cs.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate struct %s", ErrInvalidSchema, cs.Name)
		}
		d.structs[cs.Name] = cs
	}
	// Two passes: tables may reference each other, including themselves.
	for _, t := range s.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: table without a name", ErrInvalidSchema)
		}
		if _, dup := d.tables[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %s", ErrInvalidSchema, t.Name)
		}
		if _, clash := d.structs[t.Name]; clash {
			return nil, fmt.Errorf("%w: %s is both a table and a struct", ErrInvalidSchema, t.Name)
		}
		ct := &Table{Name: t.Name, Fields: append([]FieldSpec(nil), t.Fields...)}
		d.tables[ct.Name] = ct
		d.order = append(d.order, ct)
	}
	for _, t := range d.order {
		if err := d.compileTable(t); err != nil {
			return nil, err
		}
	}
	switch {
	case s.Root != "":
		root, ok := d.tables[s.Root]
		if !ok {
			return nil, fmt.Errorf("%w: root type %s is not a table", ErrInvalidSchema, s.Root)
		}
		d.root = root
	case len(d.order) > 0:
		d.root = d.order[0]
	}
	return d, nil
}

func compileStruct(s *Struct) (*Struct, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%w: struct without a name", ErrInvalidSchema)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: struct %s has no fields", ErrInvalidSchema, s.Name)
	}
	cs := &Struct{Name: s.Name, Fields: make([]StructField, len(s.Fields)), align: 1}
	seen := make(map[string]bool, len(s.Fields))
	off := 0
	for i, f := range s.Fields {
		if !f.Kind.IsScalar() {
			return nil, fmt.Errorf("%w: struct %s field %s: %s is not a scalar", ErrInvalidSchema, s.Name, f.Name, f.Kind)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: struct %s: duplicate field %s", ErrInvalidSchema, s.Name, f.Name)
		}
		seen[f.Name] = true
		w := f.Kind.Width()
		off = alignUp(off, w)
		cs.Fields[i] = StructField{Name: f.Name, Kind: f.Kind, Offset: off}
		off += w
		cs.align = max(cs.align, w)
	}
	cs.size = alignUp(off, cs.align)
	return cs, nil
}

func (d *Descriptor) compileTable(t *Table) error {
	t.byName = make(map[string]int, len(t.Fields))
	maxSlot := -1
	for _, f := range t.Fields {
		maxSlot = max(maxSlot, int(f.Slot))
	}
	t.bySlot = make([]int, maxSlot+1)
	for i := range t.bySlot {
		t.bySlot[i] = -1
	}
	for i := range t.Fields {
		f := &t.Fields[i]
		where := t.Name + "." + f.Name
		if f.Name == "" {
			return fmt.Errorf("%w: table %s slot %d has no name", ErrInvalidSchema, t.Name, f.Slot)
		}
		if t.bySlot[f.Slot] >= 0 {
			return fmt.Errorf("%w: %s: slot %d already used by %s", ErrInvalidSchema, where, f.Slot, t.Fields[t.bySlot[f.Slot]].Name)
		}
		if _, dup := t.byName[f.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate field name", ErrInvalidSchema, where)
		}
		t.bySlot[f.Slot] = i
		t.byName[f.Name] = i
		if err := d.resolve(where, &f.Type); err != nil {
			return err
		}
		if f.Default.IsSet() {
			if !f.Type.Kind.IsScalar() {
				return fmt.Errorf("%w: %s: only scalar fields take a default", ErrInvalidSchema, where)
			}
			if f.Default.Kind() != f.Type.Kind {
				return fmt.Errorf("%w: %s: default of kind %s for a %s field", ErrInvalidSchema, where, f.Default.Kind(), f.Type.Kind)
			}
		}
	}
	return nil
}

func (d *Descriptor) resolve(where string, w *WireType) error {
	ref := w.Kind
	if w.Kind == Vector {
		ref = w.Elem
		switch {
		case w.Elem.IsScalar(), w.Elem == String, w.Elem == KindTable, w.Elem == KindStruct:
		default:
			return fmt.Errorf("%w: %s: unsupported vector element %s", ErrInvalidSchema, where, w.Elem)
		}
	}
	switch ref {
	case KindTable:
		t, ok := d.tables[w.Ref]
		if !ok {
			return fmt.Errorf("%w: %s: unknown table %q", ErrInvalidSchema, where, w.Ref)
		}
		w.table = t
	case KindStruct:
		s, ok := d.structs[w.Ref]
		if !ok {
			return fmt.Errorf("%w: %s: unknown struct %q", ErrInvalidSchema, where, w.Ref)
		}
		w.strct = s
	case Invalid:
		return fmt.Errorf("%w: %s: missing type", ErrInvalidSchema, where)
	default:
		if !ref.IsScalar() && ref != String {
			return fmt.Errorf("%w: %s: unknown kind %s", ErrInvalidSchema, where, ref)
		}
	}
	return nil
}

func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) &^ (a - 1)
}

// String renders the descriptor in a compact schema-like notation.
func (d *Descriptor) String() string {
	var b strings.Builder
	for _, t := range d.order {
		fmt.Fprintf(&b, "table %s {\n", t.Name)
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "  %s:%s (slot %d", f.Name, f.Type, f.Slot)
			if f.Default.IsSet() {
				fmt.Fprintf(&b, ", default %s", f.Default)
			}
			if f.Required {
				b.WriteString(", required")
			}
			b.WriteString(")\n")
		}
		b.WriteString("}\n")
	}
	if d.root != nil {
		fmt.Fprintf(&b, "root_type %s\n", d.root.Name)
	}
	return b.String()
}
