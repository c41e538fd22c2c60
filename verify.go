package zcconfig

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	fb "github.com/dolthub/flatbuffers/v23/go"

	"github.com/rawbytedev/zcconfig/internal/wire"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// Reader verifies buffers against a Descriptor and hands out views. It holds
// no mutable state and may be shared between goroutines.
type Reader struct {
	desc *layout.Descriptor
	opts Options
}

func NewReader(desc *layout.Descriptor, opts Options) *Reader {
	return &Reader{desc: desc, opts: opts}
}

func (r *Reader) Descriptor() *layout.Descriptor { return r.desc }
func (r *Reader) Options() Options               { return r.opts }

// VerifyAndView verifies buf with DefaultOptions and returns a view of its
// root table. An empty rootType selects the descriptor's root.
func VerifyAndView(desc *layout.Descriptor, buf []byte, rootType string) (View, error) {
	return NewReader(desc, DefaultOptions()).VerifyAndView(buf, rootType)
}

// UncheckedView is Reader.UncheckedView with DefaultOptions.
func UncheckedView(desc *layout.Descriptor, buf []byte, rootType string) View {
	return NewReader(desc, DefaultOptions()).UncheckedView(buf, rootType)
}

// VerifyAndView checks every byte reachable from the root of buf before
// returning a view of the root table. On failure no view is returned and the
// error is one of the verification kinds.
//
// Naming a rootType the descriptor does not declare panics.
func (r *Reader) VerifyAndView(buf []byte, rootType string) (View, error) {
	root := r.root(rootType)
	pos, err := r.verify(buf, root)
	if err != nil {
		return View{}, err
	}
	return r.view(buf, fb.UOffsetT(pos), root), nil
}

// Verify reports whether buf would be accepted by VerifyAndView.
func (r *Reader) Verify(buf []byte, rootType string) error {
	_, err := r.verify(buf, r.root(rootType))
	return err
}

// UncheckedView reads the root offset and nothing else. The caller vouches
// for buf: accessors on a view of a corrupt buffer may panic or return
// arbitrary values. A buffer too short to hold the root offset yields a view
// with no table, whose reads all resolve to defaults.
func (r *Reader) UncheckedView(buf []byte, rootType string) View {
	root := r.root(rootType)
	start := r.start()
	if len(buf) < start+wire.SizeUOffset {
		return View{table: root, unsafeStrings: r.opts.UnsafeStrings}
	}
	pos := fb.UOffsetT(start) + fb.GetUOffsetT(buf[start:])
	return r.view(buf, pos, root)
}

func (r *Reader) view(buf []byte, pos fb.UOffsetT, t *layout.Table) View {
	return View{
		tab:           fb.Table{Bytes: buf, Pos: pos},
		table:         t,
		unsafeStrings: r.opts.UnsafeStrings,
	}
}

func (r *Reader) root(name string) *layout.Table {
	if name == "" {
		if t := r.desc.Root(); t != nil {
			return t
		}
		panic("zcconfig: descriptor declares no tables")
	}
	return r.desc.MustTable(name)
}

func (r *Reader) start() int {
	if r.opts.SizePrefixed {
		return wire.SizeUOffset
	}
	return 0
}

func (r *Reader) identifier() string {
	if r.opts.Identifier != "" {
		return r.opts.Identifier
	}
	return r.desc.Identifier()
}

// header validates everything before the root table and returns the position
// of the root offset.
func (r *Reader) header(buf []byte) (int, error) {
	start := r.start()
	ident := r.identifier()
	need := start + wire.SizeUOffset + len(ident)
	if len(buf) > wire.MaxBufferSize {
		return 0, ErrSizeOverflow.New("buffer", fmt.Sprintf("%d bytes exceeds %d", len(buf), wire.MaxBufferSize))
	}
	if len(buf) < need {
		return 0, ErrTooShort.New(len(buf), need)
	}
	if r.opts.CheckAlignment && !wire.Aligned(len(buf), wire.SizeUOffset) {
		return 0, ErrMisalignedOrTruncatedField.New("buffer", fmt.Sprintf("length %d is not a multiple of %d", len(buf), wire.SizeUOffset))
	}
	if r.opts.SizePrefixed {
		if n := wire.UOffset(buf, 0); uint64(n) != uint64(len(buf)-start) {
			return 0, ErrOffsetOutOfBounds.New("size prefix", fmt.Sprintf("declares %d bytes, buffer holds %d", n, len(buf)-start))
		}
	}
	if ident != "" {
		at := start + wire.SizeUOffset
		if got := string(buf[at : at+len(ident)]); got != ident {
			return 0, ErrIdentifierMismatch.New(got, ident)
		}
	}
	return start, nil
}

// loc names a field for error messages without building the string unless
// an error is actually reported.
type loc struct {
	path  string
	name  string
	index int
}

func (l loc) String() string {
	s := l.name
	if l.path != "" {
		s = l.path + "." + l.name
	}
	if l.index >= 0 {
		s += "[" + strconv.Itoa(l.index) + "]"
	}
	return s
}

func (l loc) at(i int) loc { l.index = i; return l }

type task struct {
	pos   int
	table *layout.Table
	depth int
	path  string
}

type verifier struct {
	buf       []byte
	align     bool
	utf8Check bool
	maxDepth  int
	maxTables int
	limit     uint64
	budget    uint64
	tables    int
	stack     []task
}

func (r *Reader) verify(buf []byte, root *layout.Table) (int, error) {
	start, err := r.header(buf)
	if err != nil {
		return 0, err
	}
	limit := uint64(r.opts.maxApparentSize(len(buf)))
	v := &verifier{
		buf:       buf,
		align:     r.opts.CheckAlignment,
		utf8Check: r.opts.ValidateUTF8,
		maxDepth:  r.opts.maxDepth(),
		maxTables: r.opts.maxTables(),
		limit:     limit,
		budget:    limit,
	}
	at := loc{name: root.Name, index: -1}
	pos, err := v.deref(start, at)
	if err != nil {
		return 0, err
	}
	if err := v.push(task{pos: pos, table: root, depth: 1, path: root.Name}); err != nil {
		return 0, err
	}
	// Nested tables are visited from an explicit stack so hostile nesting
	// cannot exhaust the goroutine stack.
	for len(v.stack) > 0 {
		t := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]
		if err := v.table(t); err != nil {
			return 0, err
		}
	}
	return pos, nil
}

func (v *verifier) push(t task) error {
	if t.depth > v.maxDepth {
		return ErrRecursionLimitExceeded.New(t.path, fmt.Sprintf("nesting deeper than %d", v.maxDepth))
	}
	v.tables++
	if v.tables > v.maxTables {
		return ErrRecursionLimitExceeded.New(t.path, fmt.Sprintf("more than %d tables", v.maxTables))
	}
	v.stack = append(v.stack, t)
	return nil
}

func (v *verifier) charge(n uint64, at fmt.Stringer) error {
	if n > v.budget {
		return ErrSizeOverflow.New(at, fmt.Sprintf("more than %d bytes examined", v.limit))
	}
	v.budget -= n
	return nil
}

// deref follows the uoffset stored at pos. Offsets must be non-zero and point
// forward to a position inside the buffer.
func (v *verifier) deref(pos int, at loc) (int, error) {
	if !wire.InBounds(len(v.buf), pos, wire.SizeUOffset) {
		return 0, ErrOffsetOutOfBounds.New(at, fmt.Sprintf("offset field at %d", pos))
	}
	if v.align && !wire.Aligned(pos, wire.SizeUOffset) {
		return 0, ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("offset field at %d", pos))
	}
	off := wire.UOffset(v.buf, pos)
	if off == 0 || off > wire.MaxBufferSize {
		return 0, ErrOffsetOutOfBounds.New(at, fmt.Sprintf("offset %d at %d does not point forward", off, pos))
	}
	target, ok := wire.Add(uint64(pos), uint64(off))
	if !ok || target >= uint64(len(v.buf)) {
		return 0, ErrOffsetOutOfBounds.New(at, fmt.Sprintf("offset %d at %d leaves the %d byte buffer", off, pos, len(v.buf)))
	}
	return int(target), nil
}

func (v *verifier) table(t task) error {
	buf := v.buf
	at := loc{name: t.path, index: -1}
	if !wire.InBounds(len(buf), t.pos, wire.SizeSOffset) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("table at %d", t.pos))
	}
	if v.align && !wire.Aligned(t.pos, wire.SizeSOffset) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("table at %d", t.pos))
	}
	vt64 := int64(t.pos) - int64(wire.SOffset(buf, t.pos))
	if vt64 < 0 || vt64 > int64(len(buf)) || !wire.InBounds(len(buf), int(vt64), wire.VTableHeader) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("vtable at %d for table at %d", vt64, t.pos))
	}
	vt := int(vt64)
	if v.align && !wire.Aligned(vt, wire.SizeVOffset) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("vtable at %d", vt))
	}
	vsize := int(wire.VOffset(buf, vt))
	tsize := int(wire.VOffset(buf, vt+wire.SizeVOffset))
	if vsize < wire.VTableHeader || vsize%wire.SizeVOffset != 0 {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("vtable size %d", vsize))
	}
	if !wire.InBounds(len(buf), vt, vsize) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("vtable of %d bytes at %d", vsize, vt))
	}
	if tsize < wire.SizeSOffset {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("table size %d", tsize))
	}
	if !wire.InBounds(len(buf), t.pos, tsize) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("table of %d bytes at %d", tsize, t.pos))
	}
	if err := v.charge(uint64(vsize+tsize), at); err != nil {
		return err
	}
	for i := range t.table.Fields {
		if err := v.field(t, vt, vsize, tsize, &t.table.Fields[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier) field(t task, vt, vsize, tsize int, f *layout.FieldSpec) error {
	at := loc{path: t.path, name: f.Name, index: -1}
	fo := 0
	if so := wire.SlotOffset(f.Slot); so+wire.SizeVOffset <= vsize {
		fo = int(wire.VOffset(v.buf, vt+so))
	}
	if fo == 0 {
		if f.Required {
			return ErrRequiredFieldMissing.New(at)
		}
		return nil
	}
	w := f.Type.InlineWidth()
	if fo < wire.SizeSOffset || fo+w > tsize {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("%d bytes at table offset %d, table is %d bytes", w, fo, tsize))
	}
	pos := t.pos + fo
	if v.align && !wire.Aligned(pos, f.Type.InlineAlign()) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("%s at %d", f.Type, pos))
	}
	if !f.Type.Kind.IsOffset() {
		// scalars and structs live inside the table bounds checked above
		return nil
	}
	target, err := v.deref(pos, at)
	if err != nil {
		return err
	}
	switch f.Type.Kind {
	case layout.String:
		return v.str(target, at)
	case layout.KindTable:
		return v.push(task{pos: target, table: f.Type.Target(), depth: t.depth + 1, path: at.String()})
	default:
		return v.vector(target, f.Type, t.depth, at)
	}
}

func (v *verifier) str(pos int, at loc) error {
	if !wire.InBounds(len(v.buf), pos, wire.SizeUOffset) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("string length at %d", pos))
	}
	if v.align && !wire.Aligned(pos, wire.SizeUOffset) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("string at %d", pos))
	}
	n := uint64(wire.UOffset(v.buf, pos))
	body := pos + wire.SizeUOffset
	end, ok := wire.Add(uint64(body), n)
	if !ok {
		return ErrSizeOverflow.New(at, fmt.Sprintf("string of %d bytes at %d", n, pos))
	}
	if end >= uint64(len(v.buf)) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("string of %d bytes at %d", n, pos))
	}
	if v.buf[end] != 0 {
		return ErrInvalidString.New(at, fmt.Sprintf("no NUL terminator at %d", end))
	}
	if err := v.charge(n+wire.SizeUOffset+1, at); err != nil {
		return err
	}
	if v.utf8Check && !utf8.Valid(v.buf[body:end]) {
		return ErrInvalidString.New(at, "not valid UTF-8")
	}
	return nil
}

func (v *verifier) vector(pos int, typ layout.WireType, depth int, at loc) error {
	if !wire.InBounds(len(v.buf), pos, wire.SizeUOffset) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("vector length at %d", pos))
	}
	if v.align && !wire.Aligned(pos, wire.SizeUOffset) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("vector at %d", pos))
	}
	n := uint64(wire.UOffset(v.buf, pos))
	body := pos + wire.SizeUOffset
	size, ok := wire.Mul(n, uint64(typ.ElemWidth()))
	if !ok {
		return ErrSizeOverflow.New(at, fmt.Sprintf("%d elements of %d bytes", n, typ.ElemWidth()))
	}
	if !wire.InBounds(len(v.buf), body, int(size)) {
		return ErrOffsetOutOfBounds.New(at, fmt.Sprintf("%d elements of %d bytes at %d", n, typ.ElemWidth(), body))
	}
	if v.align && n > 0 && !wire.Aligned(body, typ.ElemAlign()) {
		return ErrMisalignedOrTruncatedField.New(at, fmt.Sprintf("%s elements at %d", typ, body))
	}
	if err := v.charge(size+wire.SizeUOffset, at); err != nil {
		return err
	}
	switch typ.Elem {
	case layout.String:
		for i := 0; i < int(n); i++ {
			el := at.at(i)
			target, err := v.deref(body+i*wire.SizeUOffset, el)
			if err != nil {
				return err
			}
			if err := v.str(target, el); err != nil {
				return err
			}
		}
	case layout.KindTable:
		for i := 0; i < int(n); i++ {
			el := at.at(i)
			target, err := v.deref(body+i*wire.SizeUOffset, el)
			if err != nil {
				return err
			}
			if err := v.push(task{pos: target, table: typ.Target(), depth: depth + 1, path: el.String()}); err != nil {
				return err
			}
		}
	}
	return nil
}
