// Package zcconfig reads binary configuration buffers in place.
//
// A buffer uses the flatbuffers table layout: a root offset, tables that
// point at a vtable of per-slot offsets, inline scalars and structs, and
// forward offsets to strings, vectors and nested tables. The shape of every
// table comes from a layout.Descriptor compiled ahead of time.
//
// Nothing is decoded up front. VerifyAndView walks every reachable byte once,
// rejecting anything that would make a later read go out of bounds, and then
// returns a View whose accessors read straight from the buffer:
//
//	desc := configexample.Descriptor
//	v, err := zcconfig.VerifyAndView(desc, buf, "AppConfig")
//	if err != nil {
//		return err
//	}
//	maxConns := v.Uint32(configexample.AppConfigMaxConnections)
//
// Slots missing from the buffer read as their declared default; Has tells the
// two cases apart.
//
// UncheckedView skips verification entirely and is meant for buffers the
// caller produced itself. Reading from an unchecked view of a corrupt buffer
// may panic or return garbage.
//
// Views borrow the buffer. It must not be modified or released while any view
// into it, or any string returned with Options.UnsafeStrings, is in use.
package zcconfig
