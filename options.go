package zcconfig

const (
	DefaultMaxDepth  = 64
	DefaultMaxTables = 1_000_000
	// DefaultApparentSizeFactor bounds the bytes examined during verification
	// as a multiple of the buffer length.
	DefaultApparentSizeFactor = 16
)

// Options controls how buffers are verified and how verified views hand out
// data. The zero value is usable: zero limits fall back to the defaults, but
// the boolean checks stay off, so prefer DefaultOptions.
type Options struct {
	// MaxDepth is the deepest table nesting accepted; the root is depth 1.
	MaxDepth int

	// MaxTables caps the number of tables visited, counting every path to a
	// table shared by several offsets.
	MaxTables int

	// MaxApparentSize caps the total bytes examined. Zero means
	// DefaultApparentSizeFactor times the buffer length.
	MaxApparentSize int

	// CheckAlignment rejects buffers whose length is not a multiple of 4 and
	// fields not naturally aligned relative to the buffer start. With it off
	// only bytes reachable from the root are checked, so trailing bytes that
	// nothing references are accepted and a cut that removes only such bytes
	// goes unnoticed.
	CheckAlignment bool

	// ValidateUTF8 rejects strings that are not valid UTF-8.
	ValidateUTF8 bool

	// UnsafeStrings returns strings aliasing the buffer without copying.
	// The caller must keep the buffer alive and unmodified.
	UnsafeStrings bool

	// SizePrefixed buffers start with a uint32 holding the remaining length.
	SizePrefixed bool

	// Identifier is the 4-byte file identifier expected after the root
	// offset. Empty falls back to the descriptor's identifier, if any.
	Identifier string
}

// DefaultOptions enables every check and copies strings.
func DefaultOptions() Options {
	return Options{
		MaxDepth:       DefaultMaxDepth,
		MaxTables:      DefaultMaxTables,
		CheckAlignment: true,
		ValidateUTF8:   true,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o Options) maxTables() int {
	if o.MaxTables > 0 {
		return o.MaxTables
	}
	return DefaultMaxTables
}

func (o Options) maxApparentSize(n int) int {
	if o.MaxApparentSize > 0 {
		return o.MaxApparentSize
	}
	return DefaultApparentSizeFactor * n
}
