// Package loader maps configuration buffers from disk and verifies them
// before handing out a view.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/internal/wire"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

// zstdMagic is the little-endian frame magic 0xFD2FB528.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Config selects the file, the root table and the verification options.
type Config struct {
	Path     string
	RootType string
	Options  zcconfig.Options
	// AllowCompressed lets zstd frames through; they are decompressed into
	// an owned buffer instead of being mapped.
	AllowCompressed bool
	// MaxDecompressedSize caps the decompressed buffer. Zero means the
	// largest buffer the verifier accepts.
	MaxDecompressedSize int
}

// Source owns the bytes of one configuration file. Views built on it are
// valid until Close.
type Source struct {
	path       string
	m          mmap.MMap
	f          *os.File
	buf        []byte
	compressed bool
	closed     bool
}

// Open maps path read-only. Zstd frames are rejected; use OpenCompressed or
// Load with AllowCompressed to accept them.
func Open(path string, logger zerolog.Logger) (*Source, error) {
	return open(path, 0, logger)
}

// OpenCompressed is Open but decompresses zstd frames, up to the largest
// buffer the verifier accepts.
func OpenCompressed(path string, logger zerolog.Logger) (*Source, error) {
	return open(path, wire.MaxBufferSize, logger)
}

// open decompresses zstd frames of up to maxDecompressed bytes; zero rejects
// them.
func open(path string, maxDecompressed int, logger zerolog.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat config: %w", err)
	}
	s := &Source{path: path}
	if st.Size() == 0 {
		// mmap of an empty file fails on most platforms
		f.Close()
		s.buf = []byte{}
		logger.Debug().Str("path", path).Int("size", 0).Msg("empty config file")
		return s, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap config: %w", err)
	}
	s.m, s.f, s.buf = m, f, m

	if bytes.HasPrefix(s.buf, zstdMagic) {
		if maxDecompressed <= 0 {
			s.Close()
			return nil, fmt.Errorf("config %s is zstd compressed", path)
		}
		if err := s.decompress(maxDecompressed); err != nil {
			s.Close()
			return nil, err
		}
	}
	logger.Debug().
		Str("path", path).
		Int("size", len(s.buf)).
		Bool("compressed", s.compressed).
		Msg("config mapped")
	return s, nil
}

func (s *Source) decompress(limit int) error {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(limit)),
	)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(s.buf, nil)
	if err != nil {
		return fmt.Errorf("decompress config %s: %w", s.path, err)
	}
	if err := s.unmap(); err != nil {
		return err
	}
	s.buf = out
	s.compressed = true
	return nil
}

func (s *Source) unmap() error {
	var err error
	if s.m != nil {
		err = s.m.Unmap()
		s.m = nil
	}
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	if err != nil {
		return fmt.Errorf("unmap config: %w", err)
	}
	return nil
}

// Path returns the file the source was opened from.
func (s *Source) Path() string { return s.path }

// Bytes returns the (decompressed) buffer. It must not be modified.
func (s *Source) Bytes() []byte { return s.buf }

// Fingerprint is the xxhash64 of Bytes.
func (s *Source) Fingerprint() uint64 { return xxhash.Sum64(s.buf) }

// Compressed reports whether the file was a zstd frame.
func (s *Source) Compressed() bool { return s.compressed }

// Close releases the mapping. Calling it more than once is a no-op.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf = nil
	return s.unmap()
}

// Loaded is a verified configuration together with the source backing it.
type Loaded struct {
	*Source
	View zcconfig.View
}

// Load opens cfg.Path and verifies it against desc. On failure the source
// is released and nothing from the file is exposed.
func Load(cfg Config, desc *layout.Descriptor, logger zerolog.Logger) (*Loaded, error) {
	var limit int
	if cfg.AllowCompressed {
		limit = cfg.MaxDecompressedSize
		if limit <= 0 || limit > wire.MaxBufferSize {
			limit = wire.MaxBufferSize
		}
	}
	src, err := open(cfg.Path, limit, logger)
	if err != nil {
		return nil, err
	}
	log := logger.With().
		Str("path", cfg.Path).
		Int("size", len(src.Bytes())).
		Uint64("fingerprint", src.Fingerprint()).
		Bool("compressed", src.Compressed()).
		Logger()

	v, err := zcconfig.NewReader(desc, cfg.Options).VerifyAndView(src.Bytes(), cfg.RootType)
	if err != nil {
		log.Error().Err(err).Msg("config verification failed")
		src.Close()
		return nil, fmt.Errorf("verify config %s: %w", cfg.Path, err)
	}
	log.Info().Str("root", v.Layout().Name).Msg("config loaded")
	return &Loaded{Source: src, View: v}, nil
}
