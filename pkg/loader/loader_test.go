package loader_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/internal/fixture"
	"github.com/rawbytedev/zcconfig/pkg/configexample"
	"github.com/rawbytedev/zcconfig/pkg/loader"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestOpenMapsFile(t *testing.T) {
	buf := fixture.BasicBytes()
	src, err := loader.Open(writeFile(t, "app.bin", buf), zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, buf, src.Bytes())
	assert.Equal(t, xxhash.Sum64(buf), src.Fingerprint())
	assert.False(t, src.Compressed())
}

func TestOpenEmptyFile(t *testing.T) {
	src, err := loader.Open(writeFile(t, "empty.bin", nil), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, src.Bytes())
	require.NoError(t, src.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := loader.Open(filepath.Join(t.TempDir(), "nope.bin"), zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenCompressed(t *testing.T) {
	buf := fixture.BasicBytes()
	path := writeFile(t, "app.bin.zst", compress(t, buf))

	_, err := loader.Open(path, zerolog.Nop())
	require.Error(t, err)

	src, err := loader.OpenCompressed(path, zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()
	assert.True(t, src.Compressed())
	assert.Equal(t, buf, src.Bytes())
	assert.Equal(t, xxhash.Sum64(buf), src.Fingerprint())
}

func TestOpenCorruptCompressed(t *testing.T) {
	data := compress(t, fixture.BasicBytes())
	path := writeFile(t, "bad.zst", data[:len(data)/2])
	_, err := loader.OpenCompressed(path, zerolog.Nop())
	require.Error(t, err)
}

func TestLoadRejectsDecompressionBomb(t *testing.T) {
	bomb := compress(t, make([]byte, 8<<20))
	require.Less(t, len(bomb), 64<<10)
	path := writeFile(t, "bomb.zst", bomb)

	l, err := loader.Load(loader.Config{
		Path:                path,
		Options:             zcconfig.DefaultOptions(),
		AllowCompressed:     true,
		MaxDecompressedSize: 1 << 20,
	}, configexample.Descriptor, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, l)
	assert.ErrorIs(t, err, zstd.ErrDecoderSizeExceeded)

	// the same limit leaves room for an ordinary config
	l, err = loader.Load(loader.Config{
		Path:                writeFile(t, "app.bin.zst", compress(t, fixture.BasicBytes())),
		Options:             zcconfig.DefaultOptions(),
		AllowCompressed:     true,
		MaxDecompressedSize: 1 << 20,
	}, configexample.Descriptor, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	src, err := loader.Open(writeFile(t, "app.bin", fixture.BasicBytes()), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	assert.Nil(t, src.Bytes())
}

func TestLoad(t *testing.T) {
	for name, tc := range map[string]struct {
		data       []byte
		compressed bool
	}{
		"plain":     {data: fixture.BasicBytes()},
		"evolution": {data: fixture.EvolutionBytes()},
		"zstd":      {data: compress(t, fixture.BasicBytes()), compressed: true},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := loader.Config{
				Path:            writeFile(t, "app.bin", tc.data),
				Options:         zcconfig.DefaultOptions(),
				AllowCompressed: true,
			}
			l, err := loader.Load(cfg, configexample.Descriptor, zerolog.Nop())
			require.NoError(t, err)
			defer l.Close()

			assert.Equal(t, tc.compressed, l.Compressed())
			c := configexample.AsAppConfig(l.View)
			assert.Equal(t, "TestApp", c.AppName())
			assert.Equal(t, uint32(100), c.MaxConnections())
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	cfg := loader.Config{
		Path:    writeFile(t, "garbage.bin", fixture.Garbage(1024)),
		Options: zcconfig.DefaultOptions(),
	}
	l, err := loader.Load(cfg, configexample.Descriptor, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, l)
	assert.True(t, zcconfig.IsVerificationError(err))
	assert.Contains(t, err.Error(), cfg.Path)
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	cfg := loader.Config{Path: writeFile(t, "empty.bin", nil), Options: zcconfig.DefaultOptions()}
	_, err := loader.Load(cfg, configexample.Descriptor, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, zcconfig.ErrTooShort.Is(errors.Unwrap(err)))
}

func TestLoadRejectsCompressedWhenDisallowed(t *testing.T) {
	cfg := loader.Config{
		Path:    writeFile(t, "app.bin.zst", compress(t, fixture.BasicBytes())),
		Options: zcconfig.DefaultOptions(),
	}
	_, err := loader.Load(cfg, configexample.Descriptor, zerolog.Nop())
	require.Error(t, err)
	assert.False(t, zcconfig.IsVerificationError(err))
}

func TestLoadLogsFingerprint(t *testing.T) {
	buf := fixture.BasicBytes()
	var out bytes.Buffer
	cfg := loader.Config{Path: writeFile(t, "app.bin", buf), Options: zcconfig.DefaultOptions()}
	l, err := loader.Load(cfg, configexample.Descriptor, zerolog.New(&out).Level(zerolog.InfoLevel))
	require.NoError(t, err)
	defer l.Close()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "config loaded", entry["message"])
	assert.Equal(t, "AppConfig", entry["root"])
	assert.Equal(t, cfg.Path, entry["path"])
	assert.EqualValues(t, len(buf), entry["size"])
	assert.Equal(t, false, entry["compressed"])
	assert.Contains(t, entry, "fingerprint")
}
