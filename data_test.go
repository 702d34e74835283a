package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	gids, err := decodeCells(EncodingCSV, CompressionNone, "1,2,3,4", nil, 2, 2)
	assert.Nil(t, err)
	assert.Equal(t, []GID{1, 2, 3, 4}, gids)
}

func TestDecodeCSVNewlines(t *testing.T) {
	gids, err := decodeCells(EncodingCSV, CompressionNone, "\n1,2,\n3,4\n", nil, 2, 2)
	assert.Nil(t, err)
	assert.Equal(t, []GID{1, 2, 3, 4}, gids)
}

func TestDecodeCSVCountMismatch(t *testing.T) {
	_, err := decodeCells(EncodingCSV, CompressionNone, "1,2,3", nil, 2, 2)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestDecodeCSVBadToken(t *testing.T) {
	_, err := decodeCells(EncodingCSV, CompressionNone, "1,two,3,4", nil, 2, 2)
	assert.ErrorIs(t, err, ErrDecoding)

	// negative gids aren't a thing
	_, err = decodeCells(EncodingCSV, CompressionNone, "1,-2,3,4", nil, 2, 2)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestDecodeCSVWithCompression(t *testing.T) {
	_, err := decodeCells(EncodingCSV, CompressionGzip, "1,2,3,4", nil, 2, 2)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestDecodePerCellElements(t *testing.T) {
	cells := []xmlDataTile{{GID: 1}, {GID: 0}, {GID: 3}, {GID: 4}}
	gids, err := decodeCells(EncodingXML, CompressionNone, "", cells, 2, 2)
	assert.Nil(t, err)
	assert.Equal(t, []GID{1, 0, 3, 4}, gids)
}

func TestDecodePerCellWithCompression(t *testing.T) {
	cells := []xmlDataTile{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}}
	_, err := decodeCells(EncodingXML, CompressionGzip, "", cells, 2, 2)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestDecodeUnknownEncoding(t *testing.T) {
	_, err := decodeCells("hex", CompressionNone, "0001", nil, 1, 1)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

// leBytes packs gids as little-endian u32s, the layer payload byte format.
func leBytes(gids ...uint32) []byte {
	out := make([]byte, 4*len(gids))
	for i, g := range gids {
		binary.LittleEndian.PutUint32(out[i*4:], g)
	}
	return out
}

func compressPayload(t *testing.T, compression string, data []byte) string {
	t.Helper()
	buf := &bytes.Buffer{}
	var w io.WriteCloser
	switch compression {
	case CompressionNone:
		return base64.StdEncoding.EncodeToString(data)
	case CompressionGzip:
		w = gzip.NewWriter(buf)
	case CompressionZlib:
		w = zlib.NewWriter(buf)
	case CompressionZstd:
		zw, err := zstd.NewWriter(buf)
		require.Nil(t, err)
		w = zw
	}
	_, err := w.Write(data)
	require.Nil(t, err)
	require.Nil(t, w.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeBase64(t *testing.T) {
	want := []GID{1, 0x80000002, 3, 4, 5, 6}
	raw := leBytes(1, 0x80000002, 3, 4, 5, 6)

	for _, compression := range []string{
		CompressionNone, CompressionGzip, CompressionZlib, CompressionZstd,
	} {
		payload := compressPayload(t, compression, raw)
		gids, err := decodeCells(EncodingBase64, compression, payload, nil, 3, 2)
		assert.Nil(t, err, compression)
		assert.Equal(t, want, gids, compression)
	}
}

func TestDecodeBase64BadPayload(t *testing.T) {
	_, err := decodeCells(EncodingBase64, CompressionNone, "not base64 at all!", nil, 2, 2)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestDecodeBase64LengthMismatch(t *testing.T) {
	// 3 cells of bytes for a 2x2 layer
	payload := base64.StdEncoding.EncodeToString(leBytes(1, 2, 3))
	_, err := decodeCells(EncodingBase64, CompressionNone, payload, nil, 2, 2)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestDecodeBase64TruncatedCompression(t *testing.T) {
	payload := compressPayload(t, CompressionGzip, leBytes(1, 2, 3, 4))
	data, err := base64.StdEncoding.DecodeString(payload)
	require.Nil(t, err)
	truncated := base64.StdEncoding.EncodeToString(data[:len(data)-4])

	_, err = decodeCells(EncodingBase64, CompressionGzip, truncated, nil, 2, 2)
	assert.ErrorIs(t, err, ErrCompression)
}

func TestDecodeBase64UnknownCompression(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(leBytes(1, 2, 3, 4))
	_, err := decodeCells(EncodingBase64, "lzma", payload, nil, 2, 2)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestDecompressionCap(t *testing.T) {
	// a 2x2 layer only permits 16 decompressed bytes; this payload inflates
	// to far more and must abort as a compression failure, not a length
	// mismatch
	big := make([]byte, 1<<16)
	payload := compressPayload(t, CompressionZlib, big)

	_, err := decodeCells(EncodingBase64, CompressionZlib, payload, nil, 2, 2)
	assert.ErrorIs(t, err, ErrCompression)
}
