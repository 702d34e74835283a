package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Tile layer data encodings and compressions accepted on the wire.
const (
	EncodingXML    = "" // one <tile> element per cell
	EncodingCSV    = "csv"
	EncodingBase64 = "base64"

	CompressionNone = ""
	CompressionGzip = "gzip"
	CompressionZlib = "zlib"
	CompressionZstd = "zstd"
)

// xmlData mirrors a <data> element: either payload text, per-cell <tile>
// children, or <chunk> children on infinite maps.
type xmlData struct {
	Encoding    string        `xml:"encoding,attr"`
	Compression string        `xml:"compression,attr"`
	Tiles       []xmlDataTile `xml:"tile"`
	Chunks      []xmlChunk    `xml:"chunk"`
	Raw         string        `xml:",chardata"`
}

type xmlDataTile struct {
	GID uint32 `xml:"gid,attr"`
}

type xmlChunk struct {
	X      *int          `xml:"x,attr"`
	Y      *int          `xml:"y,attr"`
	Width  *int          `xml:"width,attr"`
	Height *int          `xml:"height,attr"`
	Tiles  []xmlDataTile `xml:"tile"`
	Raw    string        `xml:",chardata"`
}

// decodeCells turns one encoded payload into exactly width*height raw GIDs in
// row-major, top-left-origin order. Chunks on infinite maps reuse this with
// their own dimensions and payload.
func decodeCells(encoding, compression, raw string, cells []xmlDataTile, width, height int) ([]GID, error) {
	want := width * height

	switch encoding {
	case EncodingXML:
		// Per-cell elements are already ordered; nothing to decode, but a
		// declared compression makes no sense without a byte payload.
		if compression != CompressionNone {
			return nil, fmt.Errorf("%w: per-cell tile elements with compression %q",
				ErrUnsupportedEncoding, compression)
		}
		if len(cells) != want {
			return nil, fmt.Errorf("%w: %d tile elements for %dx%d layer",
				ErrDecoding, len(cells), width, height)
		}
		gids := make([]GID, want)
		for i, c := range cells {
			gids[i] = GID(c.GID)
		}
		return gids, nil

	case EncodingCSV:
		if compression != CompressionNone {
			return nil, fmt.Errorf("%w: csv with compression %q",
				ErrUnsupportedEncoding, compression)
		}
		return decodeCSV(raw, want)

	case EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrDecoding, err)
		}
		data, err = decompress(compression, data, want*4)
		if err != nil {
			return nil, err
		}
		if len(data) != want*4 {
			return nil, fmt.Errorf("%w: %d bytes for %dx%d layer, want %d",
				ErrDecoding, len(data), width, height, want*4)
		}
		gids := make([]GID, want)
		for i := range gids {
			gids[i] = GID(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return gids, nil
	}

	return nil, fmt.Errorf("%w: encoding %q", ErrUnsupportedEncoding, encoding)
}

// decodeCSV splits on commas and newlines and parses unsigned decimal GIDs.
func decodeCSV(raw string, want int) ([]GID, error) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	gids := make([]GID, 0, want)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: csv token %q", ErrDecoding, tok)
		}
		gids = append(gids, GID(v))
	}
	if len(gids) != want {
		return nil, fmt.Errorf("%w: %d csv values, want %d", ErrDecoding, len(gids), want)
	}
	return gids, nil
}

// decompress inflates data per the declared compression. Output is hard
// capped at `limit` bytes so a hostile payload cannot amplify into unbounded
// memory; exceeding the cap is a compression failure, not a length mismatch.
func decompress(compression string, data []byte, limit int) ([]byte, error) {
	var r io.Reader
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
		defer gz.Close()
		r = gz
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
		defer zr.Close()
		r = zr
	case CompressionZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedEncoding, compression)
	}

	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	if len(out) > limit {
		return nil, fmt.Errorf("%w: output exceeds %d byte cap", ErrCompression, limit)
	}
	return out, nil
}
