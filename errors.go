package tmx

import (
	"errors"
	"fmt"
)

// Possible errors. Parsing stops at the first failure; there is never a
// partially built document. Errors carry context via wrapping, so callers
// should match with errors.Is.
var (
	// ErrMalformedMarkup wraps any error surfaced by the XML decoder itself.
	ErrMalformedMarkup = errors.New("tmx: malformed markup")

	// ErrMissingAttribute means a required attribute was absent on an element.
	ErrMissingAttribute = errors.New("tmx: missing required attribute")

	// ErrInvalidAttribute means an attribute was present but unparseable or
	// out of its allowed range.
	ErrInvalidAttribute = errors.New("tmx: invalid attribute value")

	// ErrInvalidPropertyType means a property declared a type tag this
	// library does not know.
	ErrInvalidPropertyType = errors.New("tmx: invalid property type")

	// ErrInvalidPropertyValue means a property value did not parse under its
	// declared type.
	ErrInvalidPropertyValue = errors.New("tmx: invalid property value")

	// ErrDuplicateProperty means one property set declared the same name twice.
	ErrDuplicateProperty = errors.New("tmx: duplicate property name")

	// ErrUnsupportedEncoding means the encoding/compression combination on a
	// data element is not a legal one.
	ErrUnsupportedEncoding = errors.New("tmx: unsupported encoding combination")

	// ErrCompression means decompressing a tile data payload failed, or the
	// decompressed output tried to exceed the layer's size cap.
	ErrCompression = errors.New("tmx: compression failure")

	// ErrDecoding means a tile data payload did not decode to the expected
	// cell count.
	ErrDecoding = errors.New("tmx: decoding failure")

	// ErrDuplicateChunk means two chunks in one layer declared the same origin.
	ErrDuplicateChunk = errors.New("tmx: duplicate chunk")

	// ErrGIDOutOfRange means a non-null GID is below every tileset entry's
	// first gid, or the map has no tilesets at all.
	ErrGIDOutOfRange = errors.New("tmx: gid out of range")

	// ErrDuplicateFirstGID means two tileset entries share a first gid.
	ErrDuplicateFirstGID = errors.New("tmx: duplicate first gid")

	// ErrUnknownLayerKind means a map or group contained an element that is
	// not one of layer, objectgroup, imagelayer or group.
	ErrUnknownLayerKind = errors.New("tmx: unknown layer kind")

	// ErrTileIDOutOfRange means a tile lookup was outside [0, tile count).
	ErrTileIDOutOfRange = errors.New("tmx: tile id out of range")
)

// missingAttr builds the standard wrapped error for an absent attribute.
func missingAttr(element, attribute string) error {
	return fmt.Errorf("%w: <%s> requires %q", ErrMissingAttribute, element, attribute)
}

// invalidAttr builds the standard wrapped error for an unparseable attribute.
func invalidAttr(element, attribute, value string) error {
	return fmt.Errorf("%w: <%s> %s=%q", ErrInvalidAttribute, element, attribute, value)
}
