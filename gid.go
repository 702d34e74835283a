package tmx

// Flip bit masks packed into the top of a GID.
// see doc.mapeditor.org/en/stable/reference/tmx-map-format/#tile-flipping
const (
	FlippedHorizontally = 0x80000000
	FlippedVertically   = 0x40000000
	FlippedDiagonally   = 0x20000000
	flipMask            = FlippedHorizontally | FlippedVertically | FlippedDiagonally
)

// GID is a global tile identifier as stored in layer data: the low 29 bits
// are a raw tile id, the top 3 bits are independent flip flags. A bare id of
// 0 always means "no tile here" regardless of flip bits.
//
// Some format revisions reserve bit 28 for hex-map rotation; this library
// decodes only the three documented flip bits and leaves bit 28 in the id.
type GID uint32

// MakeGID packs a raw tile id and flip flags into a GID. It is the exact
// inverse of the accessor methods. An id of 0 produces GID 0 whatever the
// flags say, since flip bits are meaningless on an empty cell.
func MakeGID(id uint32, flipH, flipV, flipD bool) GID {
	if id == 0 {
		return 0
	}
	g := GID(id &^ uint32(flipMask))
	if flipH {
		g |= FlippedHorizontally
	}
	if flipV {
		g |= FlippedVertically
	}
	if flipD {
		g |= FlippedDiagonally
	}
	return g
}

// BareID returns the raw tile id with flip information stripped.
func (g GID) BareID() uint32 {
	return uint32(g &^ flipMask)
}

// IsNil reports whether this GID denotes an empty cell.
func (g GID) IsNil() bool {
	return g.BareID() == 0
}

// FlippedHorizontally reports whether the placement is mirrored on the x axis.
func (g GID) FlippedHorizontally() bool {
	return g&FlippedHorizontally != 0
}

// FlippedVertically reports whether the placement is mirrored on the y axis.
func (g GID) FlippedVertically() bool {
	return g&FlippedVertically != 0
}

// FlippedDiagonally reports whether the placement is mirrored across the
// tile diagonal (used to express rotation).
func (g GID) FlippedDiagonally() bool {
	return g&FlippedDiagonally != 0
}
