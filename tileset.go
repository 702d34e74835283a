package tmx

import (
	"fmt"
	"sort"
)

// ObjectAlignment controls how objects referencing this tileset's tiles are
// anchored.
type ObjectAlignment string

const (
	AlignUnspecified ObjectAlignment = "unspecified"
	AlignTopLeft     ObjectAlignment = "topleft"
	AlignTop         ObjectAlignment = "top"
	AlignTopRight    ObjectAlignment = "topright"
	AlignLeft        ObjectAlignment = "left"
	AlignCenter      ObjectAlignment = "center"
	AlignRight       ObjectAlignment = "right"
	AlignBottomLeft  ObjectAlignment = "bottomleft"
	AlignBottom      ObjectAlignment = "bottom"
	AlignBottomRight ObjectAlignment = "bottomright"
)

func parseObjectAlignment(value string) (ObjectAlignment, error) {
	switch ObjectAlignment(value) {
	case AlignUnspecified, AlignTopLeft, AlignTop, AlignTopRight, AlignLeft,
		AlignCenter, AlignRight, AlignBottomLeft, AlignBottom, AlignBottomRight:
		return ObjectAlignment(value), nil
	}
	return "", invalidAttr("tileset", "objectalignment", value)
}

// TileRenderSize picks the size tiles of this set render at.
type TileRenderSize string

const (
	RenderTileSize TileRenderSize = "tile"
	RenderGridSize TileRenderSize = "grid"
)

func parseTileRenderSize(value string) (TileRenderSize, error) {
	switch TileRenderSize(value) {
	case RenderTileSize, RenderGridSize:
		return TileRenderSize(value), nil
	}
	return "", invalidAttr("tileset", "tilerendersize", value)
}

// FillMode controls how tiles are stretched when rendered at a non-native size.
type FillMode string

const (
	FillStretch        FillMode = "stretch"
	FillPreserveAspect FillMode = "preserve-aspect-fit"
)

func parseFillMode(value string) (FillMode, error) {
	switch FillMode(value) {
	case FillStretch, FillPreserveAspect:
		return FillMode(value), nil
	}
	return "", invalidAttr("tileset", "fillmode", value)
}

// TileOffset is a pixel offset applied when drawing tiles from a tileset.
type TileOffset struct {
	X, Y int
}

// Grid overrides tile arrangement for the tileset, used by isometric sets.
type Grid struct {
	Orientation Orientation
	Width       int
	Height      int
}

// Image describes an image file referenced by a tileset, tile or image
// layer. Only geometry and the source path are captured; pixels are the
// caller's business.
type Image struct {
	Source string
	Format string
	Width  int
	Height int
	Trans  *Color // transparent color key, if declared
}

// Tileset is a parsed tileset: either the body of a <tileset> element
// embedded in a map, or a whole standalone tileset document.
type Tileset struct {
	Name            string
	Class           string
	TileWidth       int
	TileHeight      int
	Spacing         int
	Margin          int
	TileCount       int
	Columns         int
	ObjectAlignment ObjectAlignment
	TileRenderSize  TileRenderSize
	FillMode        FillMode
	TileOffset      TileOffset
	Grid            *Grid
	Image           *Image // shared atlas; nil for image-collection tilesets
	Properties      Properties

	// Only tiles with explicit declarations are stored; Tile() synthesizes
	// the rest on demand.
	tiles map[uint32]*Tile
}

// IsCollection reports whether this is an image-collection tileset, where
// each tile carries its own image instead of a shared atlas.
func (ts *Tileset) IsCollection() bool {
	return ts.Image == nil
}

// atlasRegion computes the pixel rectangle of a tile id in the shared atlas,
// or nil for collection tilesets where no shared coordinates exist.
func (ts *Tileset) atlasRegion(id uint32) *Region {
	if ts.IsCollection() || ts.Columns <= 0 {
		return nil
	}
	col := int(id) % ts.Columns
	row := int(id) / ts.Columns
	return &Region{
		X:      ts.Margin + col*(ts.TileWidth+ts.Spacing),
		Y:      ts.Margin + row*(ts.TileHeight+ts.Spacing),
		Width:  ts.TileWidth,
		Height: ts.TileHeight,
	}
}

// Tile looks up a tile by local id. Ids inside [0, TileCount) always
// succeed: ids without an explicit declaration synthesize a default tile
// (empty properties, computed atlas region, no animation). Anything outside
// the range fails with ErrTileIDOutOfRange.
func (ts *Tileset) Tile(id uint32) (*Tile, error) {
	if int(id) >= ts.TileCount {
		return nil, fmt.Errorf("%w: %d of %d in tileset %q",
			ErrTileIDOutOfRange, id, ts.TileCount, ts.Name)
	}
	if t, ok := ts.tiles[id]; ok {
		return t, nil
	}
	return &Tile{
		ID:         id,
		Properties: Properties{},
		Region:     ts.atlasRegion(id),
	}, nil
}

// DefinedTiles returns the tiles with explicit declarations, ordered by id.
func (ts *Tileset) DefinedTiles() []*Tile {
	out := make([]*Tile, 0, len(ts.tiles))
	for _, t := range ts.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TilesetEntry is one tileset slot of a map: a first gid plus either an
// embedded tileset or an unresolved reference to an external file. External
// content is never fetched; callers load the source themselves and hand it
// to ParseTileset.
type TilesetEntry struct {
	FirstGID uint32
	Source   string   // external file path, "" when embedded
	Tileset  *Tileset // nil when external
}

// External reports whether this entry only references another file.
func (e TilesetEntry) External() bool {
	return e.Source != ""
}

// TileRef is a resolved tile placement: which tileset entry, which local
// tile, and how the placement is flipped.
type TileRef struct {
	TilesetIndex int
	TileID       uint32
	FlipH        bool
	FlipV        bool
	FlipD        bool
}

// sortEntries orders tileset entries ascending by first gid, which makes
// gid ranges implicit: entry i covers [first_i, first_i+1 - 1], the last
// entry is unbounded above.
func sortEntries(entries []TilesetEntry) ([]TilesetEntry, error) {
	sorted := make([]TilesetEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FirstGID < sorted[j].FirstGID
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].FirstGID == sorted[i-1].FirstGID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateFirstGID, sorted[i].FirstGID)
		}
	}
	return sorted, nil
}

// resolveGID maps a gid to (entry index, local tile id) over sorted entries.
// A nil result with no error means the empty cell.
func resolveGID(entries []TilesetEntry, g GID) (*TileRef, error) {
	raw := g.BareID()
	if raw == 0 {
		return nil, nil
	}
	// Greatest FirstGID <= raw.
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].FirstGID > raw
	})
	if idx == 0 {
		return nil, fmt.Errorf("%w: gid %d below every tileset", ErrGIDOutOfRange, raw)
	}
	entry := entries[idx-1]
	return &TileRef{
		TilesetIndex: idx - 1,
		TileID:       raw - entry.FirstGID,
		FlipH:        g.FlippedHorizontally(),
		FlipV:        g.FlippedVertically(),
		FlipD:        g.FlippedDiagonally(),
	}, nil
}

// xmlTileset mirrors a <tileset> element, either embedded or standalone.
type xmlTileset struct {
	FirstGID        *uint32        `xml:"firstgid,attr"`
	Source          string         `xml:"source,attr"`
	Name            string         `xml:"name,attr"`
	Class           string         `xml:"class,attr"`
	TileWidth       *int           `xml:"tilewidth,attr"`
	TileHeight      *int           `xml:"tileheight,attr"`
	Spacing         int            `xml:"spacing,attr"`
	Margin          int            `xml:"margin,attr"`
	TileCount       int            `xml:"tilecount,attr"`
	Columns         int            `xml:"columns,attr"`
	ObjectAlignment string         `xml:"objectalignment,attr"`
	TileRenderSize  string         `xml:"tilerendersize,attr"`
	FillMode        string         `xml:"fillmode,attr"`
	TileOffset      *xmlTileOffset `xml:"tileoffset"`
	Grid            *xmlGrid       `xml:"grid"`
	Image           *xmlImage      `xml:"image"`
	Tiles           []xmlTile      `xml:"tile"`
	Properties      *xmlProperties `xml:"properties"`
}

type xmlTileOffset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

type xmlGrid struct {
	Orientation string `xml:"orientation,attr"`
	Width       int    `xml:"width,attr"`
	Height      int    `xml:"height,attr"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Format string `xml:"format,attr"`
	Trans  string `xml:"trans,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

func buildImage(in *xmlImage) (*Image, error) {
	img := &Image{
		Source: in.Source,
		Format: in.Format,
		Width:  in.Width,
		Height: in.Height,
	}
	if in.Trans != "" {
		c, err := parseColor(in.Trans)
		if err != nil {
			return nil, invalidAttr("image", "trans", in.Trans)
		}
		img.Trans = &c
	}
	return img, nil
}

// buildTileset assembles the tileset body shared by embedded and standalone
// documents.
func buildTileset(in *xmlTileset) (*Tileset, error) {
	if in.TileWidth == nil {
		return nil, missingAttr("tileset", "tilewidth")
	}
	if in.TileHeight == nil {
		return nil, missingAttr("tileset", "tileheight")
	}
	props, err := buildProperties(in.Properties)
	if err != nil {
		return nil, err
	}

	ts := &Tileset{
		Name:            in.Name,
		Class:           in.Class,
		TileWidth:       *in.TileWidth,
		TileHeight:      *in.TileHeight,
		Spacing:         in.Spacing,
		Margin:          in.Margin,
		TileCount:       in.TileCount,
		Columns:         in.Columns,
		ObjectAlignment: AlignUnspecified,
		TileRenderSize:  RenderTileSize,
		FillMode:        FillStretch,
		Properties:      props,
		tiles:           map[uint32]*Tile{},
	}

	if in.ObjectAlignment != "" {
		if ts.ObjectAlignment, err = parseObjectAlignment(in.ObjectAlignment); err != nil {
			return nil, err
		}
	}
	if in.TileRenderSize != "" {
		if ts.TileRenderSize, err = parseTileRenderSize(in.TileRenderSize); err != nil {
			return nil, err
		}
	}
	if in.FillMode != "" {
		if ts.FillMode, err = parseFillMode(in.FillMode); err != nil {
			return nil, err
		}
	}
	if in.TileOffset != nil {
		ts.TileOffset = TileOffset{X: in.TileOffset.X, Y: in.TileOffset.Y}
	}
	if in.Grid != nil {
		orient := Orthogonal
		if in.Grid.Orientation != "" {
			if orient, err = parseOrientation(in.Grid.Orientation); err != nil {
				return nil, err
			}
		}
		ts.Grid = &Grid{Orientation: orient, Width: in.Grid.Width, Height: in.Grid.Height}
	}
	if in.Image != nil {
		if ts.Image, err = buildImage(in.Image); err != nil {
			return nil, err
		}
	}

	for _, decl := range in.Tiles {
		t, err := buildTile(decl, ts)
		if err != nil {
			return nil, err
		}
		ts.tiles[t.ID] = t
	}
	return ts, nil
}

// buildTilesetEntry handles a <tileset> child of a map: an external
// reference carries only firstgid + source, anything else is parsed as a
// full embedded tileset by the identical rule as standalone documents.
func buildTilesetEntry(in *xmlTileset) (TilesetEntry, error) {
	if in.FirstGID == nil {
		return TilesetEntry{}, missingAttr("tileset", "firstgid")
	}
	if *in.FirstGID < 1 {
		return TilesetEntry{}, invalidAttr("tileset", "firstgid", "0")
	}
	entry := TilesetEntry{FirstGID: *in.FirstGID, Source: in.Source}
	if entry.External() {
		return entry, nil
	}
	ts, err := buildTileset(in)
	if err != nil {
		return TilesetEntry{}, err
	}
	entry.Tileset = ts
	return entry, nil
}
