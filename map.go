/*
Package tmx parses the Tiled map editor's XML map (.tmx) and tileset (.tsx)
documents into an immutable in-memory model.

Parsing is synchronous and atomic: a call either returns a fully built
document or an error, never a partial one. Parsed documents are never
mutated by this package and are safe to share across goroutines without
locking. The package does no file or network I/O of its own; externally
referenced tilesets surface as unresolved source paths for the caller to
load and feed to ParseTileset.
*/
package tmx

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Map is a parsed map document.
type Map struct {
	Version      string
	Class        string
	Orientation  Orientation
	RenderOrder  RenderOrder
	Width        int
	Height       int
	TileWidth    int
	TileHeight   int
	Infinite     bool
	Background   *Color
	NextLayerID  int // stored editor counter, not validated
	NextObjectID int // stored editor counter, not validated
	Properties   Properties

	// Tilesets is ordered ascending by FirstGID; each entry's gid range runs
	// to the next entry's FirstGID, the last entry is unbounded.
	Tilesets []TilesetEntry

	// Layers is the root run of the layer tree in document (back-to-front)
	// order.
	Layers []Layer
}

// Resolve maps a GID to the tileset entry and local tile id that own it.
// The empty cell (bare id 0) resolves to (nil, nil); a non-null gid below
// every entry fails with ErrGIDOutOfRange.
func (m *Map) Resolve(g GID) (*TileRef, error) {
	return resolveGID(m.Tilesets, g)
}

// Walk visits every layer in the tree depth-first in document order. The
// path is the slash-joined names of the enclosing groups and the layer
// itself. Walking stops at the first error.
func (m *Map) Walk(visit func(path string, layer *Layer) error) error {
	return walkLayers("", m.Layers, visit)
}

func walkLayers(prefix string, layers []Layer, visit func(string, *Layer) error) error {
	for i := range layers {
		l := &layers[i]
		path := l.Name
		if prefix != "" {
			path = prefix + "/" + l.Name
		}
		if err := visit(path, l); err != nil {
			return err
		}
		if l.Group != nil {
			if err := walkLayers(path, l.Group.Layers, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// xmlMap mirrors the root <map> element. Layer-like children land in the
// ,any bucket so their relative order survives.
type xmlMap struct {
	XMLName      xml.Name       `xml:"map"`
	Version      string         `xml:"version,attr"`
	Class        string         `xml:"class,attr"`
	Orientation  string         `xml:"orientation,attr"`
	RenderOrder  string         `xml:"renderorder,attr"`
	Width        *int           `xml:"width,attr"`
	Height       *int           `xml:"height,attr"`
	TileWidth    *int           `xml:"tilewidth,attr"`
	TileHeight   *int           `xml:"tileheight,attr"`
	Infinite     string         `xml:"infinite,attr"`
	Background   string         `xml:"backgroundcolor,attr"`
	NextLayerID  int            `xml:"nextlayerid,attr"`
	NextObjectID int            `xml:"nextobjectid,attr"`
	Tilesets     []xmlTileset   `xml:"tileset"`
	Properties   *xmlProperties `xml:"properties"`
	Layers       []xmlLayerNode `xml:",any"`
}

// Parse reads a map document. The whole input is consumed; the first
// failure aborts with no partial result.
func Parse(r io.Reader) (*Map, error) {
	var doc xmlMap
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}
	return buildMap(&doc)
}

// ParseTileset reads a standalone tileset document, such as the target of a
// TilesetEntry source path.
func ParseTileset(r io.Reader) (*Tileset, error) {
	var doc xmlTileset
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}
	return buildTileset(&doc)
}

func buildMap(doc *xmlMap) (*Map, error) {
	if doc.Width == nil {
		return nil, missingAttr("map", "width")
	}
	if doc.Height == nil {
		return nil, missingAttr("map", "height")
	}
	if doc.TileWidth == nil {
		return nil, missingAttr("map", "tilewidth")
	}
	if doc.TileHeight == nil {
		return nil, missingAttr("map", "tileheight")
	}

	m := &Map{
		Version:      doc.Version,
		Class:        doc.Class,
		Orientation:  Orthogonal,
		RenderOrder:  RightDown,
		Width:        *doc.Width,
		Height:       *doc.Height,
		TileWidth:    *doc.TileWidth,
		TileHeight:   *doc.TileHeight,
		NextLayerID:  doc.NextLayerID,
		NextObjectID: doc.NextObjectID,
	}

	var err error
	if doc.Orientation != "" {
		if m.Orientation, err = parseOrientation(doc.Orientation); err != nil {
			return nil, err
		}
	}
	if doc.RenderOrder != "" {
		if m.RenderOrder, err = parseRenderOrder(doc.RenderOrder); err != nil {
			return nil, err
		}
	}
	if doc.Infinite != "" {
		if m.Infinite, err = parseBoolAttr("map", "infinite", doc.Infinite); err != nil {
			return nil, err
		}
	}
	if doc.Background != "" {
		c, err := parseColor(doc.Background)
		if err != nil {
			return nil, invalidAttr("map", "backgroundcolor", doc.Background)
		}
		m.Background = &c
	}
	if m.Properties, err = buildProperties(doc.Properties); err != nil {
		return nil, err
	}

	entries := make([]TilesetEntry, 0, len(doc.Tilesets))
	for i := range doc.Tilesets {
		entry, err := buildTilesetEntry(&doc.Tilesets[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if m.Tilesets, err = sortEntries(entries); err != nil {
		return nil, err
	}

	if m.Layers, err = buildLayers(doc.Layers, m.Infinite); err != nil {
		return nil, err
	}
	return m, nil
}
