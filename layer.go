package tmx

import (
	"encoding/xml"
	"fmt"
)

// Layer is one node of a map's layer tree. Exactly one of Tiles, Objects,
// Image and Group is set; the rest of the fields are shared by every kind.
// Sibling order is document order, which is composition (back-to-front)
// order.
type Layer struct {
	ID         int
	Name       string
	Class      string
	Opacity    float64
	Visible    bool
	Locked     bool
	OffsetX    float64
	OffsetY    float64
	ParallaxX  float64
	ParallaxY  float64
	TintColor  *Color
	Properties Properties

	Tiles   *TileLayer
	Objects *ObjectGroup
	Image   *ImageLayer
	Group   *GroupLayer
}

// ImageLayer is a layer showing a single image, such as a backdrop.
type ImageLayer struct {
	Image   *Image
	RepeatX bool
	RepeatY bool
}

// GroupLayer nests other layers. Groups own their children outright; the
// tree cannot cycle.
type GroupLayer struct {
	Layers []Layer
}

// Bounds is a tile-coordinate rectangle. X and Y may be negative on
// infinite maps.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Chunk is a rectangular, independently encoded sub-region of an infinite
// tile layer.
type Chunk struct {
	X, Y          int // origin in tile coordinates, possibly negative
	Width, Height int

	gids []GID
}

// GIDAt returns the raw GID at world tile coordinates, or 0 outside the
// chunk.
func (c *Chunk) GIDAt(x, y int) GID {
	lx, ly := x-c.X, y-c.Y
	if lx < 0 || lx >= c.Width || ly < 0 || ly >= c.Height {
		return 0
	}
	return c.gids[ly*c.Width+lx]
}

// TileLayer holds a layer's raw GIDs: a dense row-major grid on finite
// maps, a sparse set of chunks on infinite ones.
type TileLayer struct {
	// Width and Height are the declared layer size. Meaningful on finite
	// maps; on infinite maps use Bounds instead.
	Width  int
	Height int

	infinite bool
	grid     []GID
	chunks   []Chunk
	bounds   Bounds

	// Origin-keyed chunk lookup, built when every chunk shares one aligned
	// size. chunkW is 0 when chunks are irregular and lookups must scan.
	chunkW, chunkH int
	chunkIndex     map[[2]int]int
}

// Infinite reports whether the layer stores chunks rather than one grid.
func (l *TileLayer) Infinite() bool {
	return l.infinite
}

// Chunks returns the layer's chunks in declaration order. Empty on finite
// maps.
func (l *TileLayer) Chunks() []Chunk {
	return l.chunks
}

// Bounds is the full declared extent: the layer rectangle on finite maps,
// the bounding box of the union of all chunks on infinite ones.
func (l *TileLayer) Bounds() Bounds {
	return l.bounds
}

// GIDAt returns the raw GID at tile coordinates. Coordinates outside the
// bounds, or inside the bounds but covered by no chunk, yield 0.
func (l *TileLayer) GIDAt(x, y int) GID {
	if !l.infinite {
		if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
			return 0
		}
		return l.grid[y*l.Width+x]
	}
	if l.chunkIndex != nil {
		i, ok := l.chunkIndex[[2]int{floorDiv(x, l.chunkW), floorDiv(y, l.chunkH)}]
		if !ok {
			return 0
		}
		c := &l.chunks[i]
		return c.gids[(y-c.Y)*c.Width+(x-c.X)]
	}
	// Chunks don't overlap, so the first one covering the point is
	// authoritative even when it holds 0.
	for i := range l.chunks {
		c := &l.chunks[i]
		if x >= c.X && x < c.X+c.Width && y >= c.Y && y < c.Y+c.Height {
			return c.gids[(y-c.Y)*c.Width+(x-c.X)]
		}
	}
	return 0
}

// indexChunks builds the origin-keyed lookup when every chunk shares the
// same size and sits aligned to it, which is how the editor writes infinite
// maps. Anything irregular leaves the index unset.
func (l *TileLayer) indexChunks() {
	if len(l.chunks) == 0 {
		return
	}
	w, h := l.chunks[0].Width, l.chunks[0].Height
	idx := make(map[[2]int]int, len(l.chunks))
	for i, c := range l.chunks {
		if c.Width != w || c.Height != h || c.X%w != 0 || c.Y%h != 0 {
			return
		}
		idx[[2]int{c.X / w, c.Y / h}] = i
	}
	l.chunkW, l.chunkH = w, h
	l.chunkIndex = idx
}

// floorDiv rounds toward negative infinity, unlike Go's truncating division,
// so negative tile coordinates land in the right chunk.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Iterate walks every (x, y, gid) cell of the layer's bounds in row-major
// order, lazily. The iterator is restartable via Reset.
func (l *TileLayer) Iterate() *TileIterator {
	return &TileIterator{layer: l, bounds: l.Bounds()}
}

// TileIterator yields the cells of a TileLayer one at a time.
type TileIterator struct {
	layer  *TileLayer
	bounds Bounds
	i      int
}

// Next returns the next cell. ok is false once the bounds are exhausted.
func (it *TileIterator) Next() (x, y int, gid GID, ok bool) {
	if it.bounds.Width <= 0 || it.i >= it.bounds.Width*it.bounds.Height {
		return 0, 0, 0, false
	}
	x = it.bounds.X + it.i%it.bounds.Width
	y = it.bounds.Y + it.i/it.bounds.Width
	it.i++
	return x, y, it.layer.GIDAt(x, y), true
}

// Reset rewinds the iterator to the first cell.
func (it *TileIterator) Reset() {
	it.i = 0
}

// xmlLayerAttrs are the attributes shared by every layer kind.
type xmlLayerAttrs struct {
	ID        *int     `xml:"id,attr"`
	Name      string   `xml:"name,attr"`
	Class     string   `xml:"class,attr"`
	Opacity   *float64 `xml:"opacity,attr"`
	Visible   string   `xml:"visible,attr"`
	Locked    string   `xml:"locked,attr"`
	OffsetX   float64  `xml:"offsetx,attr"`
	OffsetY   float64  `xml:"offsety,attr"`
	ParallaxX *float64 `xml:"parallaxx,attr"`
	ParallaxY *float64 `xml:"parallaxy,attr"`
	TintColor string   `xml:"tintcolor,attr"`
}

type xmlTileLayer struct {
	xmlLayerAttrs
	Width      *int           `xml:"width,attr"`
	Height     *int           `xml:"height,attr"`
	Data       xmlData        `xml:"data"`
	Properties *xmlProperties `xml:"properties"`
}

type xmlImageLayer struct {
	xmlLayerAttrs
	RepeatX    int            `xml:"repeatx,attr"`
	RepeatY    int            `xml:"repeaty,attr"`
	Image      *xmlImage      `xml:"image"`
	Properties *xmlProperties `xml:"properties"`
}

type xmlGroup struct {
	xmlLayerAttrs
	Properties *xmlProperties `xml:"properties"`
	Children   []xmlLayerNode `xml:",any"`
}

// xmlLayerNode is one child of a map or group in document order. The
// concrete wire struct is chosen by tag name at decode time, which is what
// keeps sibling order intact across the four layer kinds.
type xmlLayerNode struct {
	name    string
	tile    *xmlTileLayer
	objects *xmlObjectGroup
	image   *xmlImageLayer
	group   *xmlGroup
}

func (n *xmlLayerNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.name = start.Name.Local
	switch start.Name.Local {
	case "layer":
		n.tile = &xmlTileLayer{}
		return d.DecodeElement(n.tile, &start)
	case "objectgroup":
		n.objects = &xmlObjectGroup{}
		return d.DecodeElement(n.objects, &start)
	case "imagelayer":
		n.image = &xmlImageLayer{}
		return d.DecodeElement(n.image, &start)
	case "group":
		n.group = &xmlGroup{}
		return d.DecodeElement(n.group, &start)
	}
	// Unknown kinds fail at build time, after the document is fully read.
	return d.Skip()
}

// buildLayers assembles an ordered run of sibling layers.
func buildLayers(nodes []xmlLayerNode, infinite bool) ([]Layer, error) {
	layers := make([]Layer, 0, len(nodes))
	for _, node := range nodes {
		layer, err := buildLayer(node, infinite)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

func buildLayer(node xmlLayerNode, infinite bool) (Layer, error) {
	switch node.name {
	case "layer":
		layer, err := buildLayerCommon("layer", node.tile.xmlLayerAttrs, node.tile.Properties)
		if err != nil {
			return Layer{}, err
		}
		layer.Tiles, err = buildTileLayer(node.tile, infinite)
		return layer, err

	case "objectgroup":
		layer, err := buildLayerCommon("objectgroup", node.objects.xmlLayerAttrs, node.objects.Properties)
		if err != nil {
			return Layer{}, err
		}
		layer.Objects, err = buildObjectGroup(node.objects)
		return layer, err

	case "imagelayer":
		layer, err := buildLayerCommon("imagelayer", node.image.xmlLayerAttrs, node.image.Properties)
		if err != nil {
			return Layer{}, err
		}
		img := &ImageLayer{RepeatX: node.image.RepeatX != 0, RepeatY: node.image.RepeatY != 0}
		if node.image.Image != nil {
			if img.Image, err = buildImage(node.image.Image); err != nil {
				return Layer{}, err
			}
		}
		layer.Image = img
		return layer, nil

	case "group":
		layer, err := buildLayerCommon("group", node.group.xmlLayerAttrs, node.group.Properties)
		if err != nil {
			return Layer{}, err
		}
		children, err := buildLayers(node.group.Children, infinite)
		if err != nil {
			return Layer{}, err
		}
		layer.Group = &GroupLayer{Layers: children}
		return layer, nil
	}
	return Layer{}, fmt.Errorf("%w: <%s>", ErrUnknownLayerKind, node.name)
}

func buildLayerCommon(element string, attrs xmlLayerAttrs, props *xmlProperties) (Layer, error) {
	if attrs.ID == nil {
		return Layer{}, missingAttr(element, "id")
	}
	properties, err := buildProperties(props)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		ID:         *attrs.ID,
		Name:       attrs.Name,
		Class:      attrs.Class,
		Opacity:    1,
		Visible:    true,
		OffsetX:    attrs.OffsetX,
		OffsetY:    attrs.OffsetY,
		ParallaxX:  1,
		ParallaxY:  1,
		Properties: properties,
	}
	if attrs.Opacity != nil {
		if *attrs.Opacity < 0 || *attrs.Opacity > 1 {
			return Layer{}, invalidAttr(element, "opacity", fmt.Sprintf("%v", *attrs.Opacity))
		}
		layer.Opacity = *attrs.Opacity
	}
	if attrs.Visible != "" {
		if layer.Visible, err = parseBoolAttr(element, "visible", attrs.Visible); err != nil {
			return Layer{}, err
		}
	}
	if attrs.Locked != "" {
		if layer.Locked, err = parseBoolAttr(element, "locked", attrs.Locked); err != nil {
			return Layer{}, err
		}
	}
	if attrs.ParallaxX != nil {
		layer.ParallaxX = *attrs.ParallaxX
	}
	if attrs.ParallaxY != nil {
		layer.ParallaxY = *attrs.ParallaxY
	}
	if attrs.TintColor != "" {
		c, err := parseColor(attrs.TintColor)
		if err != nil {
			return Layer{}, invalidAttr(element, "tintcolor", attrs.TintColor)
		}
		layer.TintColor = &c
	}
	return layer, nil
}

func buildTileLayer(in *xmlTileLayer, infinite bool) (*TileLayer, error) {
	if in.Width == nil {
		return nil, missingAttr("layer", "width")
	}
	if in.Height == nil {
		return nil, missingAttr("layer", "height")
	}
	if *in.Width < 0 {
		return nil, invalidAttr("layer", "width", fmt.Sprint(*in.Width))
	}
	if *in.Height < 0 {
		return nil, invalidAttr("layer", "height", fmt.Sprint(*in.Height))
	}
	layer := &TileLayer{
		Width:    *in.Width,
		Height:   *in.Height,
		infinite: infinite,
	}

	if !infinite {
		gids, err := decodeCells(in.Data.Encoding, in.Data.Compression,
			in.Data.Raw, in.Data.Tiles, layer.Width, layer.Height)
		if err != nil {
			return nil, err
		}
		layer.grid = gids
		layer.bounds = Bounds{Width: layer.Width, Height: layer.Height}
		return layer, nil
	}

	seen := map[[2]int]bool{}
	for _, c := range in.Data.Chunks {
		if c.X == nil {
			return nil, missingAttr("chunk", "x")
		}
		if c.Y == nil {
			return nil, missingAttr("chunk", "y")
		}
		if c.Width == nil {
			return nil, missingAttr("chunk", "width")
		}
		if c.Height == nil {
			return nil, missingAttr("chunk", "height")
		}
		if *c.Width <= 0 {
			return nil, invalidAttr("chunk", "width", fmt.Sprint(*c.Width))
		}
		if *c.Height <= 0 {
			return nil, invalidAttr("chunk", "height", fmt.Sprint(*c.Height))
		}
		origin := [2]int{*c.X, *c.Y}
		if seen[origin] {
			return nil, fmt.Errorf("%w: origin (%d,%d)", ErrDuplicateChunk, *c.X, *c.Y)
		}
		seen[origin] = true

		gids, err := decodeCells(in.Data.Encoding, in.Data.Compression,
			c.Raw, c.Tiles, *c.Width, *c.Height)
		if err != nil {
			return nil, err
		}
		layer.chunks = append(layer.chunks, Chunk{
			X: *c.X, Y: *c.Y, Width: *c.Width, Height: *c.Height, gids: gids,
		})
	}
	layer.bounds = chunkBounds(layer.chunks)
	layer.indexChunks()
	return layer, nil
}

// chunkBounds is the bounding box of the union of all chunks.
func chunkBounds(chunks []Chunk) Bounds {
	if len(chunks) == 0 {
		return Bounds{}
	}
	minX, minY := chunks[0].X, chunks[0].Y
	maxX, maxY := chunks[0].X+chunks[0].Width, chunks[0].Y+chunks[0].Height
	for _, c := range chunks[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.X+c.Width > maxX {
			maxX = c.X + c.Width
		}
		if c.Y+c.Height > maxY {
			maxY = c.Y + c.Height
		}
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
