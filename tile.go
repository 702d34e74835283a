package tmx

import "time"

// Region is a pixel rectangle within a tileset's atlas image.
type Region struct {
	X, Y          int
	Width, Height int
}

// Frame is one step of a tile animation.
type Frame struct {
	TileID   uint32
	Duration time.Duration
}

// Animation is an ordered frame sequence that loops indefinitely. It is a
// pure description; FrameAt answers "which frame after this much elapsed
// time", so restarting is just resetting the caller's clock.
type Animation []Frame

// TotalDuration is the length of one full loop.
func (a Animation) TotalDuration() time.Duration {
	var total time.Duration
	for _, f := range a {
		total += f.Duration
	}
	return total
}

// FrameAt returns the frame showing after `elapsed` time, looping forever.
// ok is false for an empty animation or one with no running time.
func (a Animation) FrameAt(elapsed time.Duration) (Frame, bool) {
	total := a.TotalDuration()
	if len(a) == 0 || total <= 0 {
		return Frame{}, false
	}
	elapsed %= total
	for _, f := range a {
		if elapsed < f.Duration {
			return f, true
		}
		elapsed -= f.Duration
	}
	return a[len(a)-1], true // unreachable with positive durations
}

// Tile is a single tile of a tileset. Most tiles are implicit: a lookup for
// an id with no explicit declaration synthesizes one of these with defaults.
type Tile struct {
	ID         uint32
	Class      string
	Properties Properties

	// Image is this tile's own image, set only in image-collection tilesets.
	Image *Image

	// Region is the tile's pixel rectangle in the shared atlas. Nil in
	// image-collection tilesets, where the tile's own Image is the whole
	// region.
	Region *Region

	// Animation is empty for static tiles.
	Animation Animation

	// Collision holds the tile's collision shapes, if any were drawn.
	Collision *ObjectGroup
}

// xmlTile mirrors a <tile> element inside a tileset.
type xmlTile struct {
	ID         *uint32         `xml:"id,attr"`
	Class      string          `xml:"class,attr"`
	Type       string          `xml:"type,attr"`
	Image      *xmlImage       `xml:"image"`
	Animation  []xmlFrame      `xml:"animation>frame"`
	Collision  *xmlObjectGroup `xml:"objectgroup"`
	Properties *xmlProperties  `xml:"properties"`
}

type xmlFrame struct {
	TileID   uint32 `xml:"tileid,attr"`
	Duration int    `xml:"duration,attr"` // milliseconds on the wire
}

func buildTile(in xmlTile, ts *Tileset) (*Tile, error) {
	if in.ID == nil {
		return nil, missingAttr("tile", "id")
	}
	props, err := buildProperties(in.Properties)
	if err != nil {
		return nil, err
	}

	t := &Tile{
		ID:         *in.ID,
		Class:      in.Class,
		Properties: props,
	}
	if t.Class == "" {
		t.Class = in.Type // pre-1.9 files write "type"
	}

	if in.Image != nil {
		img, err := buildImage(in.Image)
		if err != nil {
			return nil, err
		}
		t.Image = img
	}
	// Only atlas tilesets have shared coordinates to compute a region in; a
	// tile with its own image is its own region.
	if t.Image == nil {
		t.Region = ts.atlasRegion(t.ID)
	}

	for _, f := range in.Animation {
		t.Animation = append(t.Animation, Frame{
			TileID:   f.TileID,
			Duration: time.Duration(f.Duration) * time.Millisecond,
		})
	}

	if in.Collision != nil {
		group, err := buildObjectGroup(in.Collision)
		if err != nil {
			return nil, err
		}
		t.Collision = group
	}
	return t, nil
}
