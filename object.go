package tmx

import (
	"strconv"
	"strings"
)

// ObjectKind discriminates the shape variants of an Object.
type ObjectKind int

const (
	RectangleObject ObjectKind = iota
	EllipseObject
	PointObject
	PolygonObject
	PolylineObject
	TextObject
	TileObject
)

func (k ObjectKind) String() string {
	switch k {
	case RectangleObject:
		return "rectangle"
	case EllipseObject:
		return "ellipse"
	case PointObject:
		return "point"
	case PolygonObject:
		return "polygon"
	case PolylineObject:
		return "polyline"
	case TextObject:
		return "text"
	case TileObject:
		return "tile"
	}
	return "unknown"
}

// Text holds the content and styling of a text object.
type Text struct {
	Value      string
	FontFamily string
	PixelSize  int
	Wrap       bool
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Kerning    bool
	HAlign     string
	VAlign     string
	Color      *Color
}

// Object is a single shape placed on an object layer. Kind selects which of
// the shape fields are meaningful.
type Object struct {
	ID         int
	Name       string
	Class      string
	X, Y       float64
	Width      float64
	Height     float64
	Rotation   float64
	Visible    bool
	Properties Properties

	Kind ObjectKind

	// Points are offsets relative to (X, Y); set for polygons and polylines.
	Points []Point

	// Text is set for text objects.
	Text *Text

	// GID references a tile for tile objects; flips are part of the GID.
	GID GID
}

// ObjectGroup is a set of objects: the payload of an object layer, or a
// tile's collision shapes.
type ObjectGroup struct {
	DrawOrder DrawOrder
	Color     *Color
	Objects   []Object
}

// xmlObject mirrors an <object> element. Shape is determined by which child
// element is present; a bare object is a rectangle.
type xmlObject struct {
	ID         *int           `xml:"id,attr"`
	Name       string         `xml:"name,attr"`
	Class      string         `xml:"class,attr"`
	Type       string         `xml:"type,attr"`
	X          *float64       `xml:"x,attr"`
	Y          *float64       `xml:"y,attr"`
	Width      float64        `xml:"width,attr"`
	Height     float64        `xml:"height,attr"`
	Rotation   float64        `xml:"rotation,attr"`
	GID        *uint32        `xml:"gid,attr"`
	Visible    string         `xml:"visible,attr"`
	Ellipse    *struct{}      `xml:"ellipse"`
	Point      *struct{}      `xml:"point"`
	Polygon    *xmlPoints     `xml:"polygon"`
	Polyline   *xmlPoints     `xml:"polyline"`
	Text       *xmlText       `xml:"text"`
	Properties *xmlProperties `xml:"properties"`
}

type xmlPoints struct {
	Points string `xml:"points,attr"`
}

type xmlText struct {
	FontFamily string `xml:"fontfamily,attr"`
	PixelSize  int    `xml:"pixelsize,attr"`
	Wrap       int    `xml:"wrap,attr"`
	Bold       int    `xml:"bold,attr"`
	Italic     int    `xml:"italic,attr"`
	Underline  int    `xml:"underline,attr"`
	Strikeout  int    `xml:"strikeout,attr"`
	Kerning    *int   `xml:"kerning,attr"`
	HAlign     string `xml:"halign,attr"`
	VAlign     string `xml:"valign,attr"`
	Color      string `xml:"color,attr"`
	Value      string `xml:",chardata"`
}

type xmlObjectGroup struct {
	xmlLayerAttrs
	Color      *string        `xml:"color,attr"`
	DrawOrder  string         `xml:"draworder,attr"`
	Objects    []xmlObject    `xml:"object"`
	Properties *xmlProperties `xml:"properties"`
}

func buildObjectGroup(in *xmlObjectGroup) (*ObjectGroup, error) {
	group := &ObjectGroup{DrawOrder: DrawIndex}
	var err error
	if in.DrawOrder != "" {
		if group.DrawOrder, err = parseDrawOrder(in.DrawOrder); err != nil {
			return nil, err
		}
	}
	if in.Color != nil {
		c, err := parseColor(*in.Color)
		if err != nil {
			return nil, invalidAttr("objectgroup", "color", *in.Color)
		}
		group.Color = &c
	}
	for _, decl := range in.Objects {
		obj, err := buildObject(decl)
		if err != nil {
			return nil, err
		}
		group.Objects = append(group.Objects, obj)
	}
	return group, nil
}

func buildObject(in xmlObject) (Object, error) {
	if in.ID == nil {
		return Object{}, missingAttr("object", "id")
	}
	if in.X == nil {
		return Object{}, missingAttr("object", "x")
	}
	if in.Y == nil {
		return Object{}, missingAttr("object", "y")
	}
	props, err := buildProperties(in.Properties)
	if err != nil {
		return Object{}, err
	}

	obj := Object{
		ID:         *in.ID,
		Name:       in.Name,
		Class:      in.Class,
		X:          *in.X,
		Y:          *in.Y,
		Width:      in.Width,
		Height:     in.Height,
		Rotation:   in.Rotation,
		Visible:    true,
		Properties: props,
	}
	if obj.Class == "" {
		obj.Class = in.Type
	}
	if in.Visible != "" {
		if obj.Visible, err = parseBoolAttr("object", "visible", in.Visible); err != nil {
			return Object{}, err
		}
	}

	// Shape dispatch. Tile references win because the gid attribute decides
	// the object's appearance regardless of size.
	switch {
	case in.GID != nil:
		obj.Kind = TileObject
		obj.GID = GID(*in.GID)
	case in.Point != nil:
		obj.Kind = PointObject
	case in.Ellipse != nil:
		obj.Kind = EllipseObject
	case in.Polygon != nil:
		obj.Kind = PolygonObject
		if obj.Points, err = parsePoints(in.Polygon.Points); err != nil {
			return Object{}, err
		}
	case in.Polyline != nil:
		obj.Kind = PolylineObject
		if obj.Points, err = parsePoints(in.Polyline.Points); err != nil {
			return Object{}, err
		}
	case in.Text != nil:
		obj.Kind = TextObject
		if obj.Text, err = buildText(in.Text); err != nil {
			return Object{}, err
		}
	default:
		obj.Kind = RectangleObject
	}
	return obj, nil
}

// parsePoints reads a "x0,y0 x1,y1 ..." list of offsets relative to the
// object's origin, preserving order.
func parsePoints(raw string) ([]Point, error) {
	pairs := strings.Fields(raw)
	points := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, invalidAttr("polygon", "points", pair)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, invalidAttr("polygon", "points", pair)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, invalidAttr("polygon", "points", pair)
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}

func buildText(in *xmlText) (*Text, error) {
	t := &Text{
		Value:      strings.TrimSpace(in.Value),
		FontFamily: in.FontFamily,
		PixelSize:  in.PixelSize,
		Wrap:       in.Wrap != 0,
		Bold:       in.Bold != 0,
		Italic:     in.Italic != 0,
		Underline:  in.Underline != 0,
		Strikeout:  in.Strikeout != 0,
		Kerning:    true,
		HAlign:     in.HAlign,
		VAlign:     in.VAlign,
	}
	if t.FontFamily == "" {
		t.FontFamily = "sans-serif"
	}
	if t.PixelSize == 0 {
		t.PixelSize = 16
	}
	if in.Kerning != nil {
		t.Kerning = *in.Kerning != 0
	}
	if in.Color != "" {
		c, err := parseColor(in.Color)
		if err != nil {
			return nil, invalidAttr("text", "color", in.Color)
		}
		t.Color = &c
	}
	return t, nil
}
