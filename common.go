package tmx

import (
	"fmt"
	"strconv"
	"strings"
)

// Orientation of a map.
type Orientation string

const (
	Orthogonal Orientation = "orthogonal"
	Isometric  Orientation = "isometric"
	Staggered  Orientation = "staggered"
	Hexagonal  Orientation = "hexagonal"
)

func parseOrientation(value string) (Orientation, error) {
	switch Orientation(value) {
	case Orthogonal, Isometric, Staggered, Hexagonal:
		return Orientation(value), nil
	}
	return "", invalidAttr("map", "orientation", value)
}

// RenderOrder is the order in which a renderer should place tiles.
type RenderOrder string

const (
	RightDown RenderOrder = "right-down"
	RightUp   RenderOrder = "right-up"
	LeftDown  RenderOrder = "left-down"
	LeftUp    RenderOrder = "left-up"
)

func parseRenderOrder(value string) (RenderOrder, error) {
	switch RenderOrder(value) {
	case RightDown, RightUp, LeftDown, LeftUp:
		return RenderOrder(value), nil
	}
	return "", invalidAttr("map", "renderorder", value)
}

// DrawOrder of objects within an object group.
type DrawOrder string

const (
	DrawIndex   DrawOrder = "index"
	DrawTopDown DrawOrder = "topdown"
)

func parseDrawOrder(value string) (DrawOrder, error) {
	switch DrawOrder(value) {
	case DrawIndex, DrawTopDown:
		return DrawOrder(value), nil
	}
	return "", invalidAttr("objectgroup", "draworder", value)
}

// Color is an ARGB color as written in map files (#AARRGGBB or #RRGGBB).
type Color struct {
	A, R, G, B uint8
}

// String renders the color back in #AARRGGBB form.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

// parseColor accepts #AARRGGBB or #RRGGBB (alpha defaults to 0xff). The
// leading '#' is optional, matching what the editor writes vs what users type
// in property values.
func parseColor(value string) (Color, error) {
	s := strings.TrimPrefix(value, "#")
	switch len(s) {
	case 6:
		rgb, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return Color{}, err
		}
		return Color{
			A: 0xff,
			R: uint8(rgb >> 16),
			G: uint8(rgb >> 8),
			B: uint8(rgb),
		}, nil
	case 8:
		argb, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return Color{}, err
		}
		return Color{
			A: uint8(argb >> 24),
			R: uint8(argb >> 16),
			G: uint8(argb >> 8),
			B: uint8(argb),
		}, nil
	}
	return Color{}, fmt.Errorf("bad color length %d", len(s))
}

// Point is a 2D coordinate in pixels.
type Point struct {
	X, Y float64
}

// parseBoolAttr reads the "0"/"1" booleans the editor writes for attributes
// like visible and locked.
func parseBoolAttr(element, attribute, value string) (bool, error) {
	switch value {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, invalidAttr(element, attribute, value)
}
