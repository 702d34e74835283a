package tmx

import (
	"encoding/json"
	"fmt"
	"io"
)

// World is a parsed .world file: a JSON document placing several maps in a
// shared pixel coordinate space. Map contents are not loaded; each entry is
// a file reference for the caller to open and hand to Parse.
type World struct {
	Maps []WorldMap `json:"maps"`

	// OnlyShowAdjacentMaps is editor presentation state, stored verbatim.
	OnlyShowAdjacentMaps bool   `json:"onlyShowAdjacentMaps"`
	Type                 string `json:"type"`
}

// WorldMap references one map and where it sits in the world, in pixels.
type WorldMap struct {
	FileName string `json:"fileName"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ParseWorld reads a world document.
func ParseWorld(r io.Reader) (*World, error) {
	var w World
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}
	return &w, nil
}
