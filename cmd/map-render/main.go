package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fogleman/gg"
	"github.com/go-yaml/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/nfnt/resize"

	"github.com/tilekit/tmx"
)

const desc = `Renders a schematic preview of a .tmx map to a png.

Cells are drawn as flat colored rectangles keyed by tileset, not by tile image, so the
output shows the map's structure without needing any tileset images on disk. Colors come
from an optional yaml palette file mapping tileset index to a hex color.`

const defaultPalettePath = "~/.config/map-render/palette.yaml"

var cli struct {
	Input  string `arg:"" help:"input .tmx map file"`
	Output string `short:"o" help:"output png path. Defaults to input + .png"`

	Palette string `help:"yaml palette file mapping tileset index to '#rrggbb' colors"`

	// final image scaling, applied after the render
	Scale float64 `default:"1.0" help:"scale the output image by this factor"`

	CellSize int  `default:"8" help:"rendered size of one cell in px"`
	NoGrid   bool `help:"skip drawing cell grid lines"`
}

// palette maps tileset index to a draw color. Index -1 is the background.
type palette map[int]string

var defaultColors = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func main() {
	kong.Parse(&cli, kong.Name("map-render"), kong.Description(desc))

	if cli.Output == "" {
		cli.Output = fmt.Sprintf("%s.png", cli.Input)
	}

	f, err := os.Open(cli.Input)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	m, err := tmx.Parse(f)
	if err != nil {
		panic(err)
	}

	pal := loadPalette()
	img := render(m, pal)

	if cli.Scale != 1.0 {
		b := img.Image().Bounds()
		scaled := resize.Resize(
			uint(float64(b.Dx())*cli.Scale),
			uint(float64(b.Dy())*cli.Scale),
			img.Image(),
			resize.Lanczos3,
		)
		if err = gg.SavePNG(cli.Output, scaled); err != nil {
			panic(err)
		}
	} else if err = img.SavePNG(cli.Output); err != nil {
		panic(err)
	}

	fmt.Printf("wrote %s\n", cli.Output)
}

// render draws every visible tile layer back-to-front.
func render(m *tmx.Map, pal palette) *gg.Context {
	bounds := mapBounds(m)
	dc := gg.NewContext(bounds.Width*cli.CellSize, bounds.Height*cli.CellSize)

	if m.Background != nil {
		dc.SetRGBA255(int(m.Background.R), int(m.Background.G), int(m.Background.B), int(m.Background.A))
	} else {
		dc.SetHexColor(pal.color(-1))
	}
	dc.Clear()

	err := m.Walk(func(_ string, layer *tmx.Layer) error {
		if layer.Tiles == nil || !layer.Visible {
			return nil
		}
		it := layer.Tiles.Iterate()
		for {
			x, y, gid, ok := it.Next()
			if !ok {
				return nil
			}
			ref, err := m.Resolve(gid)
			if err != nil {
				return err
			}
			if ref == nil {
				continue
			}
			dc.SetHexColor(pal.color(ref.TilesetIndex))
			dc.DrawRectangle(
				float64((x-bounds.X)*cli.CellSize),
				float64((y-bounds.Y)*cli.CellSize),
				float64(cli.CellSize),
				float64(cli.CellSize),
			)
			dc.Fill()
		}
	})
	if err != nil {
		panic(err)
	}

	if !cli.NoGrid {
		drawGrid(dc, bounds)
	}
	return dc
}

func drawGrid(dc *gg.Context, bounds tmx.Bounds) {
	dc.SetRGBA(0, 0, 0, 0.15)
	dc.SetLineWidth(1)
	for x := 0; x <= bounds.Width; x++ {
		dc.DrawLine(float64(x*cli.CellSize), 0, float64(x*cli.CellSize), float64(bounds.Height*cli.CellSize))
	}
	for y := 0; y <= bounds.Height; y++ {
		dc.DrawLine(0, float64(y*cli.CellSize), float64(bounds.Width*cli.CellSize), float64(y*cli.CellSize))
	}
	dc.Stroke()
}

// mapBounds is the drawable extent: the declared size on finite maps, the
// union of every tile layer's chunk bounds on infinite ones.
func mapBounds(m *tmx.Map) tmx.Bounds {
	if !m.Infinite {
		return tmx.Bounds{Width: m.Width, Height: m.Height}
	}
	var out *tmx.Bounds
	m.Walk(func(_ string, layer *tmx.Layer) error {
		if layer.Tiles == nil {
			return nil
		}
		b := layer.Tiles.Bounds()
		if b.Width == 0 {
			return nil
		}
		if out == nil {
			c := b
			out = &c
			return nil
		}
		x1 := max(out.X+out.Width, b.X+b.Width)
		y1 := max(out.Y+out.Height, b.Y+b.Height)
		out.X = min(out.X, b.X)
		out.Y = min(out.Y, b.Y)
		out.Width = x1 - out.X
		out.Height = y1 - out.Y
		return nil
	})
	if out == nil {
		return tmx.Bounds{Width: 1, Height: 1}
	}
	return *out
}

// loadPalette reads the palette file, falling back to built-in colors when
// neither the flag nor the default config file is present.
func loadPalette() palette {
	path := cli.Palette
	required := path != ""
	if path == "" {
		path = defaultPalettePath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}
	data, err := ioutil.ReadFile(expanded)
	if err != nil {
		if required {
			panic(err)
		}
		return palette{}
	}

	pal := palette{}
	if err := yaml.Unmarshal(data, &pal); err != nil {
		panic(err)
	}
	return pal
}

func (p palette) color(tilesetIndex int) string {
	if c, ok := p[tilesetIndex]; ok {
		return c
	}
	if tilesetIndex < 0 {
		return "#202028"
	}
	return defaultColors[tilesetIndex%len(defaultColors)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
