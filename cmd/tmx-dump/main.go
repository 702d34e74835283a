package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mitchellh/go-homedir"

	"github.com/tilekit/tmx"
)

const desc = `Prints the structure of a .tmx map file: geometry, tilesets, the layer tree and objects.

External tilesets referenced by the map are loaded from paths relative to the map file.`

var cli struct {
	Input string `arg:"" help:"input .tmx map file"`

	Tilesets bool `short:"t" help:"list per-tile declarations of each tileset"`
	Objects  bool `short:"o" help:"list objects of each object layer"`
	Counts   bool `short:"c" help:"count non-empty cells of each tile layer"`
}

func main() {
	kong.Parse(&cli, kong.Name("tmx-dump"), kong.Description(desc))

	path, err := homedir.Expand(cli.Input)
	if err != nil {
		panic(err)
	}

	f, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	m, err := tmx.Parse(f)
	if err != nil {
		panic(err)
	}

	fmt.Printf("map %s %s %dx%d tiles of %dx%d px", m.Orientation, m.RenderOrder,
		m.Width, m.Height, m.TileWidth, m.TileHeight)
	if m.Infinite {
		fmt.Printf(" (infinite)")
	}
	fmt.Println()
	printProperties("  ", m.Properties)

	for i, entry := range m.Tilesets {
		printTileset(path, i, entry)
	}

	err = m.Walk(func(layerPath string, layer *tmx.Layer) error {
		depth := strings.Count(layerPath, "/")
		indent := strings.Repeat("  ", depth+1)
		fmt.Printf("%s%s %q id=%d", indent, layerKind(layer), layer.Name, layer.ID)
		if !layer.Visible {
			fmt.Printf(" hidden")
		}
		fmt.Println()

		if cli.Counts && layer.Tiles != nil {
			fmt.Printf("%s  %d/%d cells occupied\n", indent,
				countOccupied(layer.Tiles), boundsArea(layer.Tiles))
		}
		if cli.Objects && layer.Objects != nil {
			for _, obj := range layer.Objects.Objects {
				fmt.Printf("%s  %s %q id=%d at (%.1f, %.1f)\n", indent,
					obj.Kind, obj.Name, obj.ID, obj.X, obj.Y)
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
}

// printTileset shows one tileset entry, loading external ones from disk.
func printTileset(mapPath string, index int, entry tmx.TilesetEntry) {
	ts := entry.Tileset
	if entry.External() {
		f, err := os.Open(filepath.Join(filepath.Dir(mapPath), entry.Source))
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if ts, err = tmx.ParseTileset(f); err != nil {
			panic(err)
		}
	}

	fmt.Printf("  tileset[%d] %q firstgid=%d %d tiles", index, ts.Name, entry.FirstGID, ts.TileCount)
	if entry.External() {
		fmt.Printf(" (from %s)", entry.Source)
	}
	if ts.IsCollection() {
		fmt.Printf(" (image collection)")
	}
	fmt.Println()

	if cli.Tilesets {
		for _, t := range ts.DefinedTiles() {
			fmt.Printf("    tile %d", t.ID)
			if t.Class != "" {
				fmt.Printf(" class=%s", t.Class)
			}
			if len(t.Animation) > 0 {
				fmt.Printf(" animated (%d frames, %s)", len(t.Animation), t.Animation.TotalDuration())
			}
			if t.Collision != nil {
				fmt.Printf(" %d collision shapes", len(t.Collision.Objects))
			}
			fmt.Println()
			printProperties("      ", t.Properties)
		}
	}
}

func printProperties(indent string, props tmx.Properties) {
	for name := range props {
		v, _ := props.Get(name)
		fmt.Printf("%s%s (%v)\n", indent, name, v.Kind())
	}
}

func layerKind(layer *tmx.Layer) string {
	switch {
	case layer.Tiles != nil:
		return "layer"
	case layer.Objects != nil:
		return "objectgroup"
	case layer.Image != nil:
		return "imagelayer"
	default:
		return "group"
	}
}

func countOccupied(l *tmx.TileLayer) int {
	n := 0
	it := l.Iterate()
	for {
		_, _, gid, ok := it.Next()
		if !ok {
			return n
		}
		if !gid.IsNil() {
			n++
		}
	}
}

func boundsArea(l *tmx.TileLayer) int {
	b := l.Bounds()
	return b.Width * b.Height
}
