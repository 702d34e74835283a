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

const desc = `Flattens .tmx maps into a sqlite database of resolved tile placements.

Maps are given directly or via a .world file, which imports every map it references.
Once imported, placements can be queried by cell or by rectangle without re-parsing
any map.`

var cli struct {
	DB string `short:"d" default:"world.db" help:"placement database file"`

	// import inputs
	Maps  []string `short:"i" help:".tmx map files to import, named after their basename"`
	World string   `short:"w" help:".world file whose maps should all be imported"`

	// queries, run after any imports
	Map   string `help:"map name to query"`
	At    string `help:"query one cell as 'layer-path:x,y'"`
	X0    int    `help:"query rectangle, top left x"`
	Y0    int    `help:"query rectangle, top left y"`
	X1    int    `help:"query rectangle, bottom right x (exclusive)"`
	Y1    int    `help:"query rectangle, bottom right y (exclusive)"`
	Count bool   `help:"print only the number of matching placements"`
}

func main() {
	kong.Parse(&cli, kong.Name("world-store"), kong.Description(desc))

	dbPath, err := homedir.Expand(cli.DB)
	if err != nil {
		panic(err)
	}
	store, err := tmx.OpenStore(dbPath)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	for _, path := range cli.Maps {
		importMap(store, mapName(path), path)
	}
	if cli.World != "" {
		importWorld(store, cli.World)
	}

	if cli.Map == "" {
		return
	}
	if cli.At != "" {
		queryAt(store)
		return
	}
	queryRegion(store)
}

func importMap(store *tmx.Store, name, path string) {
	f, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	m, err := tmx.Parse(f)
	if err != nil {
		panic(fmt.Sprintf("parsing %s: %v", path, err))
	}
	if err = store.ImportMap(name, m); err != nil {
		panic(err)
	}
	fmt.Printf("imported %s as %q\n", path, name)
}

func importWorld(store *tmx.Store, path string) {
	f, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w, err := tmx.ParseWorld(f)
	if err != nil {
		panic(err)
	}
	for _, entry := range w.Maps {
		mapPath := filepath.Join(filepath.Dir(path), entry.FileName)
		importMap(store, mapName(entry.FileName), mapPath)
	}
}

func queryAt(store *tmx.Store) {
	layer, x, y := parseAt(cli.At)
	p, err := store.At(cli.Map, layer, x, y)
	if err != nil {
		panic(err)
	}
	if p == nil {
		fmt.Println("empty")
		return
	}
	printPlacement(*p)

	props, err := store.TileProperties(cli.Map, p.TilesetIndex, p.TileID)
	if err != nil {
		panic(err)
	}
	for name, value := range props {
		fmt.Printf("  %s = %v\n", name, value)
	}
}

func queryRegion(store *tmx.Store) {
	placements, err := store.Region(cli.Map, cli.X0, cli.Y0, cli.X1, cli.Y1)
	if err != nil {
		panic(err)
	}
	if cli.Count {
		fmt.Println(len(placements))
		return
	}
	for _, p := range placements {
		printPlacement(p)
	}
}

func printPlacement(p tmx.Placement) {
	flips := ""
	if p.FlipH {
		flips += "H"
	}
	if p.FlipV {
		flips += "V"
	}
	if p.FlipD {
		flips += "D"
	}
	fmt.Printf("%s (%d, %d) tileset=%d tile=%d %s\n", p.Layer, p.X, p.Y, p.TilesetIndex, p.TileID, flips)
}

// parseAt splits a 'layer-path:x,y' cell reference.
func parseAt(raw string) (layer string, x, y int) {
	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		panic(fmt.Sprintf("bad --at value %q, want 'layer-path:x,y'", raw))
	}
	layer = raw[:idx]
	if _, err := fmt.Sscanf(raw[idx+1:], "%d,%d", &x, &y); err != nil {
		panic(fmt.Sprintf("bad --at value %q, want 'layer-path:x,y'", raw))
	}
	return layer, x, y
}

func mapName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
