package tmx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGIDRanges(t *testing.T) {
	entries := []TilesetEntry{
		{FirstGID: 1, Tileset: &Tileset{TileCount: 160}},
		{FirstGID: 161, Tileset: &Tileset{TileCount: 64}},
	}

	cases := []struct {
		gid     GID
		index   int
		localID uint32
	}{
		{1, 0, 0},
		{160, 0, 159},
		{161, 1, 0},
		{200, 1, 39},
	}
	for _, c := range cases {
		ref, err := resolveGID(entries, c.gid)
		require.Nil(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, c.index, ref.TilesetIndex)
		assert.Equal(t, c.localID, ref.TileID)
	}
}

func TestResolveGIDEmptyCell(t *testing.T) {
	entries := []TilesetEntry{{FirstGID: 1, Tileset: &Tileset{}}}

	ref, err := resolveGID(entries, 0)
	assert.Nil(t, err)
	assert.Nil(t, ref)

	// flip bits alone don't make a cell occupied
	ref, err = resolveGID(entries, GID(FlippedHorizontally))
	assert.Nil(t, err)
	assert.Nil(t, ref)
}

func TestResolveGIDBelowRange(t *testing.T) {
	entries := []TilesetEntry{{FirstGID: 5, Tileset: &Tileset{}}}
	_, err := resolveGID(entries, 3)
	assert.ErrorIs(t, err, ErrGIDOutOfRange)
}

func TestResolveGIDCarriesFlips(t *testing.T) {
	entries := []TilesetEntry{{FirstGID: 1, Tileset: &Tileset{TileCount: 16}}}

	ref, err := resolveGID(entries, MakeGID(7, true, false, true))
	require.Nil(t, err)
	assert.Equal(t, uint32(6), ref.TileID)
	assert.True(t, ref.FlipH)
	assert.False(t, ref.FlipV)
	assert.True(t, ref.FlipD)
}

func TestSortEntriesDuplicateFirstGID(t *testing.T) {
	_, err := sortEntries([]TilesetEntry{
		{FirstGID: 1},
		{FirstGID: 1},
	})
	assert.ErrorIs(t, err, ErrDuplicateFirstGID)
}

func TestSortEntriesOrdersByFirstGID(t *testing.T) {
	sorted, err := sortEntries([]TilesetEntry{
		{FirstGID: 161},
		{FirstGID: 1},
		{FirstGID: 400},
	})
	require.Nil(t, err)
	assert.Equal(t, uint32(1), sorted[0].FirstGID)
	assert.Equal(t, uint32(161), sorted[1].FirstGID)
	assert.Equal(t, uint32(400), sorted[2].FirstGID)
}

func TestAtlasRegion(t *testing.T) {
	ts := &Tileset{
		TileWidth:  16,
		TileHeight: 16,
		TileCount:  1024,
		Columns:    32,
		Image:      &Image{Source: "atlas.png", Width: 512, Height: 512},
		tiles:      map[uint32]*Tile{},
	}

	tile, err := ts.Tile(66)
	require.Nil(t, err)
	require.NotNil(t, tile.Region)
	assert.Equal(t, Region{X: 32, Y: 32, Width: 16, Height: 16}, *tile.Region)
}

func TestAtlasRegionWithMarginAndSpacing(t *testing.T) {
	ts := &Tileset{
		TileWidth:  16,
		TileHeight: 16,
		Spacing:    2,
		Margin:     4,
		TileCount:  64,
		Columns:    8,
		Image:      &Image{Source: "atlas.png"},
		tiles:      map[uint32]*Tile{},
	}

	tile, err := ts.Tile(9) // row 1, col 1
	require.Nil(t, err)
	assert.Equal(t, Region{X: 22, Y: 22, Width: 16, Height: 16}, *tile.Region)
}

func TestTileSynthesisAndOutOfRange(t *testing.T) {
	ts := &Tileset{
		TileWidth:  8,
		TileHeight: 8,
		TileCount:  4,
		Columns:    2,
		Image:      &Image{Source: "small.png"},
		tiles: map[uint32]*Tile{
			2: {ID: 2, Class: "wall", Properties: Properties{}},
		},
	}

	declared, err := ts.Tile(2)
	require.Nil(t, err)
	assert.Equal(t, "wall", declared.Class)

	synthesized, err := ts.Tile(3)
	require.Nil(t, err)
	assert.Equal(t, uint32(3), synthesized.ID)
	assert.Empty(t, synthesized.Class)
	assert.NotNil(t, synthesized.Properties)
	assert.Equal(t, Region{X: 8, Y: 8, Width: 8, Height: 8}, *synthesized.Region)

	_, err = ts.Tile(4)
	assert.ErrorIs(t, err, ErrTileIDOutOfRange)
}

func TestCollectionTilesetHasNoAtlasRegions(t *testing.T) {
	doc := `<tileset name="things" tilewidth="32" tileheight="32" tilecount="2" columns="0">
  <tile id="0">
    <image source="barrel.png" width="32" height="32"/>
  </tile>
  <tile id="1">
    <image source="crate.png" width="32" height="48"/>
  </tile>
</tileset>`

	ts, err := ParseTileset(strings.NewReader(doc))
	require.Nil(t, err)
	assert.True(t, ts.IsCollection())

	tile, err := ts.Tile(1)
	require.Nil(t, err)
	assert.Nil(t, tile.Region)
	require.NotNil(t, tile.Image)
	assert.Equal(t, "crate.png", tile.Image.Source)
	assert.Equal(t, 48, tile.Image.Height)
}

func TestParseTilesetDocument(t *testing.T) {
	doc := `<tileset name="terrain" class="ground" tilewidth="16" tileheight="16"
         spacing="1" margin="2" tilecount="256" columns="16"
         objectalignment="topleft" tilerendersize="grid" fillmode="preserve-aspect-fit">
  <tileoffset x="0" y="-8"/>
  <grid orientation="isometric" width="32" height="16"/>
  <image source="terrain.png" trans="ff00ff" width="271" height="271"/>
  <properties>
    <property name="biome" value="swamp"/>
  </properties>
</tileset>`

	ts, err := ParseTileset(strings.NewReader(doc))
	require.Nil(t, err)

	assert.Equal(t, "terrain", ts.Name)
	assert.Equal(t, "ground", ts.Class)
	assert.Equal(t, 1, ts.Spacing)
	assert.Equal(t, 2, ts.Margin)
	assert.Equal(t, AlignTopLeft, ts.ObjectAlignment)
	assert.Equal(t, RenderGridSize, ts.TileRenderSize)
	assert.Equal(t, FillPreserveAspect, ts.FillMode)
	assert.Equal(t, TileOffset{X: 0, Y: -8}, ts.TileOffset)

	require.NotNil(t, ts.Grid)
	assert.Equal(t, Isometric, ts.Grid.Orientation)
	assert.Equal(t, 32, ts.Grid.Width)

	require.NotNil(t, ts.Image)
	require.NotNil(t, ts.Image.Trans)
	assert.Equal(t, Color{A: 0xff, R: 0xff, G: 0x00, B: 0xff}, *ts.Image.Trans)

	biome, ok := ts.Properties.String("biome")
	assert.True(t, ok)
	assert.Equal(t, "swamp", biome)
}

func TestParseTilesetDefaults(t *testing.T) {
	doc := `<tileset name="plain" tilewidth="8" tileheight="8" tilecount="4" columns="2">
  <image source="plain.png" width="16" height="16"/>
</tileset>`

	ts, err := ParseTileset(strings.NewReader(doc))
	require.Nil(t, err)
	assert.Equal(t, AlignUnspecified, ts.ObjectAlignment)
	assert.Equal(t, RenderTileSize, ts.TileRenderSize)
	assert.Equal(t, FillStretch, ts.FillMode)
	assert.Nil(t, ts.Grid)
}

func TestParseTilesetMissingDimensions(t *testing.T) {
	_, err := ParseTileset(strings.NewReader(`<tileset name="broken" tilecount="4"/>`))
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestDefinedTilesOrdered(t *testing.T) {
	ts := &Tileset{
		TileCount: 10,
		tiles: map[uint32]*Tile{
			7: {ID: 7},
			1: {ID: 1},
			4: {ID: 4},
		},
	}
	ids := []uint32{}
	for _, tl := range ts.DefinedTiles() {
		ids = append(ids, tl.ID)
	}
	assert.Equal(t, []uint32{1, 4, 7}, ids)
}
