package tmx

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqlUpsertPlacement = `INSERT INTO placements (id, map, layer, x, y, tileset, tile, flips)
		VALUES (:id, :map, :layer, :x, :y, :tileset, :tile, :flips)
		ON CONFLICT (id) DO UPDATE SET tileset=EXCLUDED.tileset, tile=EXCLUDED.tile, flips=EXCLUDED.flips;`
	sqlUpsertTileProps = `INSERT INTO tileprops (id, data) VALUES (:id, :data)
		ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data;`

	// placement batches per NamedExec; sqlite caps bound variables
	placementBatch = 500
)

// flip bit packing in the flips column
const (
	storeFlipH = 1 << 0
	storeFlipV = 1 << 1
	storeFlipD = 1 << 2
)

// Store flattens parsed maps into a sqlite database of resolved tile
// placements so that many maps can be stitched into one large, queryable
// world without holding every document in memory. It lives outside the
// parse path: documents stay immutable, the store only reads them.
type Store struct {
	filename string
	db       *sqlx.DB
}

// OpenStore opens (or creates) a placement database on disk.
func OpenStore(filename string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}
	s := &Store{filename: filename, db: db}
	return s, s.init()
}

// Filename returns the path of the database file.
func (s *Store) Filename() string {
	return s.filename
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Placement is one resolved tile cell owned by a named map.
type Placement struct {
	Map          string
	Layer        string // slash-joined path through the layer tree
	X, Y         int
	TilesetIndex int
	TileID       uint32
	FlipH        bool
	FlipV        bool
	FlipD        bool
}

// ImportMap writes every non-null tile cell of every tile layer in the
// document, with gids resolved to (tileset, local id), plus property blobs
// for the map's declared tiles. Re-importing the same name overwrites.
func (s *Store) ImportMap(name string, m *Map) error {
	rows := []dbPlacement{}
	err := m.Walk(func(path string, layer *Layer) error {
		if layer.Tiles == nil {
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
			rows = append(rows, newDBPlacement(name, path, x, y, ref))
		}
	})
	if err != nil {
		return err
	}

	txn, err := s.db.Beginx()
	if err != nil {
		return err
	}

	for start := 0; start < len(rows); start += placementBatch {
		end := start + placementBatch
		if end > len(rows) {
			end = len(rows)
		}
		if _, err = txn.NamedExec(sqlUpsertPlacement, rows[start:end]); err != nil {
			txn.Rollback()
			return err
		}
	}

	props := []dbTileProps{}
	for i, entry := range m.Tilesets {
		if entry.Tileset == nil {
			continue
		}
		for _, t := range entry.Tileset.DefinedTiles() {
			if len(t.Properties) == 0 {
				continue
			}
			row, err := newDBTileProps(name, i, t)
			if err != nil {
				txn.Rollback()
				return err
			}
			props = append(props, row)
		}
	}
	if len(props) > 0 {
		if _, err = txn.NamedExec(sqlUpsertTileProps, props); err != nil {
			txn.Rollback()
			return err
		}
	}
	return txn.Commit()
}

// At returns the placement at (x, y) on the given layer path, or nil if the
// cell is empty.
func (s *Store) At(mapName, layerPath string, x, y int) (*Placement, error) {
	rows, err := s.db.NamedQuery(
		`SELECT map, layer, x, y, tileset, tile, flips FROM placements
		 WHERE map=:map AND layer=:layer AND x=:x AND y=:y LIMIT 1;`,
		map[string]interface{}{"map": mapName, "layer": layerPath, "x": x, "y": y},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() { // at most one due to LIMIT 1
		row := dbPlacement{}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		p := row.placement()
		return &p, nil
	}
	return nil, rows.Err()
}

// Region returns all placements of a map inside the rectangle
// [x0,x1) x [y0,y1), across every layer.
func (s *Store) Region(mapName string, x0, y0, x1, y1 int) ([]Placement, error) {
	rows, err := s.db.NamedQuery(
		`SELECT map, layer, x, y, tileset, tile, flips FROM placements
		 WHERE map=:map AND x>=:x0 AND x<:x1 AND y>=:y0 AND y<:y1;`,
		map[string]interface{}{"map": mapName, "x0": x0, "x1": x1, "y0": y0, "y1": y1},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Placement{}
	for rows.Next() {
		row := dbPlacement{}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		out = append(out, row.placement())
	}
	return out, rows.Err()
}

// TileProperties returns the stored property blob for a tile, or nil if the
// tile declared none.
func (s *Store) TileProperties(mapName string, tilesetIndex int, tileID uint32) (map[string]interface{}, error) {
	rows, err := s.db.NamedQuery(
		`SELECT id, data FROM tileprops WHERE id=:id LIMIT 1;`,
		map[string]interface{}{"id": tilePropsID(mapName, tilesetIndex, tileID)},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		row := dbTileProps{}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, rows.Err()
}

// init creates tables if they don't exist.
func (s *Store) init() error {
	createPlacements := `CREATE TABLE IF NOT EXISTS placements(
		id TEXT PRIMARY KEY,
		map TEXT NOT NULL,
		layer TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		tileset INTEGER NOT NULL,
		tile INTEGER NOT NULL,
		flips INTEGER NOT NULL
	    );`
	if _, err := s.db.Exec(createPlacements); err != nil {
		return err
	}

	createTileProps := `CREATE TABLE IF NOT EXISTS tileprops(
		id TEXT PRIMARY KEY,
		data TEXT
	    );`
	_, err := s.db.Exec(createTileProps)
	return err
}

// dbPlacement encodes a single placement row. The ID makes upserts on a
// unique (map, layer, x, y) cell a single straightforward query.
type dbPlacement struct {
	ID      string `db:"id"`
	Map     string `db:"map"`
	Layer   string `db:"layer"`
	X       int    `db:"x"`
	Y       int    `db:"y"`
	Tileset int    `db:"tileset"`
	Tile    uint32 `db:"tile"`
	Flips   int    `db:"flips"`
}

func newDBPlacement(mapName, layerPath string, x, y int, ref *TileRef) dbPlacement {
	flips := 0
	if ref.FlipH {
		flips |= storeFlipH
	}
	if ref.FlipV {
		flips |= storeFlipV
	}
	if ref.FlipD {
		flips |= storeFlipD
	}
	return dbPlacement{
		ID:      fmt.Sprintf("%s|%s|%d|%d", mapName, layerPath, x, y),
		Map:     mapName,
		Layer:   layerPath,
		X:       x,
		Y:       y,
		Tileset: ref.TilesetIndex,
		Tile:    ref.TileID,
		Flips:   flips,
	}
}

func (r dbPlacement) placement() Placement {
	return Placement{
		Map:          r.Map,
		Layer:        r.Layer,
		X:            r.X,
		Y:            r.Y,
		TilesetIndex: r.Tileset,
		TileID:       r.Tile,
		FlipH:        r.Flips&storeFlipH != 0,
		FlipV:        r.Flips&storeFlipV != 0,
		FlipD:        r.Flips&storeFlipD != 0,
	}
}

// dbTileProps encodes one tile's properties as JSON.
type dbTileProps struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

func newDBTileProps(mapName string, tilesetIndex int, t *Tile) (dbTileProps, error) {
	data, err := json.Marshal(t.Properties.plain())
	if err != nil {
		return dbTileProps{}, err
	}
	return dbTileProps{ID: tilePropsID(mapName, tilesetIndex, t.ID), Data: string(data)}, nil
}

func tilePropsID(mapName string, tilesetIndex int, tileID uint32) string {
	return fmt.Sprintf("%s|%d|%d", mapName, tilesetIndex, tileID)
}
