package renderer

import (
	"image"
)

// seedMix spreads consecutive tile ids across the seed space (golden ratio constant)
const seedMix = 0x9E3779B97F4A7C15

// Tile is a rectangular block of pixels rendered as one unit of work
type Tile struct {
	ID     int             // Unique tile identifier, row-major from the top-left
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1), y grows downward
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// Seed derives the tile's random stream seed from the render seed.
// It depends only on the tile id, so results do not depend on which worker renders the tile.
func (t *Tile) Seed(renderSeed int64) int64 {
	return int64(uint64(renderSeed) ^ (uint64(t.ID+1) * seedMix))
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
