package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera          core.Camera
	world           core.Hittable
	integrator      integrator.Integrator
	width, height   int
	samplesPerPixel int
}

// NewTileRenderer creates a new tile renderer for an image of the given size
func NewTileRenderer(camera core.Camera, world core.Hittable, integratorInst integrator.Integrator, width, height, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		camera:          camera,
		world:           world,
		integrator:      integratorInst,
		width:           width,
		height:          height,
		samplesPerPixel: samplesPerPixel,
	}
}

// RenderTile renders every pixel of the tile into pixels (row-major, top row first).
// Tiles never overlap, so concurrent calls on distinct tiles may share the buffer.
func (tr *TileRenderer) RenderTile(tile *Tile, pixels []RGB, sampler core.Sampler) RenderStats {
	stats := RenderStats{TotalPixels: tile.Bounds.Dx() * tile.Bounds.Dy()}

	for row := tile.Bounds.Min.Y; row < tile.Bounds.Max.Y; row++ {
		for i := tile.Bounds.Min.X; i < tile.Bounds.Max.X; i++ {
			ps := tr.samplePixel(i, row, sampler)
			pixels[row*tr.width+i] = ToneMap(ps.GetColor())
			stats.TotalSamples += ps.SampleCount
		}
	}

	return stats
}

// samplePixel averages samplesPerPixel jittered camera rays through pixel (i, row)
func (tr *TileRenderer) samplePixel(i, row int, sampler core.Sampler) PixelStats {
	var ps PixelStats

	// Image rows run top to bottom while the image plane's t runs bottom to top
	j := tr.height - 1 - row

	for s := 0; s < tr.samplesPerPixel; s++ {
		jitter := sampler.Get2D()
		u := (float64(i) + jitter.X) / float64(tr.width)
		v := (float64(j) + jitter.Y) / float64(tr.height)

		ray := tr.camera.GetRay(u, v, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.world, sampler))
	}

	return ps
}
