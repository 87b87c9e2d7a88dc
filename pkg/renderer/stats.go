package renderer

import (
	"image"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
)

// RGB is one 8-bit output pixel
type RGB struct {
	R, G, B uint8
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	AverageSamples  float64       // Average samples per pixel
	SamplesPerPixel int           // Samples requested per pixel
	Tiles           int           // Number of tiles rendered
	Workers         int           // Number of workers used
	Seed            int64         // Seed of the random streams
	Duration        time.Duration // Wall-clock render time
}

// merge folds the statistics of one tile into the total
func (rs *RenderStats) merge(tile RenderStats) {
	rs.TotalPixels += tile.TotalPixels
	rs.TotalSamples += tile.TotalSamples
	rs.Tiles++
}

// finalize computes derived statistics once every tile is merged
func (rs *RenderStats) finalize() {
	if rs.TotalPixels > 0 {
		rs.AverageSamples = float64(rs.TotalSamples) / float64(rs.TotalPixels)
	}
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Divide(float64(ps.SampleCount))
}

// ToneMap converts a linear color to 8-bit output: gamma 2 (square root),
// clamp to [0,1], then scale by 255.99 and truncate.
func ToneMap(color core.Vec3) RGB {
	corrected := color.Sqrt()
	return RGB{
		R: toByte(corrected.X),
		G: toByte(corrected.Y),
		B: toByte(corrected.Z),
	}
}

// toByte maps [0,1] to [0,255]; NaN maps to 0
func toByte(c float64) uint8 {
	if !(c > 0) {
		return 0
	}
	if c > 1 {
		c = 1
	}
	return uint8(255.99 * c)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixelCount := bounds.Dx() * bounds.Dy()
	if pixelCount == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
			total += c.Luminance()
		}
	}
	return total / float64(pixelCount)
}
