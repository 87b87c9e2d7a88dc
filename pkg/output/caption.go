package output

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const captionPadding = 4

// Caption returns a copy of img with text stamped on a translucent bar along the bottom edge.
// Text that does not fit is clipped at the right edge.
func Caption(img image.Image, text string) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	face := basicfont.Face7x13
	barHeight := face.Metrics().Height.Ceil() + 2*captionPadding
	bar := image.Rect(bounds.Min.X, bounds.Max.Y-barHeight, bounds.Max.X, bounds.Max.Y).Intersect(bounds)
	draw.Draw(dst, bar, image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(bounds.Min.X+captionPadding, bounds.Max.Y-captionPadding-face.Descent),
	}
	drawer.DrawString(text)

	return dst
}
