package output

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// WritePPM writes pixels as a plain-text P3 image: a "P3\n<w> <h>\n255\n" header
// followed by one "r g b" line per pixel, top scanline first.
func WritePPM(w io.Writer, width, height int, pixels []renderer.RGB) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return fmt.Errorf("expected %d pixels for %dx%d, got %d", width*height, width, height, len(pixels))
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}
	for _, p := range pixels {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", p.R, p.G, p.B); err != nil {
			return fmt.Errorf("failed to write PPM pixel: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write PPM: %w", err)
	}
	return nil
}

// WriteImagePPM writes any image as P3, dropping alpha
func WriteImagePPM(w io.Writer, img image.Image) error {
	return WritePPM(w, img.Bounds().Dx(), img.Bounds().Dy(), pixelsFromImage(img))
}

func pixelsFromImage(img image.Image) []renderer.RGB {
	bounds := img.Bounds()
	pixels := make([]renderer.RGB, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, renderer.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		}
	}
	return pixels
}
