package output

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for file extensions with no encoder
var ErrUnsupportedFormat = errors.New("unsupported image format")

// JPEGQuality is used for .jpg and .jpeg output
const JPEGQuality = 95

// Save writes img to path, choosing the encoder from the file extension
// (ppm, png, jpg, gif, tif, bmp). Missing parent directories are created.
func Save(img image.Image, path string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format != "ppm" {
		if _, err := imaging.FormatFromFilename(path); err != nil {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(file, img, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode writes img to w in the named format ("png", "jpg", "ppm", ...)
func Encode(w io.Writer, img image.Image, format string) error {
	format = strings.ToLower(format)
	if format == "ppm" {
		return WriteImagePPM(w, img)
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// ContentType returns the MIME type for a format name
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "tif", "tiff":
		return "image/tiff"
	case "bmp":
		return "image/bmp"
	case "ppm":
		return "image/x-portable-pixmap"
	default:
		return "application/octet-stream"
	}
}
