// Package letterbox provides aspect-preserving image normalization.
// An input raster of any dimensions is scaled to fit a fixed square
// canvas, centered, and padded with a solid fill color. It is used both
// to prepare seed images for the generation pipeline's expected input
// resolution and to bring generated outputs back to a display size.
package letterbox

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Normalization errors
var (
	ErrInvalidDimension = errors.New("letterbox: invalid dimension")
)

// Options controls how Normalize scales and pads.
type Options struct {
	// Size is the edge length of the square output canvas. Must be positive.
	Size int
	// Fill is the padding color. Defaults to opaque black.
	Fill color.Color
	// Filter is the resampling kernel used for scaling. Defaults to
	// Catmull-Rom, which preserves sharpness at the scale factors involved.
	Filter draw.Scaler
}

// DefaultOptions returns Options for the given canvas size with black
// fill and Catmull-Rom resampling.
func DefaultOptions(size int) Options {
	return Options{
		Size:   size,
		Fill:   color.Black,
		Filter: draw.CatmullRom,
	}
}

// Normalize scales img to fit within a size×size square while keeping
// its aspect ratio, centers it, and pads the remainder with black.
// This is a pure function with no side effects; the input image is
// never modified.
func Normalize(img image.Image, size int) (*image.NRGBA, error) {
	return NormalizeWith(img, DefaultOptions(size))
}

// NormalizeWith is Normalize with explicit fill color and filter.
//
// The scaled content dimensions are computed from the input aspect
// ratio: a landscape image gets the full canvas width and a rounded
// height, a portrait or square image gets the full canvas height and a
// rounded width. Paste offsets use integer floor division, so when the
// leftover padding is odd the extra pixel lands on the bottom/right
// edge. An input that already matches the canvas size is copied without
// resampling, making repeated normalization exact.
func NormalizeWith(img image.Image, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: target size %d", ErrInvalidDimension, opts.Size)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimension)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d", ErrInvalidDimension, width, height)
	}

	if opts.Fill == nil {
		opts.Fill = color.Black
	}
	if opts.Filter == nil {
		opts.Filter = draw.CatmullRom
	}

	size := opts.Size

	// Fast path: already at canvas size, no scaling and no padding needed.
	// Returning an untouched copy keeps normalization exactly idempotent.
	if width == size && height == size {
		dst := image.NewNRGBA(image.Rect(0, 0, size, size))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst, nil
	}

	newWidth, newHeight := fitDimensions(width, height, size)

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Fill), image.Point{}, draw.Src)

	// Centering offsets, floor division.
	offsetX := (size - newWidth) / 2
	offsetY := (size - newHeight) / 2

	target := image.Rect(offsetX, offsetY, offsetX+newWidth, offsetY+newHeight)
	opts.Filter.Scale(dst, target, img, bounds, draw.Src, nil)

	return dst, nil
}

// fitDimensions computes the scaled content size for a source of
// width×height inside a square canvas of the given size. The longer
// source edge gets the full canvas extent and the shorter edge is
// rounded from the aspect ratio. Degenerate aspect ratios still get one
// pixel of content.
func fitDimensions(width, height, size int) (int, int) {
	aspect := float64(width) / float64(height)

	var newWidth, newHeight int
	if aspect > 1 {
		newWidth = size
		newHeight = int(math.Round(float64(size) / aspect))
	} else {
		newHeight = size
		newWidth = int(math.Round(float64(size) * aspect))
	}

	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	return newWidth, newHeight
}
