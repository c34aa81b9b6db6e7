package letterbox

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Sheet composition errors
var (
	ErrEmptySheet   = errors.New("letterbox: no images to arrange")
	ErrTileMismatch = errors.New("letterbox: tile dimensions differ")
)

// SheetOptions controls contact sheet composition.
type SheetOptions struct {
	// Gap is the number of background pixels between adjacent tiles.
	Gap int
	// Background fills the gaps. Defaults to opaque black.
	Background color.Color
}

// Sheet arranges images into a single-row grid, one column per image,
// in the order given. All images must share the same dimensions, which
// holds for any batch normalized to one target size. The result is a
// freshly allocated image; inputs are never modified.
func Sheet(images []image.Image, opts SheetOptions) (*image.NRGBA, error) {
	if len(images) == 0 {
		return nil, ErrEmptySheet
	}
	if opts.Gap < 0 {
		opts.Gap = 0
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}

	first := images[0].Bounds()
	tileW := first.Dx()
	tileH := first.Dy()
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() != tileW || b.Dy() != tileH {
			return nil, fmt.Errorf("%w: tile %d is %dx%d, want %dx%d",
				ErrTileMismatch, i, b.Dx(), b.Dy(), tileW, tileH)
		}
	}

	width := tileW*len(images) + opts.Gap*(len(images)-1)
	sheet := imaging.New(width, tileH, opts.Background)

	for i, img := range images {
		x := i * (tileW + opts.Gap)
		sheet = imaging.Paste(sheet, img, image.Pt(x, 0))
	}

	return sheet, nil
}
