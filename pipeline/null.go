package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"time"
)

// NullPipeline is a Pipeline that fabricates output locally. It serves
// tests and dry runs when no generation backend is reachable.
type NullPipeline struct {
	// Err, when non-nil, is returned from every Generate call in place
	// of a result.
	Err error

	// StampSize is the edge length of the square stamp images returned.
	// Defaults to 64.
	StampSize int

	// Stamp is the fill color of returned images. Defaults to mid gray.
	Stamp color.Color

	// Delay is slept before returning, to simulate a slow backend.
	Delay time.Duration

	calls atomic.Int64
}

// Generate validates the request and returns ImageCount identical stamp
// images, or the configured error.
func (p *NullPipeline) Generate(ctx context.Context, request Request) (*Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	p.calls.Add(1)

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, NewGenerationError(p.Name(), ErrCodeTimeout, "cancelled while generating", false, ctx.Err())
		}
	}

	if p.Err != nil {
		return nil, p.Err
	}

	size := p.StampSize
	if size <= 0 {
		size = 64
	}
	fill := p.Stamp
	if fill == nil {
		fill = color.NRGBA{R: 127, G: 127, B: 127, A: 255}
	}

	start := time.Now()
	images := make([]image.Image, request.ImageCount)
	for i := range images {
		stamp := image.NewNRGBA(image.Rect(0, 0, size, size))
		draw.Draw(stamp, stamp.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
		images[i] = stamp
	}

	return &Result{
		Images:  images,
		Seed:    request.Seed,
		Backend: p.Name(),
		Elapsed: time.Since(start),
	}, nil
}

// Name identifies the backend in logs and results.
func (p *NullPipeline) Name() string {
	return "null"
}

// Calls returns how many Generate calls reached this backend.
func (p *NullPipeline) Calls() int64 {
	return p.calls.Load()
}

// Ensure NullPipeline implements Pipeline.
var _ Pipeline = (*NullPipeline)(nil)
