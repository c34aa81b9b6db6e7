package restyle

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vibabattista/stylised-images/letterbox"
	"github.com/vibabattista/stylised-images/pipeline"
)

// ErrSweepFailed is returned when a sweep fails outside the pipeline call.
var ErrSweepFailed = errors.New("restyle: sweep failed")

// ErrNilSeedImage is returned when a sweep request carries no seed image.
var ErrNilSeedImage = errors.New("restyle: nil seed image")

// SweepConfig holds the tuning values for one sweep. Zero fields are
// filled from defaults when the sweep runs.
type SweepConfig struct {
	// Steps is the diffusion step count (default: 30)
	Steps int

	// ImageCount is how many variants one pipeline call returns (default: 4)
	ImageCount int

	// Strength is the denoising strength in (0, 1] (default: 0.6)
	Strength float64

	// GuidanceScale is the classifier-free guidance scale (default: 7.5)
	GuidanceScale float64

	// Seed drives generation; -1 lets the backend pick (default: -1)
	Seed int64

	// OutputSize is the square edge outputs are normalized to (default: 1024)
	OutputSize int

	// Sheet requests a single-row contact sheet of the normalized outputs
	Sheet bool
}

// DefaultSweepConfig returns sensible default tuning values.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Steps:         30,
		ImageCount:    4,
		Strength:      0.6,
		GuidanceScale: 7.5,
		Seed:          -1,
		OutputSize:    1024,
		Sheet:         false,
	}
}

// withDefaults fills zero fields from DefaultSweepConfig. Seed zero maps
// to -1 so an unset seed means "backend picks".
func (c SweepConfig) withDefaults() SweepConfig {
	defaults := DefaultSweepConfig()
	if c.Steps <= 0 {
		c.Steps = defaults.Steps
	}
	if c.ImageCount <= 0 {
		c.ImageCount = defaults.ImageCount
	}
	if c.Strength <= 0 {
		c.Strength = defaults.Strength
	}
	if c.GuidanceScale <= 0 {
		c.GuidanceScale = defaults.GuidanceScale
	}
	if c.Seed == 0 {
		c.Seed = defaults.Seed
	}
	if c.OutputSize <= 0 {
		c.OutputSize = defaults.OutputSize
	}
	return c
}

// SweepRequest describes one sweep: a prompt, a seed image and the tuning
// values for the single pipeline call the sweep makes.
type SweepRequest struct {
	// Style labels the sweep in logs, results and output filenames.
	Style string

	// Prompt is the positive prompt sent to the pipeline.
	Prompt string

	// NegativePrompt overrides DefaultNegativePrompt when non-empty.
	NegativePrompt string

	// Image is the seed photograph.
	Image image.Image

	// Config holds the tuning values.
	Config SweepConfig
}

// SweepResult contains everything one sweep produced.
type SweepResult struct {
	// ID is the correlation ID threaded through the sweep's log lines.
	ID string

	// Style is the label from the request.
	Style string

	// Raw holds the pipeline outputs before normalization.
	Raw []image.Image

	// Normalized holds the outputs letterboxed to Config.OutputSize.
	Normalized []image.Image

	// Sheet is the single-row contact sheet, nil unless requested.
	Sheet image.Image

	// Config is the effective configuration after defaults were applied.
	Config SweepConfig

	// Seed is the seed recorded by the backend.
	Seed int64

	// Backend names the pipeline that served the sweep.
	Backend string

	// Elapsed is the total sweep duration including normalization.
	Elapsed time.Duration
}

// DriverConfig holds configuration for the sweep Driver.
type DriverConfig struct {
	// InputSize is the square edge seed images are normalized to before
	// the pipeline call (default: 1024)
	InputSize int

	// SheetGap is the pixel gap between contact sheet tiles (default: 8)
	SheetGap int

	// ContinueOnError makes RunAll log failed sweeps and keep going
	// instead of aborting on the first failure (default: false)
	ContinueOnError bool
}

// DefaultDriverConfig returns sensible default configuration.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		InputSize:       1024,
		SheetGap:        8,
		ContinueOnError: false,
	}
}

// Driver runs style sweeps against a generation pipeline.
//
// Each sweep makes exactly one pipeline call, then letterboxes every
// returned image to the configured output size. Pipeline errors are
// returned unchanged so callers can inspect backend error codes.
type Driver struct {
	config   DriverConfig
	pipeline pipeline.Pipeline
	logger   *zap.Logger
	reporter ProgressReporter
}

// NewDriver creates a Driver around the given pipeline.
//
// Example:
//
//	backend, _ := pipeline.NewWebUIPipeline(runtimeConfig)
//	driver := restyle.NewDriver(restyle.DefaultDriverConfig(), backend, logger)
//	result, err := driver.RunSweep(ctx, restyle.SweepRequest{...})
func NewDriver(config DriverConfig, p pipeline.Pipeline, logger *zap.Logger) *Driver {
	if config.InputSize <= 0 {
		config.InputSize = 1024
	}
	if config.SheetGap < 0 {
		config.SheetGap = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		config:   config,
		pipeline: p,
		logger:   logger,
	}
}

// WithReporter attaches a ProgressReporter that observes every sweep in
// RunAll. Returns the driver for chaining.
func (d *Driver) WithReporter(reporter ProgressReporter) *Driver {
	d.reporter = reporter
	return d
}

// RunSweep executes one sweep: normalize the seed image, make a single
// pipeline call, normalize every output, and optionally assemble a
// contact sheet.
//
// Errors from the pipeline are returned unchanged; there are no retries.
// Normalization failures are wrapped but keep the original error in the
// chain for errors.Is.
func (d *Driver) RunSweep(ctx context.Context, request SweepRequest) (*SweepResult, error) {
	start := time.Now()

	if request.Image == nil {
		return nil, ErrNilSeedImage
	}

	config := request.Config.withDefaults()
	negative := request.NegativePrompt
	if negative == "" {
		negative = DefaultNegativePrompt
	}

	id := sweepID()
	logger := d.logger.With(
		zap.String("sweep_id", id),
		zap.String("style", request.Style),
		zap.String("backend", d.pipeline.Name()))

	logger.Info("starting style sweep",
		zap.Int("steps", config.Steps),
		zap.Int("image_count", config.ImageCount),
		zap.Float64("strength", config.Strength),
		zap.Float64("guidance_scale", config.GuidanceScale),
		zap.Int64("seed", config.Seed))

	seed, err := letterbox.Normalize(request.Image, d.config.InputSize)
	if err != nil {
		logger.Error("seed image normalization failed", zap.Error(err))
		return nil, fmt.Errorf("restyle: normalize seed image: %w", err)
	}

	result, err := d.pipeline.Generate(ctx, pipeline.Request{
		Prompt:         request.Prompt,
		NegativePrompt: negative,
		InitImage:      seed,
		Steps:          config.Steps,
		ImageCount:     config.ImageCount,
		Strength:       config.Strength,
		GuidanceScale:  config.GuidanceScale,
		Seed:           config.Seed,
	})
	if err != nil {
		logger.Error("pipeline call failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	normalized := make([]image.Image, 0, len(result.Images))
	for i, img := range result.Images {
		out, err := letterbox.Normalize(img, config.OutputSize)
		if err != nil {
			logger.Error("output normalization failed",
				zap.Int("image_index", i),
				zap.Error(err))
			return nil, fmt.Errorf("restyle: normalize output %d: %w", i, err)
		}
		normalized = append(normalized, out)
	}

	var sheet image.Image
	if config.Sheet {
		sheet, err = letterbox.Sheet(normalized, letterbox.SheetOptions{Gap: d.config.SheetGap})
		if err != nil {
			logger.Error("contact sheet assembly failed", zap.Error(err))
			return nil, fmt.Errorf("restyle: assemble sheet: %w", err)
		}
	}

	logger.Info("style sweep completed",
		zap.Int("images", len(normalized)),
		zap.Duration("duration", time.Since(start)))

	return &SweepResult{
		ID:         id,
		Style:      request.Style,
		Raw:        result.Images,
		Normalized: normalized,
		Sheet:      sheet,
		Config:     config,
		Seed:       result.Seed,
		Backend:    result.Backend,
		Elapsed:    time.Since(start),
	}, nil
}

// RunAll executes the sweeps in order, one pipeline call each.
//
// By default the batch aborts on the first failure and returns the results
// collected so far together with the unchanged error. With
// DriverConfig.ContinueOnError the remaining sweeps still run; failures
// are logged and the batch returns ErrSweepFailed describing how many
// sweeps were lost.
//
// Context cancellation stops the batch between sweeps.
func (d *Driver) RunAll(ctx context.Context, requests []SweepRequest) ([]*SweepResult, error) {
	results := make([]*SweepResult, 0, len(requests))
	failed := 0

	for i, request := range requests {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if d.reporter != nil {
			d.reporter.SweepStarted(i, len(requests), request)
		}
		result, err := d.RunSweep(ctx, request)
		if d.reporter != nil {
			d.reporter.SweepFinished(i, len(requests), result, err)
		}
		if err != nil {
			if !d.config.ContinueOnError {
				return results, err
			}
			failed++
			d.logger.Warn("continuing past failed sweep",
				zap.Int("sweep_index", i),
				zap.String("style", request.Style),
				zap.Error(err))
			continue
		}
		results = append(results, result)
	}

	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d sweeps failed",
			ErrSweepFailed, failed, len(requests))
	}
	return results, nil
}

// GetConfig returns a copy of the current configuration.
func (d *Driver) GetConfig() DriverConfig {
	return d.config
}

// sweepID creates a unique 8-character ID for sweep tracing. Uses UUID v4
// truncated for brevity in log lines and filenames.
func sweepID() string {
	return uuid.New().String()[:8]
}
