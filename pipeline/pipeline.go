// Package pipeline defines the image-to-image generation contract and its
// backends.
//
// The diffusion model itself is an external collaborator: this package only
// knows how to hand it a seed image plus generation parameters and get a
// batch of images back. Two real backends speak HTTP (a Stable Diffusion
// WebUI server and the OpenAI image-edit API); a null backend serves tests
// and dry runs.
//
// The types here are designed to be:
//   - Backend-independent (a Request means the same thing everywhere)
//   - Serializable (for logging and debugging)
//   - Validated (with validation methods)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// Pipeline is the generation collaborator contract. Implementations are
// opaque, possibly slow and possibly memory-constrained; callers assume
// nothing beyond this input/output pair.
type Pipeline interface {
	// Generate produces Request.ImageCount images from a seed image and a
	// prompt. The context controls cancellation and timeout. The request
	// must pass Validate or an error is returned before any backend call.
	//
	// Errors are returned as *GenerationError and are never retried here.
	Generate(ctx context.Context, request Request) (*Result, error)

	// Name identifies the backend in logs and results.
	Name() string
}

// Request contains parameters for one image-to-image generation call.
// This is an atom-level type with no dependencies.
type Request struct {
	// Prompt is the text description of the target style (required).
	Prompt string `json:"prompt"`

	// NegativePrompt describes what to steer the generation away from.
	NegativePrompt string `json:"negative_prompt,omitempty"`

	// InitImage is the seed image the generation diverges from (required).
	InitImage image.Image `json:"-"`

	// Steps is the number of diffusion steps.
	// Must be 1-150. More steps = higher quality but slower.
	Steps int `json:"steps"`

	// ImageCount is the number of variants to generate per call.
	// Must be 1-16.
	ImageCount int `json:"image_count"`

	// Strength is the denoising strength relative to the seed image,
	// in (0, 1]. Higher values diverge further from the seed.
	Strength float64 `json:"strength"`

	// GuidanceScale is the prompt-adherence weight. Must be >= 0.
	GuidanceScale float64 `json:"guidance_scale"`

	// Seed for the backend's sampler. Use -1 to let the backend pick.
	Seed int64 `json:"seed"`
}

// Result contains the raw output of one generation call.
type Result struct {
	// Images holds the generated images in the backend's output order.
	Images []image.Image

	// Seed is the seed the request carried (-1 if the backend picked).
	Seed int64

	// Backend names the pipeline that produced the images.
	Backend string

	// Elapsed is how long the backend call took.
	Elapsed time.Duration
}

// Validation constants
const (
	MinSteps = 1
	MaxSteps = 150

	MinImageCount = 1
	MaxImageCount = 16

	MaxGuidanceScale = 30.0

	MaxPromptLength = 2000
)

// Request validation errors
var (
	ErrInvalidRequest = errors.New("pipeline: invalid request")
	ErrEmptyPrompt    = errors.New("pipeline: prompt is required")
	ErrNilInitImage   = errors.New("pipeline: init image is required")
)

// Validate checks if the request parameters are valid.
// Returns nil if valid, or an error describing the problem.
// This is a pure function (no side effects).
func (r Request) Validate() error {
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(r.Prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt length %d exceeds maximum %d",
			ErrInvalidRequest, len(r.Prompt), MaxPromptLength)
	}
	if len(r.NegativePrompt) > MaxPromptLength {
		return fmt.Errorf("%w: negative prompt length %d exceeds maximum %d",
			ErrInvalidRequest, len(r.NegativePrompt), MaxPromptLength)
	}

	if r.InitImage == nil {
		return ErrNilInitImage
	}

	if r.Steps < MinSteps || r.Steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be between %d and %d",
			ErrInvalidRequest, r.Steps, MinSteps, MaxSteps)
	}

	if r.ImageCount < MinImageCount || r.ImageCount > MaxImageCount {
		return fmt.Errorf("%w: image count %d must be between %d and %d",
			ErrInvalidRequest, r.ImageCount, MinImageCount, MaxImageCount)
	}

	if r.Strength <= 0 || r.Strength > 1 {
		return fmt.Errorf("%w: strength %.3f must be in (0, 1]",
			ErrInvalidRequest, r.Strength)
	}

	if r.GuidanceScale < 0 || r.GuidanceScale > MaxGuidanceScale {
		return fmt.Errorf("%w: guidance scale %.2f must be between 0 and %.1f",
			ErrInvalidRequest, r.GuidanceScale, MaxGuidanceScale)
	}

	return nil
}

// WithPrompt returns a copy with the specified prompt.
// Builder pattern for immutable updates.
func (r Request) WithPrompt(prompt string) Request {
	r.Prompt = prompt
	return r
}

// WithInitImage returns a copy with the specified seed image.
// Builder pattern for immutable updates.
func (r Request) WithInitImage(img image.Image) Request {
	r.InitImage = img
	return r
}

// WithSeed returns a copy with the specified seed.
// Builder pattern for immutable updates.
func (r Request) WithSeed(seed int64) Request {
	r.Seed = seed
	return r
}

// Generation failure sentinel, matched by errors.Is against any
// *GenerationError regardless of code.
var ErrGenerationFailed = errors.New("pipeline: generation failed")

// GenerationError represents an error raised by a generation backend.
// It propagates to callers unchanged; no retry happens at this layer.
type GenerationError struct {
	// Backend names the pipeline that raised the error.
	Backend string `json:"backend"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Retryable indicates if the operation might succeed on retry.
	// This layer never retries; the flag informs callers only.
	Retryable bool `json:"retryable"`

	// Cause is the underlying error (if any).
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Backend, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Backend, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the generation failure sentinel, so
// errors.Is(err, ErrGenerationFailed) matches every backend error.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// Common error codes
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeBackendDown      = "backend_unavailable"
	ErrCodeBadResponse      = "bad_response"
	ErrCodeOutOfMemory      = "out_of_memory"
	ErrCodeTimeout          = "timeout"
	ErrCodeGenerationFailed = "generation_failed"
)

// NewGenerationError creates a new GenerationError.
func NewGenerationError(backend, code, message string, retryable bool, cause error) *GenerationError {
	return &GenerationError{
		Backend:   backend,
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}
