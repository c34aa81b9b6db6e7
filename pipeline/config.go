package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Input size constraints. Backends expect square seed images whose edge
// is a multiple of the diffusion latent block size.
const (
	MinInputSize      = 128
	MaxInputSize      = 2048
	InputSizeMultiple = 8
)

// Default configuration values
const (
	DefaultInputSize      = 1024
	DefaultMaxConcurrent  = 1
	DefaultAcquireTimeout = 30 * time.Second
	DefaultRequestTimeout = 120 * time.Second
	DefaultSampler        = "DPM++ 2M"
)

// RuntimeConfig holds construction-time settings for a generation backend.
// It is built once, passed to the backend constructor, and never mutated
// mid-sweep. Memory and runtime behavior of the remote process (model
// checkpoint, VAE handling, offload toggles) ride in OverrideSettings.
type RuntimeConfig struct {
	// BaseURL is the WebUI server address, e.g. "http://127.0.0.1:7860".
	BaseURL string

	// APIKey authenticates against the OpenAI image API.
	APIKey string

	// Model is the model identifier for backends that select one per
	// request (OpenAI). WebUI model selection goes through
	// OverrideSettings["sd_model_checkpoint"].
	Model string

	// Sampler is the WebUI sampler name.
	Sampler string

	// InputSize is the square edge length seed images are normalized to
	// before a backend call. Must be within [MinInputSize, MaxInputSize]
	// and divisible by InputSizeMultiple.
	InputSize int

	// MaxConcurrent is the maximum number of in-flight generation calls.
	MaxConcurrent int

	// AcquireTimeout is how long a caller waits for a generation slot.
	AcquireTimeout time.Duration

	// RequestTimeout is the maximum time for a single backend call.
	RequestTimeout time.Duration

	// OverrideSettings is sent verbatim with every WebUI request and
	// restored server-side afterwards. Set once at construction.
	OverrideSettings map[string]any
}

// DefaultRuntimeConfig returns a RuntimeConfig with sensible defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		BaseURL:        "http://127.0.0.1:7860",
		Sampler:        DefaultSampler,
		InputSize:      DefaultInputSize,
		MaxConcurrent:  DefaultMaxConcurrent,
		AcquireTimeout: DefaultAcquireTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// RuntimeConfigFromEnv loads a RuntimeConfig from environment variables,
// falling back to defaults for anything unset or unparsable.
//
// Recognized variables: GEN_BASE_URL, OPENAI_API_KEY, GEN_MODEL,
// GEN_SAMPLER, GEN_INPUT_SIZE, GEN_MAX_CONCURRENT,
// GEN_ACQUIRE_TIMEOUT_SECONDS, GEN_REQUEST_TIMEOUT_SECONDS.
func RuntimeConfigFromEnv() RuntimeConfig {
	cfg := DefaultRuntimeConfig()

	if v := os.Getenv("GEN_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("GEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GEN_SAMPLER"); v != "" {
		cfg.Sampler = v
	}
	cfg.InputSize = parseInputSize(os.Getenv("GEN_INPUT_SIZE"))
	cfg.MaxConcurrent = parseMaxConcurrent(os.Getenv("GEN_MAX_CONCURRENT"))
	cfg.AcquireTimeout = parseSeconds(os.Getenv("GEN_ACQUIRE_TIMEOUT_SECONDS"), DefaultAcquireTimeout)
	cfg.RequestTimeout = parseSeconds(os.Getenv("GEN_REQUEST_TIMEOUT_SECONDS"), DefaultRequestTimeout)

	return cfg
}

// Validate checks if the configuration is valid.
func (c RuntimeConfig) Validate() error {
	if c.InputSize < MinInputSize || c.InputSize > MaxInputSize {
		return fmt.Errorf("%w: input size %d must be between %d and %d",
			ErrInvalidRequest, c.InputSize, MinInputSize, MaxInputSize)
	}
	if c.InputSize%InputSizeMultiple != 0 {
		return fmt.Errorf("%w: input size %d must be divisible by %d",
			ErrInvalidRequest, c.InputSize, InputSizeMultiple)
	}

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max concurrent must be at least 1", ErrInvalidRequest)
	}
	if c.MaxConcurrent > 10 {
		return fmt.Errorf("%w: max concurrent must be at most 10", ErrInvalidRequest)
	}

	if c.AcquireTimeout < time.Second {
		return fmt.Errorf("%w: acquire timeout must be at least 1 second", ErrInvalidRequest)
	}
	if c.RequestTimeout < time.Second {
		return fmt.Errorf("%w: request timeout must be at least 1 second", ErrInvalidRequest)
	}

	return nil
}

// WithBaseURL returns a copy with the specified WebUI address.
// Builder pattern for immutable updates.
func (c RuntimeConfig) WithBaseURL(url string) RuntimeConfig {
	c.BaseURL = url
	return c
}

// WithInputSize returns a copy with the specified seed image size.
// Builder pattern for immutable updates.
func (c RuntimeConfig) WithInputSize(size int) RuntimeConfig {
	c.InputSize = size
	return c
}

// WithOverride returns a copy with one override setting added. The
// original map is not mutated.
func (c RuntimeConfig) WithOverride(key string, value any) RuntimeConfig {
	overrides := make(map[string]any, len(c.OverrideSettings)+1)
	for k, v := range c.OverrideSettings {
		overrides[k] = v
	}
	overrides[key] = value
	c.OverrideSettings = overrides
	return c
}

// parseInputSize parses and validates the seed image size from string.
// Returns the default if invalid or empty.
func parseInputSize(s string) int {
	if s == "" {
		return DefaultInputSize
	}

	size, err := strconv.Atoi(s)
	if err != nil {
		return DefaultInputSize
	}

	if size < MinInputSize || size > MaxInputSize || size%InputSizeMultiple != 0 {
		return DefaultInputSize
	}
	return size
}

// parseMaxConcurrent parses max concurrent generations from string.
// Returns the default if invalid.
func parseMaxConcurrent(s string) int {
	if s == "" {
		return DefaultMaxConcurrent
	}

	concurrent, err := strconv.Atoi(s)
	if err != nil || concurrent < 1 {
		return DefaultMaxConcurrent
	}
	return concurrent
}

// parseSeconds parses a duration given in whole seconds.
// Returns the fallback if invalid.
func parseSeconds(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}

	seconds, err := strconv.Atoi(s)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
