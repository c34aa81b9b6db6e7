// Package core holds the application configuration and the shared
// startup plumbing: env parsing atoms, actionable configuration errors
// and process exit codes.
package core

import (
	"strings"
)

// Generation backend names accepted by GEN_BACKEND.
const (
	// BackendWebUI drives a local Automatic1111 WebUI server.
	BackendWebUI = "webui"

	// BackendOpenAI drives the OpenAI image-edit API.
	BackendOpenAI = "openai"

	// BackendNull fabricates output locally for dry runs.
	BackendNull = "null"
)

// ValidBackends returns the accepted GEN_BACKEND values.
func ValidBackends() []string {
	return []string{BackendWebUI, BackendOpenAI, BackendNull}
}

// Config holds all application-level configuration values. Pipeline
// tuning (URLs, timeouts, concurrency) lives in pipeline.RuntimeConfig;
// this struct covers the run itself.
type Config struct {
	// Backend selects the generation backend: webui, openai or null
	Backend string

	// SeedSource is the seed photograph: a file path or an http(s) URL
	SeedSource string

	// PlanPath is an optional YAML sweep plan; when set it replaces Styles
	PlanPath string

	// Styles are the builtin presets to sweep when no plan is given
	Styles []string

	// OutputDir receives the generated images and contact sheets
	OutputDir string

	// OutputSize is the square edge outputs are normalized to
	OutputSize int

	// ImageCount is how many variants each sweep produces
	ImageCount int

	// Seed fixes the generation seed for sweeps that do not set their
	// own; 0 means unset, -1 lets the backend pick per call
	Seed int64

	// Sheet assembles a contact sheet per sweep
	Sheet bool

	// SheetGap is the pixel gap between contact sheet tiles
	SheetGap int

	// ContinueOnError keeps a batch running past failed sweeps
	ContinueOnError bool

	// LogFilePath is where the rotating JSON log is written
	LogFilePath string

	// DevMode enables debug logging and readable console output
	DevMode bool
}

// LoadConfig reads the application configuration from the environment.
// Missing variables fall back to defaults; the only hard requirement
// checked here is a known backend name.
//
// Call godotenv.Load before this to pick up a .env file.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Backend:         strings.ToLower(GetEnvOrDefault("GEN_BACKEND", BackendWebUI)),
		SeedSource:      GetEnvOrDefault("SEED_IMAGE", ""),
		PlanPath:        GetEnvOrDefault("SWEEP_PLAN", ""),
		Styles:          ParseListEnv("STYLES", []string{"anime"}),
		OutputDir:       GetEnvOrDefault("OUTPUT_DIR", "outputs"),
		OutputSize:      ParseIntEnv("OUTPUT_SIZE", 1024),
		ImageCount:      ParseIntEnv("IMAGE_COUNT", 4),
		Seed:            int64(ParseIntEnv("SWEEP_SEED", 0)),
		Sheet:           ParseBoolEnv("SHEET", true),
		SheetGap:        ParseIntEnv("SHEET_GAP", 8),
		ContinueOnError: ParseBoolEnv("CONTINUE_ON_ERROR", false),
		LogFilePath:     GetEnvOrDefault("LOG_FILE", "stylised-images.log"),
		DevMode:         ParseBoolEnv("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that can never work.
// Seed image presence is checked by the validation suite, not here,
// because a CLI flag may still provide it.
func (c *Config) Validate() error {
	valid := false
	for _, backend := range ValidBackends() {
		if c.Backend == backend {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidBackend(c.Backend)
	}

	if c.OutputSize <= 0 {
		return ErrInvalidValue("OUTPUT_SIZE", "must be a positive pixel size")
	}
	if c.ImageCount <= 0 {
		return ErrInvalidValue("IMAGE_COUNT", "must be at least 1")
	}
	if c.SheetGap < 0 {
		return ErrInvalidValue("SHEET_GAP", "cannot be negative")
	}
	if c.LogFilePath == "" {
		return ErrMissingConfig("LOG_FILE")
	}
	return nil
}
