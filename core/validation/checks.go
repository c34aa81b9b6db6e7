package validation

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vibabattista/stylised-images/core"
	"github.com/vibabattista/stylised-images/restyle"
)

// ValidationResult represents the result of a single preflight check.
// A result with Valid false and Warning true degrades to a warning
// instead of failing the suite.
type ValidationResult struct {
	Valid   bool
	Warning bool
	Message string
	Error   error
}

// Target collects everything the preflight checks inspect. Build it
// from the loaded configuration before the first generation call.
type Target struct {
	Backend    string // generation backend name
	BaseURL    string // image server address, webui backend only
	APIKey     string // API key, openai backend only
	SeedSource string // seed image file path or http(s) URL
	PlanPath   string // optional YAML sweep plan
	OutputDir  string // directory that receives results
	EnvPath    string // .env location (default: ".env")
}

// checkEnvFile looks for the .env file. A missing file is only a
// warning because every variable can also come from the environment.
func (s *ValidationSuite) checkEnvFile() ValidationResult {
	if err := CheckFileExists(s.target.EnvPath); err != nil {
		return ValidationResult{
			Warning: true,
			Message: fmt.Sprintf("No %s file; relying on exported environment variables", s.target.EnvPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// checkBackend validates the backend name and its required credentials.
func (s *ValidationSuite) checkBackend() ValidationResult {
	backend := s.target.Backend

	known := false
	for _, b := range core.ValidBackends() {
		if backend == b {
			known = true
			break
		}
	}
	if !known {
		return ValidationResult{
			Message: fmt.Sprintf("Unknown backend %q", backend),
			Error:   core.ErrInvalidBackend(backend),
		}
	}

	switch backend {
	case core.BackendWebUI:
		if err := ValidateEndpointURL(s.target.BaseURL); err != nil {
			return ValidationResult{
				Message: "GEN_BASE_URL is missing or malformed",
				Error:   core.ErrInvalidBaseURL(err.Error()),
			}
		}
	case core.BackendOpenAI:
		if s.target.APIKey == "" {
			return ValidationResult{
				Message: "OPENAI_API_KEY is not set",
				Error:   core.ErrMissingAPIKey(backend),
			}
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Backend %q configured", backend),
	}
}

// checkSeedImage verifies the seed source: local paths must exist,
// URLs must be well formed. Decoding happens at load time.
func (s *ValidationSuite) checkSeedImage() ValidationResult {
	source := s.target.SeedSource

	if source == "" {
		return ValidationResult{
			Message: "No seed image configured",
			Error:   core.ErrMissingSeedImage(),
		}
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if err := ValidateEndpointURL(source); err != nil {
			return ValidationResult{
				Message: "Seed image URL is malformed",
				Error:   err,
			}
		}
		return ValidationResult{
			Valid:   true,
			Message: "Seed image URL looks valid, fetched at run time",
		}
	}

	if err := CheckFileExists(source); err != nil {
		return ValidationResult{
			Message: "Seed image file not found",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Seed image file found",
	}
}

// checkSweepPlan parses the sweep plan when one is configured, so a
// broken plan fails here instead of after the first generation.
func (s *ValidationSuite) checkSweepPlan() ValidationResult {
	if s.target.PlanPath == "" {
		return ValidationResult{
			Valid:   true,
			Message: "No sweep plan; using builtin style presets",
		}
	}

	plan, err := restyle.LoadPlan(s.target.PlanPath)
	if err != nil {
		return ValidationResult{
			Message: "Sweep plan failed to load",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Sweep plan loaded (%d sweeps)", len(plan.Sweeps)),
	}
}

// checkOutputDir creates the output directory if needed and probes it
// with a throwaway write.
func (s *ValidationSuite) checkOutputDir() ValidationResult {
	dir := s.target.OutputDir
	if dir == "" {
		return ValidationResult{
			Message: "No output directory configured",
			Error:   core.ErrMissingConfig("OUTPUT_DIR"),
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return ValidationResult{
			Message: "Output directory cannot be created",
			Error:   core.ErrInvalidOutputDir(dir, err),
		}
	}

	probe := filepath.Join(dir, ".write_check")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return ValidationResult{
			Message: "Output directory is not writable",
			Error:   core.ErrInvalidOutputDir(dir, err),
		}
	}
	os.Remove(probe)

	return ValidationResult{
		Valid:   true,
		Message: "Output directory ready",
	}
}

// checkConnectivity pings the image server's options endpoint. Only
// called for the webui backend.
func (s *ValidationSuite) checkConnectivity() ValidationResult {
	endpoint := strings.TrimRight(s.target.BaseURL, "/") + "/sdapi/v1/options"

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return ValidationResult{
			Message: "Could not build health request",
			Error:   err,
		}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return ValidationResult{
			Message: fmt.Sprintf("Image server unreachable at %s", s.target.BaseURL),
			Error:   err,
		}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return ValidationResult{
			Message: fmt.Sprintf("Image server answered status %d", resp.StatusCode),
			Error:   fmt.Errorf("health endpoint returned status %d", resp.StatusCode),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Image server reachable (latency: %v)", latency.Round(time.Millisecond)),
	}
}
