package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration problem with an actionable message.
// The Action field tells the user how to fix the problem, keeping startup
// failures self-explanatory.
type ConfigError struct {
	Code    string // machine-readable error code
	Message string // human-readable description
	Action  string // what the user should do about it
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Configuration error codes.
const (
	ErrCodeEnvFileMissing = "ENV_FILE_MISSING"
	ErrCodeInvalidBackend = "INVALID_BACKEND"
	ErrCodeMissingAPIKey  = "MISSING_API_KEY"
	ErrCodeInvalidBaseURL = "INVALID_BASE_URL"
	ErrCodeMissingConfig  = "MISSING_CONFIG"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeMissingSeed    = "MISSING_SEED_IMAGE"
	ErrCodeInvalidOutput  = "INVALID_OUTPUT_DIR"
)

// ErrEnvFileMissing indicates the .env file could not be loaded.
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("environment file %q not found", path),
		Action:  "Copy .env.example to .env and fill in your settings, or export the variables directly",
	}
}

// ErrInvalidBackend indicates an unrecognized generation backend name.
func ErrInvalidBackend(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBackend,
		Message: fmt.Sprintf("unknown generation backend %q", name),
		Action:  fmt.Sprintf("Set GEN_BACKEND to one of: %v", ValidBackends()),
	}
}

// ErrMissingAPIKey indicates a backend requires an API key that was not provided.
func ErrMissingAPIKey(backend string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAPIKey,
		Message: fmt.Sprintf("backend %q requires an API key", backend),
		Action:  "Set OPENAI_API_KEY in your .env file or environment",
	}
}

// ErrInvalidBaseURL indicates a backend endpoint URL is missing or malformed.
func ErrInvalidBaseURL(detail string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBaseURL,
		Message: fmt.Sprintf("invalid backend URL: %s", detail),
		Action:  "Set GEN_BASE_URL to the full address of the image server, e.g. http://127.0.0.1:7860",
	}
}

// ErrMissingSeedImage indicates no seed image was supplied.
func ErrMissingSeedImage() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingSeed,
		Message: "no seed image provided",
		Action:  "Set SEED_IMAGE or pass -seed with a file path or URL",
	}
}

// ErrInvalidOutputDir indicates the output directory cannot be used.
func ErrInvalidOutputDir(dir string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidOutput,
		Message: fmt.Sprintf("output directory %q is not writable: %v", dir, err),
		Action:  "Choose a writable directory with OUTPUT_DIR or -out",
	}
}

// ErrMissingConfig indicates a required configuration value is absent.
func ErrMissingConfig(field string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("required configuration %q is not set", field),
		Action:  fmt.Sprintf("Set %s in your .env file or environment", field),
	}
}

// ErrInvalidValue indicates a configuration value is out of range.
func ErrInvalidValue(field, constraint string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("configuration %s %s", field, constraint),
		Action:  fmt.Sprintf("Fix %s in your .env file or environment", field),
	}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// GetErrorCode extracts the code from a ConfigError, or returns "" for
// other error types.
func GetErrorCode(err error) string {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Code
	}
	return ""
}
