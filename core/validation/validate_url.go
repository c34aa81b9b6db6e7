package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateEndpointURL validates that a URL is absolute with an http or
// https scheme and a host. This is a pure function with no side effects.
func ValidateEndpointURL(raw string) error {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got: %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}
