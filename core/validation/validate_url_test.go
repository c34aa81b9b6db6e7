package validation

import "testing"

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http URL", "http://127.0.0.1:7860", false},
		{"https URL", "https://images.example.com", false},
		{"with path", "http://localhost:7860/sdapi", false},
		{"surrounding whitespace", "  http://localhost:7860  ", false},
		{"empty", "", true},
		{"no scheme", "localhost:7860", true},
		{"wrong scheme", "ftp://example.com", true},
		{"scheme only", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpointURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
