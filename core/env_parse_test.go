package core

import (
	"os"
	"reflect"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	const testKey = "TEST_GET_ENV_OR_DEFAULT"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue string
		want         string
	}{
		{
			name:         "returns env value when set",
			envValue:     "custom_value",
			setEnv:       true,
			defaultValue: "default",
			want:         "custom_value",
		},
		{
			name:         "returns default when not set",
			setEnv:       false,
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "returns default when empty",
			envValue:     "",
			setEnv:       true,
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := GetEnvOrDefault(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	const testKey = "TEST_PARSE_INT_ENV"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue int
		want         int
	}{
		{
			name:         "parses valid integer",
			envValue:     "512",
			setEnv:       true,
			defaultValue: 0,
			want:         512,
		},
		{
			name:         "parses negative integer",
			envValue:     "-1",
			setEnv:       true,
			defaultValue: 0,
			want:         -1,
		},
		{
			name:         "returns default for invalid",
			envValue:     "not_a_number",
			setEnv:       true,
			defaultValue: 1024,
			want:         1024,
		},
		{
			name:         "returns default when not set",
			setEnv:       false,
			defaultValue: 4,
			want:         4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseIntEnv(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseIntEnv() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	const testKey = "TEST_PARSE_FLOAT64_ENV"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue float64
		want         float64
	}{
		{
			name:         "parses float",
			envValue:     "0.65",
			setEnv:       true,
			defaultValue: 0.0,
			want:         0.65,
		},
		{
			name:         "parses integer as float",
			envValue:     "8",
			setEnv:       true,
			defaultValue: 0.0,
			want:         8.0,
		},
		{
			name:         "returns default for invalid",
			envValue:     "not_a_float",
			setEnv:       true,
			defaultValue: 7.5,
			want:         7.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseFloat64Env(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseFloat64Env() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	const testKey = "TEST_PARSE_BOOL_ENV"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue bool
		want         bool
	}{
		// True values
		{name: "true lowercase", envValue: "true", setEnv: true, defaultValue: false, want: true},
		{name: "TRUE uppercase", envValue: "TRUE", setEnv: true, defaultValue: false, want: true},
		{name: "1", envValue: "1", setEnv: true, defaultValue: false, want: true},
		{name: "yes", envValue: "yes", setEnv: true, defaultValue: false, want: true},
		{name: "on", envValue: "on", setEnv: true, defaultValue: false, want: true},
		// False values
		{name: "false", envValue: "false", setEnv: true, defaultValue: true, want: false},
		{name: "0", envValue: "0", setEnv: true, defaultValue: true, want: false},
		{name: "no", envValue: "no", setEnv: true, defaultValue: true, want: false},
		{name: "off", envValue: "off", setEnv: true, defaultValue: true, want: false},
		// Default values
		{name: "not set returns default true", setEnv: false, defaultValue: true, want: true},
		{name: "not set returns default false", setEnv: false, defaultValue: false, want: false},
		{name: "invalid returns default", envValue: "maybe", setEnv: true, defaultValue: true, want: true},
		{name: "whitespace handled", envValue: "  true  ", setEnv: true, defaultValue: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseBoolEnv(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseListEnv(t *testing.T) {
	const testKey = "TEST_PARSE_LIST_ENV"
	defer os.Unsetenv(testKey)

	defaults := []string{"anime"}

	tests := []struct {
		name     string
		envValue string
		setEnv   bool
		want     []string
	}{
		{
			name:     "splits on commas",
			envValue: "anime,cartoon,manga",
			setEnv:   true,
			want:     []string{"anime", "cartoon", "manga"},
		},
		{
			name:     "trims whitespace around entries",
			envValue: " anime , cartoon ",
			setEnv:   true,
			want:     []string{"anime", "cartoon"},
		},
		{
			name:     "drops empty entries",
			envValue: "anime,,cartoon,",
			setEnv:   true,
			want:     []string{"anime", "cartoon"},
		},
		{
			name:   "returns default when not set",
			setEnv: false,
			want:   defaults,
		},
		{
			name:     "returns default for only separators",
			envValue: " , , ",
			setEnv:   true,
			want:     defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseListEnv(testKey, defaults)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseListEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
