package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestRedactString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "openai key",
			input: "configured with sk-abcdefghijklmnopqrstuvwx",
			want:  "configured with " + RedactedPlaceholder,
		},
		{
			name:  "bearer token",
			input: "header Bearer abcdefghij1234567890.xyz",
			want:  "header " + RedactedPlaceholder,
		},
		{
			name:  "password assignment",
			input: "password=hunter2hunter2",
			want:  RedactedPlaceholder,
		},
		{
			name:  "api key assignment",
			input: "api_key: 0123456789abcdef",
			want:  RedactedPlaceholder,
		},
		{
			name:  "clean string unchanged",
			input: "normalized 4 images to 1024px",
			want:  "normalized 4 images to 1024px",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"OPENAI_API_KEY", true},
		{"openai_api_key", true},
		{"apikey", true},
		{"webui_password", true},
		{"client_secret", true},
		{"auth_token", true},
		{"style", false},
		{"guidance_scale", false},
		{"base_url", false},
	}

	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// redactionLogger builds a buffer-backed logger with the redacting core.
func redactionLogger(buf *bytes.Buffer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(WithRedaction(core))
}

func TestWithRedaction_SensitiveFieldName(t *testing.T) {
	var buf bytes.Buffer
	logger := redactionLogger(&buf)

	logger.Info("configured", zap.String("api_key", "not-even-key-shaped"))
	logger.Sync()

	if strings.Contains(buf.String(), "not-even-key-shaped") {
		t.Error("value of secret-named field leaked")
	}
}

func TestWithRedaction_MessageText(t *testing.T) {
	var buf bytes.Buffer
	logger := redactionLogger(&buf)

	logger.Warn("retrying with sk-abcdefghijklmnopqrstuvwx")
	logger.Sync()

	if strings.Contains(buf.String(), "sk-abcdefghijklmnopqrstuvwx") {
		t.Error("API key leaked through the message text")
	}
}

func TestWithRedaction_ChildLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := redactionLogger(&buf)

	child := logger.With(zap.String("token", "abcdefgh12345678"))
	child.Info("sweep starting")
	child.Sync()

	if strings.Contains(buf.String(), "abcdefgh12345678") {
		t.Error("secret attached via With() leaked")
	}
	if !strings.Contains(buf.String(), RedactedPlaceholder) {
		t.Error("redaction placeholder missing from child logger output")
	}
}

func TestWithRedaction_LevelsStillFilter(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.WarnLevel,
	)
	logger := zap.New(WithRedaction(core))

	logger.Info("filtered entry")
	logger.Sync()

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got: %s", buf.String())
	}
}
