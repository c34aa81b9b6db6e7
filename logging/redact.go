package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// RedactedPlaceholder replaces sensitive data in log output.
const RedactedPlaceholder = "[REDACTED]"

// credentialPatterns match credential-shaped strings inside log values.
// Compiled once at package initialization.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),         // OpenAI API keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),  // Bearer tokens
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`), // password= / password:
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),   // secret= / secret:
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),    // token= / token:
	regexp.MustCompile(`(?i)(api_?key\s*[:=]\s*[^\s,;]{8,})`), // api_key= / apikey:
}

// sensitiveKeyFragments flag field names whose values are secrets.
var sensitiveKeyFragments = []string{
	"API_KEY",
	"APIKEY",
	"PASSWORD",
	"SECRET",
	"TOKEN",
}

// RedactString scans a value and replaces credential-shaped substrings.
//
// This is a pure function with no side effects.
func RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range credentialPatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveKey reports whether a field name indicates a secret value.
//
// This is a pure function with no side effects.
//
// Example:
//
//	IsSensitiveKey("openai_api_key") // true
//	IsSensitiveKey("style")          // false
func IsSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(upper, fragment) {
			return true
		}
	}
	return false
}

// redactField sanitizes one field: secret-named fields are blanked
// entirely, string values are pattern-scanned.
func redactField(field zapcore.Field) zapcore.Field {
	if IsSensitiveKey(field.Key) {
		return zapcore.Field{Key: field.Key, Type: zapcore.StringType, String: RedactedPlaceholder}
	}
	if field.Type == zapcore.StringType {
		if cleaned := RedactString(field.String); cleaned != field.String {
			field.String = cleaned
		}
	}
	return field
}

// redactFields sanitizes a field slice without mutating the input.
func redactFields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	cleaned := make([]zapcore.Field, len(fields))
	for i, field := range fields {
		cleaned[i] = redactField(field)
	}
	return cleaned
}

// redactingCore sanitizes fields on their way into the wrapped core, so
// redaction applies no matter how the logger is used.
type redactingCore struct {
	zapcore.Core
}

// WithRedaction wraps a core so every logged field passes through
// credential redaction first.
func WithRedaction(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = RedactString(entry.Message)
	return c.Core.Write(entry, redactFields(fields))
}

// Ensure redactingCore implements zapcore.Core.
var _ zapcore.Core = (*redactingCore)(nil)
