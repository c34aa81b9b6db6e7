// Package logging builds the application's zap logger.
//
// It follows the atoms -> molecules -> organisms pattern:
//   - Atoms: level parsing and sensitive data redaction
//   - Molecules: the rotating file writer (lumberjack) and encoder configs
//   - Organisms: New, which tees console and file output behind a
//     redacting core
//
// Every logger built here redacts API keys and credential-shaped strings
// before they reach any output.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnvVar is the environment variable consulted for the log level.
const LevelEnvVar = "LOG_LEVEL"

// New creates a logger that writes to both stdout and a rotating log file.
//
// Development mode uses colored human-readable console output at debug
// level; production mode uses JSON at info level. Either default can be
// overridden through the LOG_LEVEL environment variable (debug, info,
// warn, error, fatal).
//
// The file output is always JSON and rotates per DefaultFileWriterConfig.
//
// Example:
//
//	logger, err := logging.New(devMode, "stylised-images.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
func New(development bool, filePath string) (*zap.Logger, error) {
	fallback := zapcore.InfoLevel
	if development {
		fallback = zapcore.DebugLevel
	}
	level := LevelFromEnv(LevelEnvVar, fallback)

	if filePath == "" {
		return nil, fmt.Errorf("logging: log file path cannot be empty")
	}
	fileWriter, err := NewFileWriter(filePath, DefaultFileWriterConfig())
	if err != nil {
		return nil, err
	}

	core := buildCore(level, zapcore.Lock(os.Stdout), fileWriter, development)
	return zap.New(core, zap.AddCaller()), nil
}

// NewWithWriters builds a logger around explicit writers. Both outputs
// share the level; the console encoder follows the development flag and
// the file writer is always JSON.
//
// This variant exists for tests and special output destinations.
func NewWithWriters(level zapcore.Level, console, file zapcore.WriteSyncer, development bool) *zap.Logger {
	return zap.New(buildCore(level, console, file, development), zap.AddCaller())
}

// buildCore tees the console and file cores behind the redaction layer.
func buildCore(level zapcore.Level, console, file zapcore.WriteSyncer, development bool) zapcore.Core {
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), file, level)

	var consoleEncoder zapcore.Encoder
	if development {
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, console, level)

	return WithRedaction(zapcore.NewTee(consoleCore, fileCore))
}

// jsonEncoderConfig returns the encoder config for structured output.
//
// This is a pure function with no side effects.
func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "source",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// consoleEncoderConfig returns the encoder config for human-readable
// console output: colored levels and compact timestamps.
//
// This is a pure function with no side effects.
func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// LevelFromEnv reads a log level from the named environment variable,
// falling back to the given default when unset or unparseable.
func LevelFromEnv(envVar string, fallback zapcore.Level) zapcore.Level {
	value := os.Getenv(envVar)
	if value == "" {
		return fallback
	}
	return ParseLevel(value, fallback)
}

// ParseLevel parses a log level name case-insensitively.
//
// Valid levels: debug, info, warn, warning, error, fatal.
// This is a pure function with no side effects.
func ParseLevel(name string, fallback zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return fallback
	}
}
