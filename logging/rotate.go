package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileWriterConfig controls log file rotation. Zero values fall back to
// the defaults from DefaultFileWriterConfig.
type FileWriterConfig struct {
	// MaxSizeMB is the file size in megabytes that triggers rotation.
	// Default: 50 MB
	MaxSizeMB int

	// MaxBackups is how many rotated files to retain.
	// Default: 3 files
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept before deletion.
	// Default: 14 days
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool
}

// DefaultFileWriterConfig returns the rotation defaults.
//
// This is a pure function with no side effects.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// NewFileWriter creates a rotating log file WriteSyncer backed by
// lumberjack. The parent directory is created if needed so the first
// write cannot fail on a missing path.
func NewFileWriter(path string, config FileWriterConfig) (zapcore.WriteSyncer, error) {
	if path == "" {
		return nil, fmt.Errorf("logging: log file path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("logging: failed to create log directory: %w", err)
		}
	}

	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = 50
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = 3
	}
	if config.MaxAgeDays <= 0 {
		config.MaxAgeDays = 14
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}), nil
}
