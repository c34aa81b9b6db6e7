// Package imgio loads seed photographs and saves sweep outputs.
//
// It composes:
//   - disintegration/imaging: for file decode/encode with EXIF orientation
//   - letterbox: for in-memory decode of fetched bytes
//   - net/http: for fetching seed images from URLs
package imgio

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/vibabattista/stylised-images/letterbox"
)

// jpegQuality is the encode quality for .jpg/.jpeg outputs.
const jpegQuality = 95

// Loader reads seed images from the filesystem or over HTTP.
//
// Thread Safety: Loader is safe for concurrent use. Each fetch creates
// its own HTTP request.
type Loader struct {
	client   *http.Client
	maxBytes int64
}

// LoaderConfig holds configuration for the Loader.
type LoaderConfig struct {
	// HTTPClient is the HTTP client for fetches (optional)
	// If nil, a default client will be created
	HTTPClient *http.Client

	// Timeout for fetch operations
	// Default: 60 seconds
	Timeout time.Duration

	// MaxBytes caps the size of a fetched image
	// Default: 32 MiB
	MaxBytes int64
}

// DefaultLoaderConfig returns sensible defaults for loading seed images.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Timeout:  60 * time.Second,
		MaxBytes: 32 << 20,
	}
}

// NewLoader creates a seed image loader.
func NewLoader(cfg LoaderConfig) *Loader {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}

	return &Loader{
		client:   client,
		maxBytes: maxBytes,
	}
}

// Load reads an image file from disk. EXIF orientation is applied so
// phone photographs come out the right way up.
func (l *Loader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("imgio: path cannot be empty")
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imgio: failed to load %s: %w", path, err)
	}
	return img, nil
}

// Fetch downloads an image from the given URL.
//
// The response must carry an image content type (or none at all, some
// hosts omit it) and fit within the configured size cap.
func (l *Loader) Fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("imgio: URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("imgio: failed to create fetch request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imgio: failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imgio: fetch failed with status %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType != "" && contentType != "application/octet-stream" &&
		!strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("imgio: %s is not an image (content type %s)", url, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imgio: failed to read image data: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("imgio: image exceeds %d byte limit", l.maxBytes)
	}

	img, err := letterbox.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("imgio: failed to decode fetched image: %w", err)
	}
	return img, nil
}

// LoadSource loads an image from a file path or an http(s) URL.
func (l *Loader) LoadSource(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.Fetch(ctx, source)
	}
	return l.Load(source)
}

// Save writes an image to disk. The format follows the file extension;
// JPEG outputs are written at quality 95.
func Save(img image.Image, path string) error {
	if img == nil {
		return fmt.Errorf("imgio: image cannot be nil")
	}
	if path == "" {
		return fmt.Errorf("imgio: path cannot be empty")
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("imgio: failed to save %s: %w", path, err)
	}
	return nil
}

// SaveAll writes the images to dir as numbered PNG files and returns the
// written paths in order. The directory is created if needed.
//
// Filenames follow base_01.png, base_02.png and so on.
func SaveAll(dir, base string, images []image.Image) ([]string, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("imgio: no images to save")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("imgio: failed to create output directory: %w", err)
	}

	safeBase := sanitizeBase(base)
	paths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("%s_%02d.png", safeBase, i+1))
		if err := Save(img, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// sanitizeBase removes or replaces characters that are unsafe for filenames.
func sanitizeBase(base string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\n", "\r", "\t", " "}
	result := base
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}

	if len(result) > 120 {
		result = result[:120]
	}
	if result == "" {
		result = "image"
	}
	return result
}
