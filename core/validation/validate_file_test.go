package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(existing, []byte("content"), 0644); err != nil {
		t.Fatalf("Failed to create fixture file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing file", existing, false},
		{"missing file", filepath.Join(dir, "absent.txt"), true},
		{"empty path", "", true},
		{"directory not file", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFileExists(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckFileExists(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestCheckFileExists_ErrorCarriesPath(t *testing.T) {
	err := CheckFileExists("/no/such/file.png")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}

	var fileErr *FileCheckError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Expected *FileCheckError, got %T", err)
	}
	if fileErr.Path != "/no/such/file.png" {
		t.Errorf("Expected path in error, got %q", fileErr.Path)
	}
}
