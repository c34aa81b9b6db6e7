package validation

import (
	"fmt"
	"os"
)

// FileCheckError indicates a file existence check failed.
type FileCheckError struct {
	Path   string
	Reason string
}

func (e *FileCheckError) Error() string {
	return e.Reason
}

// CheckFileExists checks that a regular file exists at the given path.
// This is a pure function that only checks existence, no side effects.
//
// Returns nil if the file exists, or a *FileCheckError describing the failure.
func CheckFileExists(path string) error {
	if path == "" {
		return &FileCheckError{
			Path:   path,
			Reason: "file path cannot be empty",
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileCheckError{
				Path:   path,
				Reason: fmt.Sprintf("file not found: %s", path),
			}
		}
		return &FileCheckError{
			Path:   path,
			Reason: fmt.Sprintf("cannot stat %s: %v", path, err),
		}
	}

	if info.IsDir() {
		return &FileCheckError{
			Path:   path,
			Reason: fmt.Sprintf("path is a directory, not a file: %s", path),
		}
	}

	return nil
}
