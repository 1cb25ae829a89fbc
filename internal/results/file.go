// Package results manages the JSON artifact written by the scan script.
package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"netscan/internal/logger"
)

// EmptyResults is written when no scan has produced a file yet.
const EmptyResults = "[]"

// File is the results artifact on disk. Its content belongs to the scan
// script; this package only creates a placeholder and hands out the path.
type File struct {
	path string
}

// NewFile wraps the results artifact at path
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the artifact location.
func (f *File) Path() string {
	return f.path
}

// Ensure creates the file with EmptyResults if it does not exist.
// An existing file is never touched.
func (f *File) Ensure() error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", f.path, err)
	}

	logger.Warnf("%s not found, creating an empty one.", filepath.Base(f.path))

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		// created concurrently by the script or another request
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(EmptyResults); err != nil {
		return fmt.Errorf("failed to write to %s: %w", f.path, err)
	}
	return nil
}
