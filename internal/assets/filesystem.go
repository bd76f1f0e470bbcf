package assets

import (
	"fmt"
	"os"
)

// FileLoader reads the stylesheet from a file.
// Implements Loader interface.
type FileLoader struct {
	path string
}

// NewFileLoader creates a FileLoader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Path returns the file the loader reads.
func (f *FileLoader) Path() string {
	return f.path
}

// LoadStylesheet reads the file as UTF-8 text. Read errors are wrapped, so
// errors.Is(err, fs.ErrNotExist) holds for a missing file.
func (f *FileLoader) LoadStylesheet() (string, error) {
	content, err := os.ReadFile(f.path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return checkContent(string(content), f.path)
}

// Compile-time interface check.
var _ Loader = (*FileLoader)(nil)
