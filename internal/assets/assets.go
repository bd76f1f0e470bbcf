// Package assets loads the stylesheet injected into processed pages.
//
// The stylesheet comes either from an explicit file path or from the copy
// bundled into the binary. Paths are resolved once, by the caller, so the
// transformer never depends on the process working directory.
package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Builtin selects the bundled stylesheet instead of a file.
const Builtin = "builtin"

// DefaultStylesheetPath is the conventional stylesheet location, relative to
// the working directory the CLI runs in.
var DefaultStylesheetPath = filepath.Join("notionbackup", "injection", "inject.css")

var (
	// ErrEmptyStylesheet indicates the stylesheet has no content.
	ErrEmptyStylesheet = errors.New("stylesheet is empty")

	// ErrInvalidStylesheetPath indicates the stylesheet reference cannot be resolved.
	ErrInvalidStylesheetPath = errors.New("invalid stylesheet path")
)

// Loader loads the stylesheet to inject.
type Loader interface {
	LoadStylesheet() (string, error)
}

// ResolveStylesheetPath turns a configured stylesheet reference into an
// absolute path. An empty reference selects DefaultStylesheetPath; relative
// references are joined to workdir. Builtin is returned unchanged.
func ResolveStylesheetPath(workdir, configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured == Builtin {
		return Builtin, nil
	}
	if configured == "" {
		configured = DefaultStylesheetPath
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured), nil
	}
	if workdir == "" {
		return "", fmt.Errorf("%w: relative path %q without a working directory", ErrInvalidStylesheetPath, configured)
	}
	return filepath.Join(workdir, configured), nil
}

// NewLoader returns the loader for a configured stylesheet reference.
func NewLoader(workdir, configured string) (Loader, error) {
	resolved, err := ResolveStylesheetPath(workdir, configured)
	if err != nil {
		return nil, err
	}
	if resolved == Builtin {
		return NewEmbeddedLoader(), nil
	}
	return NewFileLoader(resolved), nil
}

// checkContent rejects blank stylesheets.
func checkContent(content, origin string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyStylesheet, origin)
	}
	return content, nil
}
