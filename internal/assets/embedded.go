package assets

import (
	_ "embed"
)

//go:embed injection/inject.css
var injectCSS string

// EmbeddedLoader serves the stylesheet bundled into the binary.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStylesheet returns the bundled stylesheet.
func (e *EmbeddedLoader) LoadStylesheet() (string, error) {
	return checkContent(injectCSS, "embedded inject.css")
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
