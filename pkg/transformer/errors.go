package transformer

import "errors"

var (
	// ErrInvalidPath is returned when the target path is empty.
	ErrInvalidPath = errors.New("invalid html path")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid transformer config")

	// ErrNoStyleElement is returned when the page has no <style> element to inject into.
	ErrNoStyleElement = errors.New("document has no <style> element")

	// ErrParse is returned when the HTML cannot be parsed or serialized.
	ErrParse = errors.New("html parse failed")
)
