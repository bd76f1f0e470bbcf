// Package output writes processing reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/notionbackup/pkg/transformer"
)

// Format represents report format types.
type Format string

const (
	FormatNone Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatNone, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

// Report describes one processed file.
type Report struct {
	File     string                `json:"file" yaml:"file"`
	Written  bool                  `json:"written" yaml:"written"`
	Stats    *transformer.Stats    `json:"stats" yaml:"stats"`
	Warnings []transformer.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewReport builds a report from a transformation result.
func NewReport(result *transformer.Result, written bool) *Report {
	return &Report{
		File:     result.Source,
		Written:  written,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	}
}

// Writer handles report serialization.
type Writer interface {
	// WriteReport outputs a single report.
	WriteReport(r *Report) error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent string
}

// WithIndent sets the JSON indentation string. An empty indent writes compact JSON.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}
