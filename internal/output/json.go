package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes reports as JSON documents.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// WriteReport encodes r followed by a newline.
func (w *JSONWriter) WriteReport(r *Report) error {
	enc := json.NewEncoder(w.w)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(r); err != nil {
		return err
	}
	return w.w.Flush()
}
