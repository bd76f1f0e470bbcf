// Package htmlfmt pretty-prints HTML documents for human readers.
// It drives github.com/yosssi/gohtml and adapts its output to a configurable
// indentation width and print width.
package htmlfmt

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yosssi/gohtml"
)

// ErrUnsupported is returned for option combinations the formatter cannot honour.
var ErrUnsupported = errors.New("unsupported formatter option")

// gohtmlIndent is the fixed indentation unit gohtml emits.
const gohtmlIndent = 2

// Config configures the formatter.
type Config struct {
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int `json:"indent_width" yaml:"indent_width" validate:"min=1,max=16"`

	// PrintWidth is the column text is wrapped at. Zero disables wrapping.
	PrintWidth int `json:"print_width" yaml:"print_width" validate:"min=0"`

	// WhitespaceSensitive preserves insignificant whitespace between inline nodes.
	// Only the insensitive mode is supported.
	WhitespaceSensitive bool `json:"whitespace_sensitive" yaml:"whitespace_sensitive"`

	// BracketSameLine keeps the closing ">" of a start tag on the line of its last attribute.
	BracketSameLine bool `json:"bracket_same_line" yaml:"bracket_same_line"`
}

// DefaultConfig returns the settings used for exported pages:
// four-space indentation, 160 columns, whitespace-insensitive, same-line brackets.
func DefaultConfig() Config {
	return Config{
		IndentWidth:         4,
		PrintWidth:          160,
		WhitespaceSensitive: false,
		BracketSameLine:     true,
	}
}

// Formatter reformats serialized HTML.
type Formatter struct {
	config Config
}

// New creates a formatter. A non-positive IndentWidth falls back to the default.
func New(config Config) *Formatter {
	if config.IndentWidth <= 0 {
		config.IndentWidth = DefaultConfig().IndentWidth
	}
	if config.PrintWidth < 0 {
		config.PrintWidth = 0
	}
	return &Formatter{config: config}
}

// gohtml is configured through package-level variables.
var gohtmlMu sync.Mutex

// Format reformats htmlContent. Elements whose content fits on one line are
// condensed, and inline elements stay within their surrounding text. The
// result ends with exactly one newline and formatting it again yields the
// same bytes.
func (f *Formatter) Format(htmlContent string) (string, error) {
	if f.config.WhitespaceSensitive {
		return "", fmt.Errorf("%w: whitespace-sensitive formatting", ErrUnsupported)
	}
	if !f.config.BracketSameLine {
		return "", fmt.Errorf("%w: brackets on a separate line", ErrUnsupported)
	}

	gohtmlMu.Lock()
	prevWrap, prevCondense := gohtml.LineWrapColumn, gohtml.Condense
	gohtml.LineWrapColumn = f.config.PrintWidth
	gohtml.Condense = true
	out := gohtml.Format(htmlContent)
	gohtml.LineWrapColumn, gohtml.Condense = prevWrap, prevCondense
	gohtmlMu.Unlock()

	out = reindent(out, f.config.IndentWidth)
	return strings.TrimRight(out, "\n") + "\n", nil
}

// preformattedTags matches gohtml.IsPreformatted: their bodies are emitted verbatim.
var preformattedTags = []string{"pre", "textarea"}

// reindent rescales gohtml's two-space indentation to width spaces per level
// and drops trailing blanks. Lines inside a preformatted element are left untouched.
func reindent(s string, width int) string {
	lines := strings.Split(s, "\n")
	tag, depth := "", 0
	for i, line := range lines {
		if depth > 0 {
			depth += nesting(strings.ToLower(line), tag)
			continue
		}

		body := strings.TrimLeft(line, " ")
		lead := len(line) - len(body)
		tag, depth = openPreformatted(body)
		if depth == 0 {
			body = strings.TrimRight(body, " \t")
		}
		if body == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.Repeat(" ", lead/gohtmlIndent*width+lead%gohtmlIndent) + body
	}
	return strings.Join(lines, "\n")
}

// openPreformatted reports the first preformatted element started on line
// and how many of its kind are still open at the end of the line.
func openPreformatted(line string) (string, int) {
	lower := strings.ToLower(line)
	first, tag := -1, ""
	for _, t := range preformattedTags {
		if i := indexTag(lower, "<"+t); i >= 0 && (first < 0 || i < first) {
			first, tag = i, t
		}
	}
	if tag == "" {
		return "", 0
	}
	if depth := nesting(lower[first:], tag); depth > 0 {
		return tag, depth
	}
	return "", 0
}

// nesting returns the number of start tags minus end tags of tag in s.
func nesting(s, tag string) int {
	return countTag(s, "<"+tag) - countTag(s, "</"+tag)
}

func countTag(s, prefix string) int {
	n := 0
	for i := indexTag(s, prefix); i >= 0; i = indexTag(s, prefix) {
		n++
		s = s[i+len(prefix):]
	}
	return n
}

// indexTag finds prefix followed by the end of a tag name.
func indexTag(s, prefix string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], prefix)
		if i < 0 {
			return -1
		}
		end := offset + i + len(prefix)
		if end == len(s) || isNameEnd(s[end]) {
			return offset + i
		}
		offset = end
	}
}

func isNameEnd(c byte) bool {
	switch c {
	case '>', '/', ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
