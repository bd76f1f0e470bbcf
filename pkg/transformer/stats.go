package transformer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures what a transformation did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Element counts
	ElementsVisited int `json:"elements_visited" yaml:"elements_visited"`

	// Attribute cleaning
	IDsRemoved     int `json:"ids_removed" yaml:"ids_removed"`
	ClassesRemoved int `json:"classes_removed" yaml:"classes_removed"`

	// Attachment links
	WrappersFound  int `json:"wrappers_found" yaml:"wrappers_found"`
	LinksRewritten int `json:"links_rewritten" yaml:"links_rewritten"`
	LinksSkipped   int `json:"links_skipped" yaml:"links_skipped"`

	// Style injection
	InjectedBytes int `json:"injected_bytes" yaml:"injected_bytes"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration"`
	FormatDuration    time.Duration `json:"format_duration_ns" yaml:"format_duration"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{}
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes))))

	sb.WriteString(fmt.Sprintf("Elements: %d visited, %d ids removed, %d empty classes removed\n",
		s.ElementsVisited, s.IDsRemoved, s.ClassesRemoved))

	if s.WrappersFound > 0 {
		sb.WriteString(fmt.Sprintf("Attachment links: %d wrappers, %d rewritten, %d skipped\n",
			s.WrappersFound, s.LinksRewritten, s.LinksSkipped))
	}

	if s.InjectedBytes > 0 {
		sb.WriteString(fmt.Sprintf("Injected CSS: %s\n", humanize.Bytes(uint64(s.InjectedBytes))))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, format=%v, total=%v\n",
		s.ParseDuration.Round(time.Millisecond),
		s.TransformDuration.Round(time.Millisecond),
		s.FormatDuration.Round(time.Millisecond),
		s.TotalDuration.Round(time.Millisecond)))

	return sb.String()
}

// Warning is a soft anomaly: the affected element was left unchanged.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`                         // "links", "style"
	Message string `json:"message" yaml:"message"`                     // Human-readable description
	Context string `json:"context,omitempty" yaml:"context,omitempty"` // Source path or href
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a transformation.
type Result struct {
	// Source is the path or label of the processed document.
	Source string `json:"source" yaml:"source"`

	// Content is the formatted HTML.
	Content string `json:"-" yaml:"-"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains soft anomalies encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
