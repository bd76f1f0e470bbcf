package transformer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/notionbackup/internal/logger"
	"github.com/jmylchreest/notionbackup/pkg/htmlfmt"
)

// Transformer rewrites exported pages. A Transformer holds no per-document
// state; one instance can process any number of files sequentially.
type Transformer struct {
	config    *Config
	formatter *htmlfmt.Formatter
	log       *slog.Logger
}

// New creates a Transformer. The configuration is validated; a nil config is
// rejected because the stylesheet has no default.
func New(config *Config) (*Transformer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	t := &Transformer{
		config:    config,
		formatter: htmlfmt.New(config.Format),
		log:       config.Logger,
	}
	if t.log == nil {
		t.log = logger.With("component", t.Name())
	}
	return t, nil
}

// Name returns the transformer name for logging.
func (t *Transformer) Name() string {
	return "transformer"
}

// ProcessFile rewrites the page at path in place. The file is written once,
// after every pass has succeeded; on error it is left untouched.
func (t *Transformer) ProcessFile(path string) (*Result, error) {
	result, err := t.TransformFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(result.Content), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	t.log.Info("processed",
		"file", filepath.Base(path),
		"size", humanize.Bytes(uint64(result.Stats.OutputBytes)),
		"links", result.Stats.LinksRewritten,
	)
	return result, nil
}

// TransformFile reads the page at path and returns the transformed content
// without writing it back.
func (t *Transformer) TransformFile(path string) (*Result, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return t.Transform(string(data), path)
}

// Transform runs the pass pipeline over htmlContent. source names the
// document in diagnostics and warnings.
func (t *Transformer) Transform(htmlContent, source string) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		Source: source,
		Stats:  NewStats(),
	}
	result.Stats.InputBytes = len(htmlContent)

	// Parse
	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// Transform. Order matters: classes are normalized before wrappers are
	// matched, and every pass sees the same element snapshot.
	transformStart := time.Now()
	elems := snapshot(doc)
	result.Stats.ElementsVisited = len(elems)

	t.stripIDs(elems, result)
	t.normalizeClasses(elems, result)
	t.rewriteAttachmentLinks(elems, result)
	if err := t.injectStylesheet(doc, result); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	result.Stats.TransformDuration = time.Since(transformStart)

	// Serialize and format
	formatStart := time.Now()
	serialized, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	formatted, err := t.formatter.Format(serialized)
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", source, err)
	}
	result.Stats.FormatDuration = time.Since(formatStart)

	result.Content = formatted
	result.Stats.OutputBytes = len(formatted)
	result.Stats.TotalDuration = time.Since(startTime)
	return result, nil
}
