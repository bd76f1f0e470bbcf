package transformer

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/notionbackup/internal/logger"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Page</title>
<style>body{color:black}</style>
</head>
<body>
<article id="4c1e2f" class="page sans">
<header id="h"><h1 id="t1" class="page-title">Page</h1></header>
<div id="b1" class="   ">plain</div>
<p class="">para</p>
<figure id="f1"><div class="source"><a href="/files/attachment%20name.pdf">Attachment Name</a></div></figure>
<figure id="f2"><div class="source"><a href="http://example.com/doc.pdf">External Doc</a></div></figure>
<figure id="f3"><div class="source"><a>No Href</a></div></figure>
<figure id="f4"><div class="source">caption only</div></figure>
</article>
</body>
</html>
`

func newTestTransformer(t *testing.T) (*Transformer, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Stylesheet = ".x{color:red}"
	cfg.Logger = slog.New(slog.NewTextHandler(buf, nil))
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr, buf
}

func writePage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	t.Run("nil config rejected", func(t *testing.T) {
		_, err := New(nil)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("New(nil) error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("default logger tagged with component name", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger.Init(logger.Options{Output: buf})
		defer logger.Init(logger.Options{})

		cfg := DefaultConfig()
		cfg.Stylesheet = "a{}"
		tr, err := New(cfg)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		tr.log.Info("found external link")
		if !strings.Contains(buf.String(), "component="+tr.Name()) {
			t.Errorf("expected component attribute, got %q", buf.String())
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing stylesheet",
			mutate:  func(c *Config) { c.Stylesheet = "" },
			wantErr: true,
			wantMsg: "Stylesheet is required",
		},
		{
			name:    "blank stylesheet",
			mutate:  func(c *Config) { c.Stylesheet = " \n " },
			wantErr: true,
			wantMsg: "blank",
		},
		{
			name:    "wrapper class with whitespace",
			mutate:  func(c *Config) { c.WrapperClass = "a b" },
			wantErr: true,
			wantMsg: "single class token",
		},
		{
			name:    "missing external prefix",
			mutate:  func(c *Config) { c.ExternalPrefix = "" },
			wantErr: true,
			wantMsg: "ExternalPrefix is required",
		},
		{
			name:    "indent width out of range",
			mutate:  func(c *Config) { c.Format.IndentWidth = 0 },
			wantErr: true,
			wantMsg: "IndentWidth must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Stylesheet = ".x{}"
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTransform_Pipeline(t *testing.T) {
	tr, logs := newTestTransformer(t)

	result, err := tr.Transform(samplePage, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	out, err := goquery.NewDocumentFromReader(strings.NewReader(result.Content))
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if n := out.Find("[id]").Length(); n != 0 {
		t.Errorf("expected no id attributes, found %d", n)
	}
	out.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		if len(ClassTokens(s)) == 0 {
			t.Errorf("empty class attribute left on %s", goquery.NodeName(s))
		}
	})

	anchors := out.Find(".source a")
	wantTexts := []string{"attachment%20name.pdf", "External Doc", "No Href"}
	if anchors.Length() != len(wantTexts) {
		t.Fatalf("found %d anchors, want %d", anchors.Length(), len(wantTexts))
	}
	for i, want := range wantTexts {
		if got := anchors.Eq(i).Text(); got != want {
			t.Errorf("anchor %d text = %q, want %q", i, got, want)
		}
	}

	styleRe := regexp.MustCompile(`body\{color:black\}\n\n\s*\.x\{color:red\}`)
	if !styleRe.MatchString(out.Find("style").Text()) {
		t.Errorf("style not injected after blank line: %q", out.Find("style").Text())
	}

	stats := result.Stats
	if stats.IDsRemoved != 8 {
		t.Errorf("IDsRemoved = %d, want 8", stats.IDsRemoved)
	}
	if stats.ClassesRemoved != 2 {
		t.Errorf("ClassesRemoved = %d, want 2", stats.ClassesRemoved)
	}
	if stats.WrappersFound != 4 || stats.LinksRewritten != 1 || stats.LinksSkipped != 2 {
		t.Errorf("unexpected link stats: wrappers=%d rewritten=%d skipped=%d",
			stats.WrappersFound, stats.LinksRewritten, stats.LinksSkipped)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("warnings = %v, want 2", result.Warnings)
	}
	if stats.InputBytes != len(samplePage) || stats.OutputBytes != len(result.Content) {
		t.Errorf("unexpected sizes: in=%d out=%d", stats.InputBytes, stats.OutputBytes)
	}

	for _, msg := range []string{"found external link", "found anchor block without href"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("expected diagnostic %q in %q", msg, logs.String())
		}
	}
}

func TestTransform_AnchorStaysInline(t *testing.T) {
	tr, _ := newTestTransformer(t)
	page := `<html><head><style>a{}</style></head><body>` +
		`<p class="source">See <a href="/files/attachment%20name.pdf">Attachment</a>. Done.</p></body></html>`

	result, err := tr.Transform(page, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := `<p class="source">See <a href="/files/attachment%20name.pdf">attachment%20name.pdf</a>. Done.</p>`
	if !strings.Contains(result.Content, want) {
		t.Errorf("expected %q in output:\n%s", want, result.Content)
	}
}

func TestTransform_Formatting(t *testing.T) {
	tr, _ := newTestTransformer(t)

	result, err := tr.Transform(samplePage, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if !strings.HasPrefix(result.Content, "<!DOCTYPE html>\n<html>\n    <head>\n") {
		t.Errorf("expected four-space indented document, got:\n%s", result.Content)
	}
	if !strings.HasSuffix(result.Content, "</html>\n") {
		t.Errorf("expected document to end with </html> and a newline")
	}

	// Formatting the output again changes nothing
	again, err := tr.formatter.Format(result.Content)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if again != result.Content {
		t.Errorf("formatting is not stable:\nfirst:\n%s\nsecond:\n%s", result.Content, again)
	}
}

func TestTransform_Deterministic(t *testing.T) {
	tr, _ := newTestTransformer(t)

	first, err := tr.Transform(samplePage, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	second, err := tr.Transform(samplePage, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if first.Content != second.Content {
		t.Error("expected identical output for identical input")
	}
}

func TestTransform_EscapesClosingStyleTag(t *testing.T) {
	tr, _ := newTestTransformer(t)
	tr.config.Stylesheet = ".x{}</style><script>alert(1)</script>"

	result, err := tr.Transform(samplePage, "page.html")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	out, err := goquery.NewDocumentFromReader(strings.NewReader(result.Content))
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if out.Find("script").Length() != 0 {
		t.Errorf("stylesheet escaped its <style> element:\n%s", result.Content)
	}
	if !strings.Contains(out.Find("style").Text(), `<\/style>`) {
		t.Errorf("expected escaped closing tag inside <style>")
	}
}

func TestProcessFile(t *testing.T) {
	tr, _ := newTestTransformer(t)
	path := writePage(t, samplePage)

	result, err := tr.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	if string(data) != result.Content {
		t.Error("file content does not match result content")
	}
	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
}

func TestProcessFile_SecondRunOnlyAppendsStylesheet(t *testing.T) {
	tr, _ := newTestTransformer(t)
	path := writePage(t, samplePage)

	if _, err := tr.ProcessFile(path); err != nil {
		t.Fatalf("first ProcessFile() error = %v", err)
	}
	first, _ := os.ReadFile(path)

	result, err := tr.ProcessFile(path)
	if err != nil {
		t.Fatalf("second ProcessFile() error = %v", err)
	}
	second, _ := os.ReadFile(path)

	if n := strings.Count(string(second), ".x{color:red}"); n != 2 {
		t.Errorf("stylesheet occurrences after second run = %d, want 2", n)
	}
	if result.Stats.IDsRemoved != 0 || result.Stats.ClassesRemoved != 0 {
		t.Errorf("second run should find nothing to strip: %+v", result.Stats)
	}

	if strings.Contains(string(second), "\n\n\n") {
		t.Errorf("second run added extra blank lines:\n%s", second)
	}
	styleBody := func(s string) string {
		return strings.SplitN(strings.SplitN(s, "<style>", 2)[1], "</style>", 2)[0]
	}
	firstBody := styleBody(string(first))
	end := strings.LastIndex(firstBody, ".x{color:red}") + len(".x{color:red}")
	indent := firstBody[strings.LastIndex(firstBody[:end], "\n")+1 : end-len(".x{color:red}")]
	wantBody := firstBody[:end] + "\n\n" + indent + ".x{color:red}" + firstBody[end:]
	if got := styleBody(string(second)); got != wantBody {
		t.Errorf("style after second run = %q, want %q", got, wantBody)
	}

	beforeStyle := func(s string) string { return strings.SplitN(s, "<style>", 2)[0] }
	afterStyle := func(s string) string { return strings.SplitN(s, "</style>", 2)[1] }
	if beforeStyle(string(first)) != beforeStyle(string(second)) {
		t.Error("content before <style> changed on second run")
	}
	if afterStyle(string(first)) != afterStyle(string(second)) {
		t.Error("content after </style> changed on second run")
	}
}

func TestProcessFile_Errors(t *testing.T) {
	tr, _ := newTestTransformer(t)

	t.Run("empty path", func(t *testing.T) {
		if _, err := tr.ProcessFile(""); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ProcessFile(\"\") error = %v, want ErrInvalidPath", err)
		}
	})

	t.Run("whitespace path is a file name", func(t *testing.T) {
		_, err := tr.ProcessFile(filepath.Join(t.TempDir(), "   "))
		if errors.Is(err, ErrInvalidPath) || !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ProcessFile() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := tr.ProcessFile(filepath.Join(t.TempDir(), "missing.html"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ProcessFile() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("no style element leaves file untouched", func(t *testing.T) {
		original := `<html><head></head><body><div id="a">x</div></body></html>`
		path := writePage(t, original)

		_, err := tr.ProcessFile(path)
		if !errors.Is(err, ErrNoStyleElement) {
			t.Fatalf("ProcessFile() error = %v, want ErrNoStyleElement", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read page: %v", err)
		}
		if string(data) != original {
			t.Error("file was modified despite failure")
		}
	})
}

func TestTransformFile_DoesNotWrite(t *testing.T) {
	tr, _ := newTestTransformer(t)
	path := writePage(t, samplePage)

	result, err := tr.TransformFile(path)
	if err != nil {
		t.Fatalf("TransformFile() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != samplePage {
		t.Error("TransformFile must not modify the file")
	}
	if result.Content == samplePage {
		t.Error("expected transformed content")
	}
}
