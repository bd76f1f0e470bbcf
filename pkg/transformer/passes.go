package transformer

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var anchorSelector = cascadia.MustCompile("a")

// snapshot materializes every element of the document in document order.
// Passes iterate the snapshot so attribute removal cannot disturb iteration.
func snapshot(doc *goquery.Document) []*goquery.Selection {
	all := doc.Find("*")
	elems := make([]*goquery.Selection, 0, all.Length())
	all.Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, s)
	})
	return elems
}

// ClassTokens returns the non-empty whitespace-separated tokens of the
// element's class attribute. A missing attribute yields nil.
func ClassTokens(s *goquery.Selection) []string {
	class, exists := s.Attr("class")
	if !exists {
		return nil
	}
	return strings.Fields(class)
}

func hasClassToken(s *goquery.Selection, token string) bool {
	for _, t := range ClassTokens(s) {
		if t == token {
			return true
		}
	}
	return false
}

// Basename returns the final path segment of href, or href itself when it
// has no separator. Trailing separators are ignored and no URL decoding is
// applied, so "/files/a%20b.pdf" yields "a%20b.pdf".
func Basename(href string) string {
	trimmed := strings.TrimRight(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// stripIDs removes the id attribute from every element.
func (t *Transformer) stripIDs(elems []*goquery.Selection, result *Result) {
	for _, s := range elems {
		if _, exists := s.Attr("id"); exists {
			s.RemoveAttr("id")
			result.Stats.IDsRemoved++
		}
	}
}

// normalizeClasses drops class attributes that hold no tokens.
func (t *Transformer) normalizeClasses(elems []*goquery.Selection, result *Result) {
	for _, s := range elems {
		if _, exists := s.Attr("class"); !exists {
			continue
		}
		if len(ClassTokens(s)) == 0 {
			s.RemoveAttr("class")
			result.Stats.ClassesRemoved++
		}
	}
}

// rewriteAttachmentLinks replaces the text of the first anchor inside each
// link wrapper with the basename of its href.
func (t *Transformer) rewriteAttachmentLinks(elems []*goquery.Selection, result *Result) {
	for _, wrapper := range elems {
		if !hasClassToken(wrapper, t.config.WrapperClass) {
			continue
		}
		result.Stats.WrappersFound++

		anchor := wrapper.FindMatcher(anchorSelector).First()
		if anchor.Length() == 0 {
			t.log.Debug("link wrapper without anchor", "path", result.Source)
			continue
		}

		href, exists := anchor.Attr("href")
		if !exists || href == "" {
			t.log.Info("found anchor block without href", "path", result.Source)
			result.AddWarning("links", "anchor without href", result.Source)
			result.Stats.LinksSkipped++
			continue
		}

		if strings.HasPrefix(href, t.config.ExternalPrefix) {
			t.log.Info("found external link", "path", result.Source, "href", href)
			result.AddWarning("links", "external link left unchanged", href)
			result.Stats.LinksSkipped++
			continue
		}

		anchor.SetText(Basename(href))
		result.Stats.LinksRewritten++
	}
}

// injectStylesheet appends the configured CSS to the first <style> element,
// separated from the existing rules by a blank line. Trailing whitespace of
// the existing rules is dropped so the separator stays a single blank line.
func (t *Transformer) injectStylesheet(doc *goquery.Document, result *Result) error {
	styles := doc.Find("style")
	if styles.Length() == 0 {
		return ErrNoStyleElement
	}
	if styles.Length() > 1 {
		t.log.Debug("multiple style elements, injecting into the first",
			"path", result.Source, "count", styles.Length())
	}

	style := styles.First()
	css := sanitizeCSS(t.config.Stylesheet)
	existing := strings.TrimRightFunc(style.Text(), unicode.IsSpace)
	setRawText(style.Nodes[0], existing+"\n\n"+css)
	result.Stats.InjectedBytes += len(css)
	return nil
}

// setRawText replaces the children of n with a single text node. Style
// content is raw text, so it is stored unescaped.
func setRawText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// sanitizeCSS escapes sequences that could close the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
