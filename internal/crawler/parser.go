package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Anchor is a hyperlink as it appears in the page.
type Anchor struct {
	// Href is the raw href attribute, not resolved.
	Href string

	// Text is the anchor's visible text with whitespace collapsed.
	Text string
}

// Document is the information extracted from an HTML page.
type Document struct {
	// Title is the text of the first <title> element.
	Title string

	// Lang is the lang attribute of the <html> element, if any.
	Lang string

	// Text is the visible text of the page. Script, style, noscript and
	// template content is removed and text nodes are separated by spaces.
	Text string

	// Anchors lists every <a href> in document order.
	Anchors []Anchor
}

// ParseError is returned when a page cannot be parsed as HTML.
// Callers recover by scanning RawText of the content instead.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// skippedElements hold content that is never rendered as text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// ParseHTML parses page content fetched from pageURL.
func ParseHTML(pageURL, content string) (*Document, error) {
	if _, err := url.Parse(pageURL); err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	doc := goquery.NewDocumentFromNode(root)

	result := &Document{
		Title:   collapseSpace(doc.Find("title").First().Text()),
		Lang:    strings.TrimSpace(doc.Find("html").First().AttrOr("lang", "")),
		Text:    visibleText(root),
		Anchors: make([]Anchor, 0),
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		result.Anchors = append(result.Anchors, Anchor{
			Href: href,
			Text: collapseSpace(s.Text()),
		})
	})

	return result, nil
}

// visibleText walks the DOM and joins the text nodes outside skipped elements.
func visibleText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteString(" ")
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return collapseSpace(b.String())
}

var (
	skippedBlockPattern = regexp.MustCompile(`(?is)<(script|style|noscript|template)\b.*?</(script|style|noscript|template)\s*>`)
	commentPattern      = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagPattern          = regexp.MustCompile(`(?s)<[^>]*>`)
)

// RawText removes markup from content without parsing it.
// It is the fallback when ParseHTML fails, so the page text can still be scanned.
func RawText(content string) string {
	text := skippedBlockPattern.ReplaceAllString(content, " ")
	text = commentPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	return collapseSpace(html.UnescapeString(text))
}

// collapseSpace trims s and replaces runs of whitespace with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
