// Package scanner finds keyword occurrences in page text.
//
// Matching is case-insensitive with full Unicode case folding after NFC
// normalization, so "Ciència Oberta", "CIÈNCIA OBERTA" and a decomposed
// "ciència oberta" all match the keyword "ciència oberta". Every
// occurrence, overlapping ones included, yields a hit with a snippet of
// the surrounding original text.
package scanner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/relevador/internal/model"
)

// Default scanner settings.
const (
	// DefaultSnippetRadius is the number of runes kept before and after a match.
	DefaultSnippetRadius = 80

	// DefaultMaxHitsPerPage caps hits per page per category. 0 means unlimited.
	DefaultMaxHitsPerPage = 50
)

// Scanner searches text for keywords. It holds no state between calls and
// is safe for concurrent use.
type Scanner struct {
	radius  int
	maxHits int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSnippetRadius sets how many runes of context are kept on each side of a match.
func WithSnippetRadius(radius int) Option {
	return func(s *Scanner) {
		s.radius = radius
	}
}

// WithMaxHitsPerPage caps the hits returned by one Scan call. 0 disables the cap.
//
// Design decision: the cap bounds evidence, not coverage. A page repeating
// a term in every menu entry or footer would otherwise fill the report with
// identical snippets. Coverage only needs one hit, so a capped page still
// counts as covered, and the Cantidad column reads as "at least" the cap.
func WithMaxHitsPerPage(n int) Option {
	return func(s *Scanner) {
		s.maxHits = n
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		radius:  DefaultSnippetRadius,
		maxHits: DefaultMaxHitsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.radius < 0 {
		s.radius = 0
	}
	return s
}

// Scan returns one hit per occurrence of each keyword in text.
// Hits are ordered by keyword list order, then by position in the text.
// Blank keywords are skipped.
func (s *Scanner) Scan(text, sourceURL string, category model.Category, keywords []string) []model.TermHit {
	hits := make([]model.TermHit, 0)
	if text == "" || len(keywords) == 0 {
		return hits
	}

	ft := newFoldedText(text)

	for _, kw := range keywords {
		term := strings.TrimSpace(kw)
		if term == "" {
			continue
		}
		needle := Fold(term)
		if needle == "" {
			continue
		}

		from := 0
		for from <= len(ft.folded)-len(needle) {
			idx := strings.Index(ft.folded[from:], needle)
			if idx < 0 {
				break
			}
			pos := from + idx
			start, end := ft.original(pos, pos+len(needle))

			hits = append(hits, model.TermHit{
				Term:      term,
				Category:  category,
				SourceURL: sourceURL,
				Snippet:   s.snippet(ft.text, start, end),
			})
			if s.maxHits > 0 && len(hits) >= s.maxHits {
				return hits
			}

			_, size := utf8.DecodeRuneInString(ft.folded[pos:])
			from = pos + size
		}
	}
	return hits
}

// ScanAll scans text once per category, in model.AllCategories order.
func (s *Scanner) ScanAll(text, sourceURL string, keywords map[model.Category][]string) map[model.Category][]model.TermHit {
	out := make(map[model.Category][]model.TermHit, len(keywords))
	for _, c := range model.AllCategories() {
		out[c] = s.Scan(text, sourceURL, c, keywords[c])
	}
	return out
}

// snippet returns the text around text[start:end], whitespace-collapsed and
// at most model.MaxSnippetLength runes long.
func (s *Scanner) snippet(text string, start, end int) string {
	match := text[start:end]
	matchLen := utf8.RuneCountInString(match)
	if matchLen >= model.MaxSnippetLength {
		return collapseSpace(truncateRunes(match, model.MaxSnippetLength))
	}

	radius := s.radius
	if limit := (model.MaxSnippetLength - matchLen) / 2; radius > limit {
		radius = limit
	}

	from := start
	for i := 0; i < radius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < radius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return collapseSpace(text[from:to])
}

// foldedText is a case-folded copy of a text with a map back to the original.
// For every byte i of folded, runeStart[i] and runeEnd[i] are the byte
// bounds in text of the rune that produced it.
type foldedText struct {
	text      string
	folded    string
	runeStart []int
	runeEnd   []int
}

func newFoldedText(raw string) *foldedText {
	text := norm.NFC.String(raw)
	caser := cases.Fold()

	var b strings.Builder
	b.Grow(len(text))
	starts := make([]int, 0, len(text))
	ends := make([]int, 0, len(text))

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		var f string
		if r < utf8.RuneSelf {
			f = string(toLowerASCII(byte(r)))
		} else {
			f = caser.String(string(r))
		}
		b.WriteString(f)
		for range len(f) {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		i += size
	}

	return &foldedText{
		text:      text,
		folded:    b.String(),
		runeStart: starts,
		runeEnd:   ends,
	}
}

// original maps the folded byte range [from, to) to a byte range in text.
func (f *foldedText) original(from, to int) (int, int) {
	return f.runeStart[from], f.runeEnd[to-1]
}

// Fold returns the match key of s: NFC-normalized and case-folded the same
// way scanned text is. Two keywords with the same key match the same text.
func Fold(s string) string {
	return newFoldedText(s).folded
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func truncateRunes(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
