// Package crawler extracts structure from fetched HTML pages.
//
// # Components
//
//   - ParseHTML: parses a page into its title, lang attribute, visible text
//     and anchors, using golang.org/x/net/html and goquery
//   - Discover: picks the sub-pages worth scanning from a homepage's anchors
//     by matching hint keywords against anchor text and href
//   - DetectLanguage: reports the main language of a page
//   - RawText: strips markup without parsing, for pages ParseHTML rejects
//
// # Usage
//
//	doc, err := crawler.ParseHTML(page.FinalURL, page.Body)
//	if err != nil {
//		text := crawler.RawText(page.Body)
//		...
//	}
//	links := crawler.Discover(page.FinalURL, doc.Anchors, hints, 3)
//
// Nothing in this package performs I/O.
package crawler
