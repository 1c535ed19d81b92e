package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLinks is the number of sub-pages returned by Discover by default.
const DefaultMaxLinks = 3

// discoverOptions holds the optional Discover settings.
type discoverOptions struct {
	sameHostOnly bool
}

// DiscoverOption configures Discover.
type DiscoverOption func(*discoverOptions)

// WithSameHostOnly restricts results to the base URL's host.
// A leading "www." is ignored on both sides. Enabled by default.
func WithSameHostOnly(enabled bool) DiscoverOption {
	return func(o *discoverOptions) {
		o.sameHostOnly = enabled
	}
}

// Discover selects the sub-pages worth scanning from a page's anchors.
//
// An anchor qualifies when its text or href contains one of hints,
// compared case-insensitively with Unicode folding. Qualifying hrefs are
// resolved against baseURL (the final URL of the homepage); non-HTTP(S)
// links are discarded, fragments are dropped, and duplicates are removed
// after normalization. The page itself is never returned.
//
// At most maxLinks absolute URLs are returned, in document order.
func Discover(baseURL string, anchors []Anchor, hints []string, maxLinks int, opts ...DiscoverOption) []string {
	o := &discoverOptions{sameHostOnly: true}
	for _, opt := range opts {
		opt(o)
	}

	links := make([]string, 0, maxLinks)
	if maxLinks <= 0 || len(hints) == 0 {
		return links
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	folded := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = fold(strings.TrimSpace(h)); h != "" {
			folded = append(folded, h)
		}
	}

	seen := map[string]bool{normalizeURL(base): true}
	for _, a := range anchors {
		if len(links) >= maxLinks {
			break
		}
		if !matchesHint(a, folded) {
			continue
		}

		target, ok := resolveURL(base, a.Href)
		if !ok {
			continue
		}
		if o.sameHostOnly && !sameHost(base, target) {
			continue
		}

		key := normalizeURL(target)
		if seen[key] {
			continue
		}
		seen[key] = true
		links = append(links, key)
	}

	return links
}

// matchesHint reports whether the anchor text or href contains a folded hint.
func matchesHint(a Anchor, foldedHints []string) bool {
	text := fold(a.Text)
	href := fold(a.Href)
	if unescaped, err := url.PathUnescape(a.Href); err == nil {
		href += " " + fold(unescaped)
	}
	for _, h := range foldedHints {
		if strings.Contains(text, h) || strings.Contains(href, h) {
			return true
		}
	}
	return false
}

// resolveURL resolves href against base and keeps only http(s) results.
func resolveURL(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}

	resolved := base.ResolveReference(ref)
	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
	default:
		// javascript:, mailto:, tel:, data: and other schemes
		return nil, false
	}
	if resolved.Host == "" {
		return nil, false
	}
	return resolved, true
}

// normalizeURL returns the form of u used for deduplication.
// The fragment is removed, scheme and host are lower-cased, and an
// empty path becomes "/".
func normalizeURL(u *url.URL) string {
	n := *u
	n.Fragment = ""
	n.RawFragment = ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Path == "" {
		n.Path = "/"
		n.RawPath = ""
	}
	return n.String()
}

// sameHost compares hosts ignoring case and a leading "www.".
func sameHost(a, b *url.URL) bool {
	return trimWWW(a.Host) == trimWWW(b.Host)
}

func trimWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// fold returns the NFC-normalized, case-folded form of s.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
