package model

// MaxSnippetLength is the upper bound, in runes, of a TermHit snippet.
const MaxSnippetLength = 200

// TermHit is one occurrence of a keyword on a page.
// Hits are ordered by discovery order within a page and are not
// deduplicated across pages.
type TermHit struct {
	// Term is the keyword as configured (not as it appeared on the page).
	Term string `json:"term"`

	// Category is the keyword's category.
	Category Category `json:"category"`

	// SourceURL is the page the hit was found on.
	SourceURL string `json:"source_url"`

	// Snippet is the whitespace-collapsed text around the match.
	Snippet string `json:"snippet"`
}

// CategoryCoverage holds the hits of one category for one institution.
type CategoryCoverage struct {
	// Covered is true when at least one hit was found on any fetched page.
	Covered bool `json:"covered"`

	// Count is the number of hits. Always equal to len(Hits).
	Count int `json:"count"`

	// Hits are all hits of the category, page by page.
	Hits []TermHit `json:"hits,omitempty"`
}

// NewCategoryCoverage builds a coverage entry from hits.
func NewCategoryCoverage(hits []TermHit) *CategoryCoverage {
	return &CategoryCoverage{
		Covered: len(hits) > 0,
		Count:   len(hits),
		Hits:    hits,
	}
}

// Terms returns the distinct matched terms in first-seen order.
func (c *CategoryCoverage) Terms() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	terms := make([]string, 0)
	for _, h := range c.Hits {
		if !seen[h.Term] {
			seen[h.Term] = true
			terms = append(terms, h.Term)
		}
	}
	return terms
}
