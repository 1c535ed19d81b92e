package model

import "time"

// Status describes how far the survey of an institution got.
type Status string

const (
	// StatusReachable means the homepage was fetched.
	StatusReachable Status = "reachable"
	// StatusUnreachable means the homepage fetch failed; nothing was scanned.
	StatusUnreachable Status = "unreachable"
	// StatusSkipped means the run was cancelled before the institution started.
	StatusSkipped Status = "skipped"
)

// MaxContentSampleLength is the number of runes of homepage text kept as a sample.
const MaxContentSampleLength = 500

// InstitutionRecord is the result of surveying one institution.
// It is created once per institution per run and not modified after
// the surveyor finishes with it.
type InstitutionRecord struct {
	// Institution is the configured target.
	Institution Institution `json:"institution"`

	// ReviewedAt is when the survey of this institution started.
	ReviewedAt time.Time `json:"reviewed_at"`

	// Status is reachable, unreachable or skipped.
	Status Status `json:"status"`

	// FailureReason explains an unreachable or skipped status.
	FailureReason string `json:"failure_reason,omitempty"`

	// Pages lists every URL attempted, homepage first, without content.
	Pages []PageFetchResult `json:"pages"`

	// Coverage holds hits per category. All three categories are always present.
	Coverage map[Category]*CategoryCoverage `json:"coverage"`

	// Language is the detected main language of the homepage.
	Language string `json:"language,omitempty"`

	// ContentSample is the beginning of the homepage's visible text.
	ContentSample string `json:"content_sample,omitempty"`
}

// NewInstitutionRecord creates a record with empty coverage for every category.
func NewInstitutionRecord(inst Institution, reviewedAt time.Time) *InstitutionRecord {
	r := &InstitutionRecord{
		Institution: inst,
		ReviewedAt:  reviewedAt,
		Status:      StatusReachable,
		Pages:       make([]PageFetchResult, 0),
		Coverage:    make(map[Category]*CategoryCoverage, len(AllCategories())),
	}
	for _, c := range AllCategories() {
		r.Coverage[c] = NewCategoryCoverage(nil)
	}
	return r
}

// NewSkippedRecord creates the record of an institution that was never started.
func NewSkippedRecord(inst Institution, reason string) *InstitutionRecord {
	r := NewInstitutionRecord(inst, time.Time{})
	r.Status = StatusSkipped
	r.FailureReason = reason
	return r
}

// Reachable reports whether the homepage was fetched.
func (r *InstitutionRecord) Reachable() bool {
	return r.Status == StatusReachable
}

// CoverageFor returns the coverage of a category, never nil.
func (r *InstitutionRecord) CoverageFor(c Category) *CategoryCoverage {
	if cov, ok := r.Coverage[c]; ok && cov != nil {
		return cov
	}
	return NewCategoryCoverage(nil)
}

// AttemptedURLs returns every URL the surveyor tried, in fetch order.
func (r *InstitutionRecord) AttemptedURLs() []string {
	urls := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		urls = append(urls, p.URL)
	}
	return urls
}

// FetchedURLs returns the URLs that were fetched successfully.
func (r *InstitutionRecord) FetchedURLs() []string {
	urls := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.OK {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

// TotalHits returns the number of hits across all categories.
func (r *InstitutionRecord) TotalHits() int {
	total := 0
	for _, c := range AllCategories() {
		total += r.CoverageFor(c).Count
	}
	return total
}

// AnyCovered reports whether at least one category is covered.
func (r *InstitutionRecord) AnyCovered() bool {
	for _, c := range AllCategories() {
		if r.CoverageFor(c).Covered {
			return true
		}
	}
	return false
}
