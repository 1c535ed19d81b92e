package model

// PageKind tells whether a fetched page was the homepage or a discovered sub-page.
type PageKind string

const (
	// PageKindHomepage is the institution's configured URL.
	PageKindHomepage PageKind = "homepage"
	// PageKindSubpage is a link discovered on the homepage.
	PageKindSubpage PageKind = "subpage"
)

// FailureKind classifies why a page could not be fetched.
type FailureKind string

const (
	// FailureTimeout means the request exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureConnection covers DNS, TCP, TLS and other transport errors.
	FailureConnection FailureKind = "connection"
	// FailureHTTPStatus means the server answered with a non-2xx status.
	FailureHTTPStatus FailureKind = "http_status"
	// FailureDecode means the body could not be read or decoded as text.
	FailureDecode FailureKind = "decode"
	// FailureRobots means robots.txt disallowed the URL, so no request was sent.
	FailureRobots FailureKind = "robots"
)

// PageFetchResult is the outcome of fetching one URL.
// Page text is never kept in the record, only its size.
type PageFetchResult struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Empty when the fetch failed.
	FinalURL string `json:"final_url,omitempty"`

	// Kind is homepage or subpage.
	Kind PageKind `json:"kind"`

	// OK is true when the page was fetched and decoded.
	OK bool `json:"ok"`

	// StatusCode is the HTTP status, zero when no response arrived.
	StatusCode int `json:"status_code,omitempty"`

	// Size is the decoded content length in bytes.
	Size int `json:"size,omitempty"`

	// FailureKind classifies the failure when OK is false.
	FailureKind FailureKind `json:"failure_kind,omitempty"`

	// Failure is a human-readable failure reason when OK is false.
	Failure string `json:"failure,omitempty"`
}
