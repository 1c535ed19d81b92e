package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// They are returned wrapped in *Error so callers can use errors.Is for the
// rule that failed and errors.As to get the offending field.
var (
	// ErrNoInstitutions is returned when the survey file lists no institutions.
	ErrNoInstitutions = errors.New("no institutions to survey")

	// ErrEmptyName is returned when an institution has no name.
	ErrEmptyName = errors.New("institution name must not be empty")

	// ErrEmptyURL is returned when an institution has no URL.
	ErrEmptyURL = errors.New("institution URL must not be empty")

	// ErrInvalidURL is returned when an institution URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("institution URL must be an absolute http or https URL")

	// ErrDuplicateName is returned when two institutions share a name.
	ErrDuplicateName = errors.New("duplicate institution name")

	// ErrEmptyKeywords is returned when a category has no keywords.
	ErrEmptyKeywords = errors.New("keyword list must not be empty")

	// ErrUnknownCategory is returned for a keyword group that is not a known category.
	ErrUnknownCategory = errors.New("unknown keyword category")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the delay between requests is negative.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxSubpages is returned when the sub-page limit is negative.
	ErrInvalidMaxSubpages = errors.New("invalid max sub-pages: must be non-negative")

	// ErrInvalidSnippetRadius is returned when the snippet radius is not positive.
	ErrInvalidSnippetRadius = errors.New("invalid snippet radius: must be positive")

	// ErrInvalidMaxHitsPerPage is returned when the per-page hit cap is negative.
	ErrInvalidMaxHitsPerPage = errors.New("invalid max hits per page: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrUnknownFormat is returned for an unsupported report format.
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrConfigNotFound is returned when the survey file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Error is a configuration error. It is fatal: the run is aborted before
// any institution is fetched.
type Error struct {
	// Field names the offending setting or entry, e.g. "institutions[2].url".
	// Empty when the error concerns the configuration as a whole.
	Field string

	// Err is one of the sentinel errors above, possibly wrapped.
	Err error
}

// newError creates an *Error for field.
func newError(field string, err error) *Error {
	return &Error{Field: field, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
