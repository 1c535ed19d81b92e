package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nao1215/relevador/internal/model"
)

var (
	// ErrHTTPStatus is wrapped by a FetchError for a non-2xx response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrUnsupportedContent is wrapped by a FetchError when the response is not text.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrDisallowed is wrapped by a FetchError when robots.txt disallows the URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// FetchError describes why a URL could not be fetched.
type FetchError struct {
	// Kind classifies the failure.
	Kind model.FailureKind

	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status for FailureHTTPStatus, zero otherwise.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == model.FailureHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a *FetchError from err.
// Errors of any other type are reported as connection failures.
func AsFetchError(rawURL string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Kind: model.FailureConnection, URL: rawURL, Err: err}
}

// classifyTransportError maps an error from http.Client.Do or a body read to a FailureKind.
func classifyTransportError(err error) model.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}
	return model.FailureConnection
}
