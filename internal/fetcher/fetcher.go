package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/relevador/internal/model"
)

// Default fetcher settings. They mirror the config package defaults.
const (
	defaultTimeout     = 10 * time.Second
	defaultDelay       = 1 * time.Second
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB
	defaultUserAgent   = "Relevador/1.0 (+https://github.com/nao1215/relevador)"
)

// Page is a fetched and decoded page.
type Page struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL after following redirects.
	FinalURL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// ContentType is the Content-Type header of the final response.
	ContentType string

	// Body is the response body decoded to UTF-8.
	Body string
}

// HTTPFetcher performs polite GET requests.
// It is safe for concurrent use.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	delay       time.Duration
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	robots      *robotsCache
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout, covering connect, headers and body.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithDelay sets the delay slept before every request.
func WithDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.delay = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		f.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithRobots enables or disables the robots.txt check in FetchSubpage.
func WithRobots(enabled bool) Option {
	return func(f *HTTPFetcher) {
		if enabled {
			f.robots = newRobotsCache()
		} else {
			f.robots = nil
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// New creates an HTTPFetcher. A nil client uses a new http.Client that
// follows redirects with the standard library's limits.
func New(client *http.Client, opts ...Option) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	f := &HTTPFetcher{
		client:      client,
		timeout:     defaultTimeout,
		delay:       defaultDelay,
		userAgent:   defaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch waits the politeness delay, then GETs rawURL and returns the decoded page.
// Any failure is returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.wait(ctx); err != nil {
		return nil, &FetchError{Kind: model.FailureConnection, URL: rawURL, Err: err}
	}

	f.logger.Debug("fetching page", "url", rawURL)

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, body, err := f.get(reqCtx, rawURL)
	if err != nil {
		return nil, err
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:       model.FailureHTTPStatus,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return nil, &FetchError{
			Kind:       model.FailureDecode,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType),
		}
	}

	text, err := decode(body, contentType)
	if err != nil {
		return nil, &FetchError{Kind: model.FailureDecode, URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	f.logger.Debug("fetched page", "url", rawURL, "final_url", finalURL,
		"status", resp.StatusCode, "bytes", len(body))

	return &Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        text,
	}, nil
}

// FetchSubpage is Fetch preceded by the robots.txt check when it is enabled.
// A disallowed URL is reported as a FailureRobots *FetchError and no request
// for the page is sent.
func (f *HTTPFetcher) FetchSubpage(ctx context.Context, rawURL string) (*Page, error) {
	if f.robots != nil && !f.robots.allowed(ctx, f, rawURL) {
		f.logger.Debug("robots.txt disallows page", "url", rawURL)
		return nil, &FetchError{Kind: model.FailureRobots, URL: rawURL, Err: ErrDisallowed}
	}
	return f.Fetch(ctx, rawURL)
}

// wait sleeps the politeness delay unless ctx ends first.
func (f *HTTPFetcher) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return nil
	}
}

// get performs the GET request and reads at most maxBodySize bytes of the body.
func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &FetchError{Kind: model.FailureConnection, URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es,ca;q=0.9,en;q=0.8,pt;q=0.7,fr;q=0.6,it;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, &FetchError{Kind: classifyTransportError(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, nil, &FetchError{
			Kind:       classifyTransportError(err),
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read body: %w", err),
		}
	}
	return resp, body, nil
}

// isTextual reports whether a Content-Type can be scanned as text.
// A missing Content-Type is accepted.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/xhtml+xml", mediaType == "application/xml":
		return true
	default:
		return false
	}
}

// decode converts body to UTF-8 using the Content-Type charset, a BOM or
// a <meta charset> declaration, falling back to windows-1252 detection.
func decode(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to determine charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return strings.ToValidUTF8(string(decoded), "�"), nil
}
