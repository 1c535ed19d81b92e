package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single page request, including the body read.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestDelay is slept before every request, homepage and sub-pages alike.
	DefaultRequestDelay = 1 * time.Second

	// DefaultMaxSubpages is how many discovered links are fetched per institution.
	DefaultMaxSubpages = 3

	// DefaultSnippetRadius is the number of runes kept on each side of a match.
	DefaultSnippetRadius = 80

	// DefaultMaxHitsPerPage caps hits per page per category. 0 disables the cap.
	DefaultMaxHitsPerPage = 50

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultConcurrency surveys institutions one at a time.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies the surveyor in server logs.
	DefaultUserAgent = "Relevador/1.0 (+https://github.com/nao1215/relevador)"

	// DefaultFormat is the report format written by the survey command.
	DefaultFormat = FormatXLSX

	// AppName is the application name used for XDG directory paths.
	AppName = "relevador"
)

// Report formats accepted by the survey command.
const (
	FormatXLSX     = "xlsx"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
	FormatSQLite   = "sqlite"
)

// Formats returns every supported report format.
func Formats() []string {
	return []string{FormatXLSX, FormatMarkdown, FormatText, FormatJSON, FormatSQLite}
}

// Config holds the run settings.
// It is populated from defaults, then the survey file, then CLI flags, and
// passed down explicitly; nothing reads it from global state.
type Config struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RequestDelay is slept before each request to rate-limit outbound traffic.
	RequestDelay time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Headers are extra request headers, e.g. a From address for site operators.
	Headers map[string]string

	// MaxSubpages is the maximum number of discovered sub-pages fetched
	// per institution. 0 surveys homepages only.
	MaxSubpages int

	// SnippetRadius is the number of runes kept before and after a match.
	SnippetRadius int

	// MaxHitsPerPage caps hits per page per category. 0 means unlimited.
	MaxHitsPerPage int

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// Concurrency is the number of institutions surveyed at the same time.
	Concurrency int

	// RespectRobots enables the best-effort robots.txt check for sub-pages.
	RespectRobots bool

	// SameHostOnly restricts discovered sub-pages to the homepage's host.
	SameHostOnly bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the survey file path. Empty means search the default locations.
	ConfigFilePath string

	// Format is the report format, one of Formats().
	Format string

	// ReportFile is where the report is written. Empty means a generated
	// file name for binary formats and stdout for text formats.
	ReportFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		RequestDelay:   DefaultRequestDelay,
		UserAgent:      DefaultUserAgent,
		Headers:        make(map[string]string),
		MaxSubpages:    DefaultMaxSubpages,
		SnippetRadius:  DefaultSnippetRadius,
		MaxHitsPerPage: DefaultMaxHitsPerPage,
		MaxBodySize:    DefaultMaxBodySize,
		Concurrency:    DefaultConcurrency,
		RespectRobots:  true,
		SameHostOnly:   true,
		Format:         DefaultFormat,
	}
}

// ApplySettings overlays the non-zero settings of a survey file onto c.
func (c *Config) ApplySettings(s Settings) {
	if s.Timeout != 0 {
		c.Timeout = s.Timeout
	}
	if s.RequestDelay != nil {
		c.RequestDelay = *s.RequestDelay
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if len(s.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range s.Headers {
			c.Headers[k] = v
		}
	}
	if s.MaxSubpages != nil {
		c.MaxSubpages = *s.MaxSubpages
	}
	if s.SnippetRadius != 0 {
		c.SnippetRadius = s.SnippetRadius
	}
	if s.MaxHitsPerPage != nil {
		c.MaxHitsPerPage = *s.MaxHitsPerPage
	}
	if s.MaxBodySize != 0 {
		c.MaxBodySize = s.MaxBodySize
	}
	if s.Concurrency != 0 {
		c.Concurrency = s.Concurrency
	}
	if s.RespectRobots != nil {
		c.RespectRobots = *s.RespectRobots
	}
	if s.SameHostOnly != nil {
		c.SameHostOnly = *s.SameHostOnly
	}
}

// Validate checks the run settings and returns the first problem found as *Error.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return newError("timeout", ErrInvalidTimeout)
	}
	if c.RequestDelay < 0 {
		return newError("request_delay", ErrInvalidRequestDelay)
	}
	if c.MaxSubpages < 0 {
		return newError("max_subpages", ErrInvalidMaxSubpages)
	}
	if c.SnippetRadius <= 0 {
		return newError("snippet_radius", ErrInvalidSnippetRadius)
	}
	if c.MaxHitsPerPage < 0 {
		return newError("max_hits_per_page", ErrInvalidMaxHitsPerPage)
	}
	if c.MaxBodySize <= 0 {
		return newError("max_body_size", ErrInvalidMaxBodySize)
	}
	if c.Concurrency <= 0 {
		return newError("concurrency", ErrInvalidConcurrency)
	}
	formats := c.ReportFormats()
	if len(formats) == 0 {
		return newError("format", fmt.Errorf("%w: %q (expected one of %s)",
			ErrUnknownFormat, c.Format, strings.Join(Formats(), ", ")))
	}
	for _, f := range formats {
		if !isKnownFormat(f) {
			return newError("format", fmt.Errorf("%w: %q (expected one of %s)",
				ErrUnknownFormat, f, strings.Join(Formats(), ", ")))
		}
	}
	return nil
}

// ReportFormats returns the formats listed in Format, which may name
// several separated by commas ("xlsx,json"). Blanks and repeats are dropped.
func (c *Config) ReportFormats() []string {
	parts := strings.Split(c.Format, ",")
	formats := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		formats = append(formats, p)
	}
	return formats
}

// isKnownFormat reports whether format is one of Formats().
func isKnownFormat(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// XDGConfigDir returns the XDG config directory for relevador.
// On Linux: ~/.config/relevador
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
