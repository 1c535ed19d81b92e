package survey

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/nao1215/relevador/internal/crawler"
	"github.com/nao1215/relevador/internal/fetcher"
	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/scanner"
)

// Fetcher retrieves pages. *fetcher.HTTPFetcher implements it.
type Fetcher interface {
	// Fetch retrieves an institution's homepage.
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)

	// FetchSubpage retrieves a discovered sub-page, subject to robots.txt.
	FetchSubpage(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// pageText is the scannable text of one successfully fetched page.
type pageText struct {
	url  string
	text string
}

// State carries one institution through the pipeline.
// It is created per institution and discarded once the record is built.
type State struct {
	// Institution is the target being surveyed.
	Institution model.Institution

	// Record is the result being assembled.
	Record *model.InstitutionRecord

	// Homepage is the fetched homepage, nil when unreachable.
	Homepage *fetcher.Page

	// Links are the discovered sub-page URLs.
	Links []string

	// Hits are the hits of every scanned page, per category, page by page.
	Hits map[model.Category][]model.TermHit

	// Performed lists the steps that completed.
	Performed []string

	pages []pageText
}

// NewState creates the state for surveying inst.
func NewState(inst model.Institution, record *model.InstitutionRecord) *State {
	return &State{
		Institution: inst,
		Record:      record,
		Links:       make([]string, 0),
		Hits:        make(map[model.Category][]model.TermHit, len(model.AllCategories())),
		Performed:   make([]string, 0),
	}
}

// pageResult converts a fetch outcome into the record's page entry.
func pageResult(rawURL string, kind model.PageKind, page *fetcher.Page, err error) model.PageFetchResult {
	if err != nil {
		fe := fetcher.AsFetchError(rawURL, err)
		return model.PageFetchResult{
			URL:         rawURL,
			Kind:        kind,
			StatusCode:  fe.StatusCode,
			FailureKind: fe.Kind,
			Failure:     fe.Error(),
		}
	}
	return model.PageFetchResult{
		URL:        rawURL,
		FinalURL:   page.FinalURL,
		Kind:       kind,
		OK:         true,
		StatusCode: page.StatusCode,
		Size:       len(page.Body),
	}
}

// extractText parses a page and returns its document (nil when parsing
// failed) and the text to scan.
func extractText(page *fetcher.Page, logger *slog.Logger) (*crawler.Document, string) {
	doc, err := crawler.ParseHTML(page.FinalURL, page.Body)
	if err != nil {
		logger.Debug("falling back to raw text", "url", page.FinalURL, "error", err)
		return nil, crawler.RawText(page.Body)
	}
	return doc, doc.Text
}

// HomepageStep fetches the institution's configured URL.
// A failure marks the record unreachable; later steps then do nothing.
type HomepageStep struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewHomepageStep creates a HomepageStep.
func NewHomepageStep(f Fetcher, logger *slog.Logger) *HomepageStep {
	return &HomepageStep{fetcher: f, logger: logger}
}

// Name returns the step name.
func (s *HomepageStep) Name() string {
	return "homepage"
}

// Do executes the step.
func (s *HomepageStep) Do(ctx context.Context, state *State) error {
	url := state.Institution.URL
	page, err := s.fetcher.Fetch(ctx, url)
	result := pageResult(url, model.PageKindHomepage, page, err)
	state.Record.Pages = append(state.Record.Pages, result)

	if err != nil {
		state.Record.Status = model.StatusUnreachable
		state.Record.FailureReason = result.Failure
		s.logger.Warn("homepage unreachable",
			"institution", state.Institution.Name,
			"url", url,
			"kind", result.FailureKind,
		)
		return nil
	}

	state.Homepage = page
	return nil
}

// DiscoverStep parses the homepage, detects its language and selects sub-pages.
type DiscoverStep struct {
	hints        []string
	maxLinks     int
	sameHostOnly bool
	logger       *slog.Logger
}

// NewDiscoverStep creates a DiscoverStep.
func NewDiscoverStep(hints []string, maxLinks int, sameHostOnly bool, logger *slog.Logger) *DiscoverStep {
	return &DiscoverStep{
		hints:        hints,
		maxLinks:     maxLinks,
		sameHostOnly: sameHostOnly,
		logger:       logger,
	}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do executes the step.
func (s *DiscoverStep) Do(_ context.Context, state *State) error {
	if state.Homepage == nil {
		return nil
	}

	page := state.Homepage
	doc, text := extractText(page, s.logger)
	state.pages = append(state.pages, pageText{url: page.URL, text: text})

	state.Record.ContentSample = truncate(text, model.MaxContentSampleLength)
	state.Record.Language = crawler.DetectLanguage(doc)
	if state.Record.Language == "" {
		state.Record.Language = state.Institution.Language
	}

	if doc == nil {
		return nil
	}

	state.Links = crawler.Discover(page.FinalURL, doc.Anchors, s.hints, s.maxLinks,
		crawler.WithSameHostOnly(s.sameHostOnly))

	s.logger.Debug("discovered sub-pages",
		"institution", state.Institution.Name,
		"count", len(state.Links),
	)
	return nil
}

// SubpagesStep fetches the discovered sub-pages one after another.
// Each failure is recorded and the remaining sub-pages are still fetched.
type SubpagesStep struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewSubpagesStep creates a SubpagesStep.
func NewSubpagesStep(f Fetcher, logger *slog.Logger) *SubpagesStep {
	return &SubpagesStep{fetcher: f, logger: logger}
}

// Name returns the step name.
func (s *SubpagesStep) Name() string {
	return "subpages"
}

// Do executes the step.
func (s *SubpagesStep) Do(ctx context.Context, state *State) error {
	for _, link := range state.Links {
		page, err := s.fetcher.FetchSubpage(ctx, link)
		result := pageResult(link, model.PageKindSubpage, page, err)
		state.Record.Pages = append(state.Record.Pages, result)

		if err != nil {
			s.logger.Debug("sub-page not fetched",
				"institution", state.Institution.Name,
				"url", link,
				"kind", result.FailureKind,
			)
			continue
		}

		_, text := extractText(page, s.logger)
		state.pages = append(state.pages, pageText{url: link, text: text})
	}
	return nil
}

// ScanStep runs the scanner over every fetched page for all categories.
type ScanStep struct {
	scanner  *scanner.Scanner
	keywords map[model.Category][]string
}

// NewScanStep creates a ScanStep.
func NewScanStep(sc *scanner.Scanner, keywords map[model.Category][]string) *ScanStep {
	return &ScanStep{scanner: sc, keywords: keywords}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do executes the step.
func (s *ScanStep) Do(_ context.Context, state *State) error {
	for _, p := range state.pages {
		for c, hits := range s.scanner.ScanAll(p.text, p.url, s.keywords) {
			state.Hits[c] = append(state.Hits[c], hits...)
		}
	}
	return nil
}

// RecordStep turns the collected hits into per-category coverage.
type RecordStep struct {
	logger *slog.Logger
}

// NewRecordStep creates a RecordStep.
func NewRecordStep(logger *slog.Logger) *RecordStep {
	return &RecordStep{logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do executes the step.
func (s *RecordStep) Do(_ context.Context, state *State) error {
	for _, c := range model.AllCategories() {
		state.Record.Coverage[c] = model.NewCategoryCoverage(state.Hits[c])
	}

	s.logger.Info("institution surveyed",
		"institution", state.Institution.Name,
		"status", state.Record.Status,
		"pages", len(state.Record.FetchedURLs()),
		"hits", state.Record.TotalHits(),
	)
	return nil
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
