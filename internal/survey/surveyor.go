package survey

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/relevador/internal/crawler"
	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/scanner"
)

// Surveyor surveys a single institution.
// It is safe for concurrent use when its Fetcher is.
type Surveyor struct {
	fetcher      Fetcher
	scanner      *scanner.Scanner
	keywords     map[model.Category][]string
	hints        []string
	maxSubpages  int
	sameHostOnly bool
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Surveyor.
type Option func(*Surveyor)

// WithScanner sets the keyword scanner.
func WithScanner(sc *scanner.Scanner) Option {
	return func(s *Surveyor) {
		s.scanner = sc
	}
}

// WithMaxSubpages sets how many discovered sub-pages are fetched.
func WithMaxSubpages(n int) Option {
	return func(s *Surveyor) {
		s.maxSubpages = n
	}
}

// WithSameHostOnly restricts sub-pages to the homepage's host.
func WithSameHostOnly(enabled bool) Option {
	return func(s *Surveyor) {
		s.sameHostOnly = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surveyor) {
		s.logger = logger
	}
}

// WithClock sets the function used for review timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Surveyor) {
		s.now = now
	}
}

// NewSurveyor creates a Surveyor that looks for keywords, per category,
// on each institution's homepage and on the sub-pages selected by hints.
func NewSurveyor(f Fetcher, keywords map[model.Category][]string, hints []string, opts ...Option) *Surveyor {
	kw := make(map[model.Category][]string, len(keywords))
	for c, list := range keywords {
		kw[c] = append([]string(nil), list...)
	}

	s := &Surveyor{
		fetcher:      f,
		keywords:     kw,
		hints:        append([]string(nil), hints...),
		maxSubpages:  crawler.DefaultMaxLinks,
		sameHostOnly: true,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scanner == nil {
		s.scanner = scanner.New()
	}
	return s
}

// newPipeline builds the steps for one institution.
func (s *Surveyor) newPipeline() *Pipeline {
	return NewPipeline([]Step{
		NewHomepageStep(s.fetcher, s.logger),
		NewDiscoverStep(s.hints, s.maxSubpages, s.sameHostOnly, s.logger),
		NewSubpagesStep(s.fetcher, s.logger),
		NewScanStep(s.scanner, s.keywords),
		NewRecordStep(s.logger),
	}, WithPipelineLogger(s.logger))
}

// Survey surveys inst and always returns its record.
//
// Design decision: the pipeline runs on context.WithoutCancel(ctx).
// Cancellation is honoured between institutions by the Runner, never in the
// middle of one. Cutting an institution short would leave a record that
// looks surveyed but silently misses sub-pages, and a partial row is worse
// than a row marked "Omitida". Per-request timeouts still bound every fetch,
// so an interrupted run ends within one institution's worth of requests.
// Values carried by ctx remain visible.
func (s *Surveyor) Survey(ctx context.Context, inst model.Institution) *model.InstitutionRecord {
	record := model.NewInstitutionRecord(inst, s.now())
	state := NewState(inst, record)
	pipeline := s.newPipeline()

	s.logger.Info("surveying institution", "institution", inst.Name, "url", inst.URL)
	s.logger.Debug("survey steps", "institution", inst.Name, "steps", pipeline.StepNames())

	if err := pipeline.Execute(context.WithoutCancel(ctx), state); err != nil {
		if record.FailureReason == "" {
			record.FailureReason = err.Error()
		}
	}
	return record
}
