package survey

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/relevador/internal/model"
)

// InstitutionSurveyor surveys one institution. *Surveyor implements it.
type InstitutionSurveyor interface {
	Survey(ctx context.Context, inst model.Institution) *model.InstitutionRecord
}

// ProgressFunc is called after each institution finishes.
// Calls are serialized; done counts finished institutions.
type ProgressFunc func(done, total int, rec *model.InstitutionRecord)

// SkippedReason is the failure reason of institutions not surveyed because the run was cancelled.
const SkippedReason = "survey cancelled before this institution was started"

// Runner surveys a list of institutions.
type Runner struct {
	surveyor    InstitutionSurveyor
	concurrency int
	progress    ProgressFunc
	logger      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets how many institutions are surveyed at the same time.
// Non-positive values are ignored.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner. It is sequential unless WithConcurrency is given.
func NewRunner(s InstitutionSurveyor, opts ...RunnerOption) *Runner {
	r := &Runner{
		surveyor:    s,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run surveys institutions and returns one record per institution, with
// records[i] describing institutions[i] whatever the completion order.
//
// Design decision: workers write into a slice preallocated by index
// instead of sending records over a channel. The report lists institutions
// in configuration order, so the order is fixed before any work starts and
// concurrency only changes how fast the slots fill. The mutex guards the
// progress counter and callback, not the slots, which no two workers share.
//
// Cancellation of ctx is checked before each institution starts. When the
// run is cancelled, institutions not yet started get a skipped record and
// ctx.Err() is returned together with the complete slice.
func (r *Runner) Run(ctx context.Context, institutions []model.Institution) ([]*model.InstitutionRecord, error) {
	r.logger.Info("starting survey",
		"institutions", len(institutions),
		"concurrency", r.concurrency,
	)
	start := time.Now()

	records := make([]*model.InstitutionRecord, len(institutions))
	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int, rec *model.InstitutionRecord) {
		mu.Lock()
		defer mu.Unlock()
		records[i] = rec
		done++
		if r.progress != nil {
			r.progress(done, len(institutions), rec)
		}
	}

	if r.concurrency <= 1 {
		for i, inst := range institutions {
			if ctx.Err() != nil {
				break
			}
			finish(i, r.surveyor.Survey(ctx, inst))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, inst := range institutions {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				finish(i, r.surveyor.Survey(ctx, inst))
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors
	}

	skipped := 0
	for i, rec := range records {
		if rec == nil {
			records[i] = model.NewSkippedRecord(institutions[i], SkippedReason)
			skipped++
		}
	}

	r.logger.Info("survey complete",
		"institutions", len(institutions),
		"skipped", skipped,
		"elapsed", time.Since(start),
	)

	if skipped > 0 {
		return records, ctx.Err()
	}
	return records, nil
}
