package survey

import (
	"context"
	"log/slog"
)

// Step is one stage of an institution's survey.
// Recoverable problems such as fetch failures are recorded in the state
// and Do returns nil; an error means the step could not run at all.
type Step interface {
	// Do executes the step against the institution's state.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger used for step logging.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline with the given steps.
func NewPipeline(steps []Step, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		steps: append([]Step(nil), steps...),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Execute runs every step in sequence and stops at the first step error.
// Completed step names are appended to state.Performed.
//
// Design decision: a step error aborts the institution instead of letting
// later steps run on partial state. Steps report recoverable problems
// (unreachable homepage, failed sub-page) in the record and return nil, so
// an error here means the state can no longer be trusted; the Surveyor
// turns it into the record's failure reason.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		p.logger.Debug("executing step",
			"step", step.Name(),
			"institution", state.Institution.Name,
		)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"institution", state.Institution.Name,
				"error", err,
			)
			return err
		}

		state.Performed = append(state.Performed, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
