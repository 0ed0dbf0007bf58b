package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/cobertura/internal/config"
	"github.com/nao1215/cobertura/internal/model"
)

// Conversion carries the state accumulated while converting coverage
// profiles into reports. Steps fill the fields in order: collect parses
// the inputs, build assembles the report tree and its summary, report
// and record consume them.
type Conversion struct {
	// Config holds the validated configuration for this run.
	Config *config.Config

	// Files holds the merged per-file measurements after the collect step.
	Files []model.FileCoverage

	// Coverage is the full report tree after the build step.
	Coverage *model.Coverage

	// Summary condenses Coverage for the summary writers and the
	// history database.
	Summary *model.Summary
}

// NewConversion creates a Conversion for the given configuration.
func NewConversion(cfg *config.Config) *Conversion {
	return &Conversion{Config: cfg}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the conversion
// state accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation and the conversion to fill.
	Do(ctx context.Context, conv *Conversion) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}

	// Set default logger if not provided
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: The pipeline always stops at the first error. A report
// assembled from partially parsed inputs would silently under-count
// coverage, which is worse than no report, so there is no
// continue-on-error mode. Stopping before the report step also means a
// failed conversion never replaces an existing report file.
func (p *Pipeline) Execute(ctx context.Context, conv *Conversion) error {
	for _, step := range p.steps {
		// Check for cancellation before starting each step
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
			// Continue with execution
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, conv); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
