package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/cobertura/internal/config"
	"github.com/nao1215/cobertura/internal/database"
	"github.com/nao1215/cobertura/internal/demangle"
	"github.com/nao1215/cobertura/internal/model"
	"github.com/nao1215/cobertura/internal/parser"
	"github.com/nao1215/cobertura/internal/report"
)

// CollectStep parses all configured input profiles and merges them into
// one set of per-file measurements.
//
// Design decision: Inputs are parsed concurrently with errgroup because:
// 1. Profiles are independent files, so parsing parallelizes trivially
// 2. SetLimit bounds open file descriptors on large input lists
// 3. Results land in a pre-allocated slice by index, so merge order
//    stays deterministic regardless of goroutine scheduling
type CollectStep struct {
	// workers is the maximum number of inputs parsed simultaneously.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// CollectStepOption configures a CollectStep.
type CollectStepOption func(*CollectStep)

// WithCollectWorkers sets the maximum number of concurrently parsed inputs.
func WithCollectWorkers(n int) CollectStepOption {
	return func(s *CollectStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCollectLogger sets a custom logger for the collect step.
func WithCollectLogger(logger *slog.Logger) CollectStepOption {
	return func(s *CollectStep) {
		s.logger = logger
	}
}

// NewCollectStep creates a new input collection step.
func NewCollectStep(opts ...CollectStepOption) *CollectStep {
	s := &CollectStep{
		workers: config.DefaultParseWorkers,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect"
}

// Do parses every configured input and stores the merged result in the
// conversion. Filter patterns are validated before any file is opened so
// a typo in a pattern fails fast instead of after minutes of parsing.
func (s *CollectStep) Do(ctx context.Context, conv *Conversion) error {
	cfg := conv.Config

	if err := parser.ValidatePatterns(cfg.Ignore); err != nil {
		return fmt.Errorf("invalid ignore pattern: %w", err)
	}
	if err := parser.ValidatePatterns(cfg.KeepOnly); err != nil {
		return fmt.Errorf("invalid keep-only pattern: %w", err)
	}

	// One parser serves all workers. The parser holds only configuration
	// set at construction time, so concurrent ParseFile calls are safe.
	p := parser.New(
		parser.WithFormat(parser.Format(cfg.Format)),
		parser.WithSourceRoot(cfg.SourceRoot),
		parser.WithIgnore(cfg.Ignore...),
		parser.WithKeepOnly(cfg.KeepOnly...),
	)

	// Pre-allocate the batch slice to keep input order
	batches := make([][]model.FileCoverage, len(cfg.Inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range cfg.Inputs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			files, err := p.ParseFile(path)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			batches[i] = files

			s.logger.Debug("parsed input",
				"input", path,
				"files", len(files),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	conv.Files = parser.MergeFiles(batches)

	s.logger.Info("collected coverage",
		"inputs", len(cfg.Inputs),
		"files", len(conv.Files),
	)
	return nil
}

// BuildStep assembles the parsed measurements into the report tree and
// condenses it into a summary.
//
// Design decision: Building is a separate step from collecting because:
// 1. It works on merged data, so it cannot overlap with parsing
// 2. Symbol demangling and source root handling are build concerns,
//    not parse concerns
// 3. The tree and summary feed two different consumers (report, record)
type BuildStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// BuildStepOption configures a BuildStep.
type BuildStepOption func(*BuildStep)

// WithBuildLogger sets a custom logger for the build step.
func WithBuildLogger(logger *slog.Logger) BuildStepOption {
	return func(s *BuildStep) {
		s.logger = logger
	}
}

// NewBuildStep creates a new tree building step.
func NewBuildStep(opts ...BuildStepOption) *BuildStep {
	s := &BuildStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *BuildStep) Name() string {
	return "build"
}

// Do builds the coverage tree and its summary from the collected files.
func (s *BuildStep) Do(_ context.Context, conv *Conversion) error {
	cfg := conv.Config

	opts := make([]model.BuilderOption, 0, 2)
	if cfg.Demangle {
		opts = append(opts, model.WithDemangler(demangle.Demangle))
	}
	if cfg.SourceRoot != "" {
		opts = append(opts, model.WithSource(cfg.SourceRoot))
	}

	conv.Coverage = model.NewCoverage(conv.Files, opts...)
	conv.Summary = model.NewSummary(conv.Coverage)

	s.logger.Info("built coverage tree",
		"packages", len(conv.Coverage.Packages),
		"lines", conv.Summary.Totals.LinesValid,
		"grade", conv.Summary.Grade,
	)
	return nil
}

// ReportTarget pairs an output destination with the writer that renders it.
type ReportTarget struct {
	// Path is the destination file. config.StdoutPath selects stdout.
	Path string

	// New builds the report writer rendering to w.
	New func(w io.Writer) report.Writer
}

// ReportStep renders the coverage tree to every configured target.
//
// Design decision: Output files are opened inside Do, not when the step
// is constructed. The pipeline stops before this step when parsing or
// building fails, so a failed conversion never truncates or creates a
// report file.
type ReportStep struct {
	// targets lists the outputs to render, in order.
	targets []ReportTarget

	// stdout is the sink used for StdoutPath targets.
	stdout io.Writer

	// logger for structured logging.
	logger *slog.Logger
}

// ReportStepOption configures a ReportStep.
type ReportStepOption func(*ReportStep)

// WithReportStdout redirects StdoutPath targets to the given writer.
func WithReportStdout(w io.Writer) ReportStepOption {
	return func(s *ReportStep) {
		s.stdout = w
	}
}

// WithReportLogger sets a custom logger for the report step.
func WithReportLogger(logger *slog.Logger) ReportStepOption {
	return func(s *ReportStep) {
		s.logger = logger
	}
}

// NewReportStep creates a new report rendering step.
func NewReportStep(targets []ReportTarget, opts ...ReportStepOption) *ReportStep {
	s := &ReportStep{
		targets: targets,
		stdout:  os.Stdout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do renders the coverage tree to every target in order.
func (s *ReportStep) Do(_ context.Context, conv *Conversion) error {
	for _, target := range s.targets {
		n, err := s.writeTarget(conv.Coverage, target)
		if err != nil {
			return err
		}
		s.logger.Debug("report written",
			"path", target.Path,
			"bytes", n,
		)
	}
	return nil
}

// writeTarget resolves the target's sink and renders the report into it.
func (s *ReportStep) writeTarget(coverage *model.Coverage, target ReportTarget) (int, error) {
	if target.Path == config.StdoutPath {
		return target.New(s.stdout).Write(coverage)
	}

	if dir := filepath.Dir(target.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(target.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("create report file: %w", err)
	}

	n, err := target.New(f).Write(coverage)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", target.Path, err)
	}
	return n, nil
}

// RecordStep saves the run summary in the local history database.
//
// Design decision: Recording runs after the reports are written because
// a run that produced no report should not appear in history. The
// database is opened inside Do so that conversions without --save never
// touch the data directory.
type RecordStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// RecordStepOption configures a RecordStep.
type RecordStepOption func(*RecordStep)

// WithRecordLogger sets a custom logger for the record step.
func WithRecordLogger(logger *slog.Logger) RecordStepOption {
	return func(s *RecordStep) {
		s.logger = logger
	}
}

// NewRecordStep creates a new history recording step.
func NewRecordStep(opts ...RecordStepOption) *RecordStep {
	s := &RecordStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do stores the run summary under the configured label.
func (s *RecordStep) Do(ctx context.Context, conv *Conversion) error {
	cfg := conv.Config

	dbDir := cfg.DBDir
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.Warn("failed to close history database", "error", err)
		}
	}()

	id, err := db.SaveRun(ctx, cfg.Label, conv.Summary)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	s.logger.Info("run recorded",
		"label", cfg.Label,
		"id", id,
	)
	return nil
}

// DefaultPipeline creates a pipeline with the standard conversion steps:
// collect, build, report, and optionally record.
//
// Design decision: We provide a default pipeline because:
// 1. Every conversion needs the same three core steps in the same order
// 2. It reduces boilerplate in the CLI
// 3. The record step is appended here so the CLI never assembles steps
//    conditionally itself
func DefaultPipeline(targets []ReportTarget, record bool, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewCollectStep(WithCollectLogger(p.logger)),
		NewBuildStep(WithBuildLogger(p.logger)),
		NewReportStep(targets, WithReportLogger(p.logger)),
	)
	if record {
		p.AddStep(NewRecordStep(WithRecordLogger(p.logger)))
	}

	return p
}
