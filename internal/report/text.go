package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/cobertura/internal/model"
)

// TextWriter outputs human-readable coverage summaries.
// This format is designed for terminal display after a conversion,
// with overall totals followed by one row per package.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether the package section is shown when the
	// report has no measured files.
	showEmpty bool

	// verbose adds raw line and branch counters to each package row.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-package counters.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write condenses the coverage tree into a summary and writes it as text.
func (w *TextWriter) Write(coverage *model.Coverage) (int, error) {
	return w.WriteSummary(model.NewSummary(coverage))
}

// WriteSummary writes an already-computed summary in human-readable form.
func (w *TextWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, summary)

	// Per-package rows
	w.writePackages(&sb, summary)

	// Footer
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with the overall totals.
func (w *TextWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          COVERAGE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Files:     %d\n", summary.Files))
	sb.WriteString(fmt.Sprintf("Lines:     %s covered (%s)\n",
		formatRatio(summary.Totals.LinesCovered, summary.Totals.LinesValid),
		formatPercent(summary.LineRate)))
	sb.WriteString(fmt.Sprintf("Branches:  %s covered (%s)\n",
		formatRatio(summary.Totals.BranchesCovered, summary.Totals.BranchesValid),
		formatPercent(summary.BranchRate)))
	sb.WriteString(fmt.Sprintf("Grade:     %s\n", summary.Grade))
	sb.WriteString("\n")
}

// writePackages writes one row per package.
func (w *TextWriter) writePackages(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Packages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PACKAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Packages) == 0 {
		sb.WriteString("  No measured files\n")
	} else {
		for _, pkg := range summary.Packages {
			if w.verbose {
				sb.WriteString(fmt.Sprintf("  [%s] %s: %s lines (%s), %s branches (%s)\n",
					pkg.Grade, pkg.Name,
					formatRatio(pkg.LinesCovered, pkg.LinesValid), formatPercent(pkg.LineRate),
					formatRatio(pkg.BranchesCovered, pkg.BranchesValid), formatPercent(pkg.BranchRate)))
			} else {
				sb.WriteString(fmt.Sprintf("  [%s] %s: %s lines, %s branches\n",
					pkg.Grade, pkg.Name,
					formatPercent(pkg.LineRate), formatPercent(pkg.BranchRate)))
			}
		}
	}
	sb.WriteString("\n")
}

// formatPercent renders a rate in [0, 1] as a percentage with one decimal.
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// formatRatio renders covered/valid counters as "covered/valid".
func formatRatio(covered, valid int) string {
	return fmt.Sprintf("%d/%d", covered, valid)
}
