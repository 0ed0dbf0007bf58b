package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/cobertura/internal/model"
)

// MarkdownWriter outputs coverage summaries in Markdown format.
// This format is designed for pull request comments and job summaries.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write condenses the coverage tree into a summary and writes it as Markdown.
func (w *MarkdownWriter) Write(coverage *model.Coverage) (int, error) {
	return w.WriteSummary(model.NewSummary(coverage))
}

// WriteSummary writes an already-computed summary as Markdown.
// The history command uses this for summaries loaded from the database.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, summary)

	// Overall totals with chart and alert
	w.writeTotals(md, summary)

	// Per-package table
	w.writePackages(md, summary)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with overall numbers.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Coverage Report")
	md.PlainText("")

	grade := model.GradeForRate(summary.LineRate)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Files", strconv.Itoa(summary.Files)},
			{"Line Coverage", formatRatio(summary.Totals.LinesCovered, summary.Totals.LinesValid) + " (" + formatPercent(summary.LineRate) + ")"},
			{"Branch Coverage", formatRatio(summary.Totals.BranchesCovered, summary.Totals.BranchesValid) + " (" + formatPercent(summary.BranchRate) + ")"},
			{"Grade", grade.Icon() + " " + summary.Grade},
		},
	})
	md.PlainText("")
}

// writeTotals writes the line coverage chart and the grade alert.
func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, summary *model.Summary) {
	if summary.Totals.LinesValid > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of covered versus uncovered lines.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Line Coverage"),
		piechart.WithShowData(true),
	)

	covered := summary.Totals.LinesCovered
	uncovered := summary.Totals.LinesValid - summary.Totals.LinesCovered
	if covered > 0 {
		chart.LabelAndIntValue("Covered", uint64(covered))
	}
	if uncovered > 0 {
		chart.LabelAndIntValue("Uncovered", uint64(uncovered))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the overall grade.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch model.GradeForRate(summary.LineRate) {
	case model.GradeHigh:
		md.Tip("Line coverage is " + formatPercent(summary.LineRate) + ", meeting the 80% target.")
	case model.GradeMedium:
		md.Importantf("Line coverage is %s, below the 80%% target.", formatPercent(summary.LineRate))
	default:
		md.Warningf("Line coverage is %s. Most measured lines never ran.", formatPercent(summary.LineRate))
	}
	md.PlainText("")
}

// writePackages writes the per-package coverage table.
func (w *MarkdownWriter) writePackages(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Packages")
	md.PlainText("")

	if len(summary.Packages) == 0 {
		md.PlainText("No measured files.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Packages))
	for i, pkg := range summary.Packages {
		grade := model.GradeForRate(pkg.LineRate)
		rows[i] = []string{
			"`" + truncateString(pkg.Name, 60) + "`",
			formatRatio(pkg.LinesCovered, pkg.LinesValid),
			formatPercent(pkg.LineRate),
			formatPercent(pkg.BranchRate),
			grade.Icon() + " " + pkg.Grade,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Package", "Lines", "Line Rate", "Branch Rate", "Grade"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cobertura](https://github.com/nao1215/cobertura)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
