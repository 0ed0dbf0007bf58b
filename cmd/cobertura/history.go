package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/cobertura/internal/config"
	"github.com/nao1215/cobertura/internal/database"
	"github.com/nao1215/cobertura/internal/model"
	"github.com/spf13/cobra"
)

// Constants for coverage trend direction and listing defaults.
const (
	trendImproved  = "improved"
	trendDeclined  = "declined"
	trendUnchanged = "unchanged"

	// defaultHistoryLimit bounds how many runs a listing shows.
	defaultHistoryLimit = 10
)

// NewHistoryCmd creates the history command.
// This command lists coverage runs recorded in the local history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded coverage runs and their trend",
		Long: `History lists coverage runs recorded with 'cobertura convert --save'.

Runs are grouped by label, typically a branch or CI job name. The listing
shows each run's totals and, when at least two runs exist, how line and
branch coverage moved since the previous run.

Examples:
  # Show recent runs for the default label
  cobertura history

  # Show runs recorded under a specific label
  cobertura history --label main

  # Show only the last 3 runs
  cobertura history --limit 3

  # List all labels in the database
  cobertura history --list-labels

  # Diff the latest run against run 12 instead of the previous one
  cobertura history --diff-from 12

  # Output history in JSON format
  cobertura history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().StringP("label", "l", config.DefaultLabel,
		"History label to list runs for")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().BoolP("list-labels", "L", false,
		"List all labels in the history database")
	cmd.Flags().Int64("diff-from", 0,
		"Run ID to diff the latest run against (default: the previous run)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output history in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output history in Markdown format (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	listLabels, err := cmd.Flags().GetBool("list-labels")
	if err != nil {
		return err
	}

	label, err := cmd.Flags().GetString("label")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	diffFrom, err := cmd.Flags().GetInt64("diff-from")
	if err != nil {
		return err
	}

	// Validate flags before opening the database.
	// This prevents database lock issues when validation fails.
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	if diffFrom < 0 {
		return fmt.Errorf("diff-from must be a positive run ID, got %d", diffFrom)
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	// Use XDG data directory for the history database
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listLabels {
		return listHistoryLabels(ctx, db)
	}

	return showHistory(ctx, db, label, limit, diffFrom, jsonOutput, markdownOutput)
}

// listHistoryLabels lists all labels that have recorded runs.
func listHistoryLabels(ctx context.Context, db *database.HistoryDB) error {
	labels, err := db.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	if len(labels) == 0 {
		fmt.Println("No recorded runs found in the history database.")
		fmt.Println("\nUse 'cobertura convert --save <profile>' to record a run.")
		return nil
	}

	fmt.Printf("Labels (%d):\n\n", len(labels))
	for _, label := range labels {
		fmt.Printf("  • %s\n", label)
	}
	fmt.Println("\nUse 'cobertura history --label <label>' to see runs for a label.")

	return nil
}

// showHistory lists recorded runs for a label and the coverage change
// between the latest run and a base run. The base is the previous run
// unless diffFrom selects a specific run ID.
func showHistory(ctx context.Context, db *database.HistoryDB, label string, limit int, diffFrom int64, jsonOutput, markdownOutput bool) error {
	runs, err := db.ListRuns(ctx, label, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No recorded runs found for label %q\n", label)
		fmt.Println("\nUse 'cobertura convert --save' to record a run under this label.")
		return nil
	}

	// ListRuns returns runs newest first, so runs[0] is the comparison
	// target and the run before it is the default base.
	var delta *RunDelta
	switch {
	case diffFrom > 0:
		base, err := db.GetRunByID(ctx, diffFrom)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", diffFrom, err)
		}
		if base == nil {
			return fmt.Errorf("run %d not found in history", diffFrom)
		}
		delta = computeDelta(base, &runs[0])
	case len(runs) >= 2:
		delta = computeDelta(&runs[1], &runs[0])
	}

	if jsonOutput {
		return outputHistoryJSON(label, runs, delta)
	}
	if markdownOutput {
		return outputHistoryMarkdown(label, runs, delta)
	}
	return outputHistoryText(label, runs, delta)
}

// RunDelta describes how coverage moved between two recorded runs.
type RunDelta struct {
	// BaseRunID is the run the delta was computed against.
	BaseRunID int64 `json:"base_run_id"`

	// Trend is "improved", "declined", or "unchanged".
	Trend string `json:"trend"`

	// LineRateDelta is the change in line rate, -1.0 to 1.0.
	LineRateDelta float64 `json:"line_rate_delta"`

	// BranchRateDelta is the change in branch rate, -1.0 to 1.0.
	BranchRateDelta float64 `json:"branch_rate_delta"`

	// LinesCoveredDelta is the change in covered line count.
	LinesCoveredDelta int `json:"lines_covered_delta"`

	// LinesValidDelta is the change in measured line count.
	LinesValidDelta int `json:"lines_valid_delta"`
}

// HistoryOutput is the JSON shape of the history listing.
type HistoryOutput struct {
	// Label is the history label the runs were recorded under.
	Label string `json:"label"`

	// Runs lists the recorded runs, newest first.
	Runs []model.CoverageRun `json:"runs"`

	// Delta describes the change between the latest two runs.
	// Omitted when fewer than two runs exist.
	Delta *RunDelta `json:"delta,omitempty"`
}

// computeDelta calculates the coverage change from previous to current.
func computeDelta(previous, current *model.CoverageRun) *RunDelta {
	delta := &RunDelta{
		BaseRunID:         previous.ID,
		LineRateDelta:     current.Summary.LineRate - previous.Summary.LineRate,
		BranchRateDelta:   current.Summary.BranchRate - previous.Summary.BranchRate,
		LinesCoveredDelta: current.Summary.Totals.LinesCovered - previous.Summary.Totals.LinesCovered,
		LinesValidDelta:   current.Summary.Totals.LinesValid - previous.Summary.Totals.LinesValid,
	}

	// The line rate decides the trend; the branch rate breaks ties
	// because a branch-only change still moves real coverage.
	switch {
	case delta.LineRateDelta > 0:
		delta.Trend = trendImproved
	case delta.LineRateDelta < 0:
		delta.Trend = trendDeclined
	case delta.BranchRateDelta > 0:
		delta.Trend = trendImproved
	case delta.BranchRateDelta < 0:
		delta.Trend = trendDeclined
	default:
		delta.Trend = trendUnchanged
	}

	return delta
}

// outputHistoryJSON outputs the history in JSON format.
func outputHistoryJSON(label string, runs []model.CoverageRun, delta *RunDelta) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(HistoryOutput{Label: label, Runs: runs, Delta: delta})
}

// outputHistoryMarkdown outputs the history in Markdown format.
func outputHistoryMarkdown(label string, runs []model.CoverageRun, delta *RunDelta) error {
	fmt.Printf("# Coverage History: %s\n\n", label)

	// Trend summary
	if delta != nil {
		fmt.Println("## Trend")
		fmt.Printf("\n**Coverage Trend:** %s\n\n", formatTrend(delta.Trend))
		fmt.Printf("Line rate %s, branch rate %s since run %d.\n\n",
			formatRateDelta(delta.LineRateDelta),
			formatRateDelta(delta.BranchRateDelta),
			delta.BaseRunID)
	}

	// Run table
	fmt.Println("## Runs")
	fmt.Println()
	fmt.Println("| ID | Date | Files | Lines | Branches | Grade |")
	fmt.Println("|----|------|-------|-------|----------|-------|")
	for _, run := range runs {
		fmt.Printf("| %d | %s | %d | %s | %s | %s |\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Summary.Files,
			formatRunRatio(run.Summary.Totals.LinesCovered, run.Summary.Totals.LinesValid),
			formatRunRatio(run.Summary.Totals.BranchesCovered, run.Summary.Totals.BranchesValid),
			run.Summary.Grade,
		)
	}

	return nil
}

// outputHistoryText outputs the history in human-readable text format.
func outputHistoryText(label string, runs []model.CoverageRun, delta *RunDelta) error {
	fmt.Printf("Coverage history for label %q (%d runs):\n\n", label, len(runs))
	fmt.Printf("  %-6s  %-20s  %-6s  %-12s  %-12s  %s\n",
		"ID", "Date", "Files", "Lines", "Branches", "Grade")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-6d  %-12s  %-12s  %s\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Summary.Files,
			formatRunRatio(run.Summary.Totals.LinesCovered, run.Summary.Totals.LinesValid),
			formatRunRatio(run.Summary.Totals.BranchesCovered, run.Summary.Totals.BranchesValid),
			run.Summary.Grade,
		)
	}

	// Trend against the base run
	if delta != nil {
		fmt.Printf("\nChange since run %d: %s\n", delta.BaseRunID, formatTrend(delta.Trend))
		fmt.Printf("  Line rate:   %s\n", formatRateDelta(delta.LineRateDelta))
		fmt.Printf("  Branch rate: %s\n", formatRateDelta(delta.BranchRateDelta))
		fmt.Printf("  Lines:       %s covered, %s measured\n",
			formatCountDelta(delta.LinesCoveredDelta),
			formatCountDelta(delta.LinesValidDelta))
	}

	fmt.Println("\nUse 'cobertura convert --save' to record new runs.")

	return nil
}

// formatTrend formats the trend direction for display.
func formatTrend(trend string) string {
	switch trend {
	case trendImproved:
		return "IMPROVED (coverage went up)"
	case trendDeclined:
		return "DECLINED (coverage went down)"
	default:
		return "UNCHANGED"
	}
}

// formatRateDelta formats a rate change as signed percentage points.
func formatRateDelta(delta float64) string {
	return fmt.Sprintf("%+.1f%%", delta*100)
}

// formatCountDelta formats a numeric delta with sign for display.
func formatCountDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatRunRatio formats covered/valid counters for a table cell.
func formatRunRatio(covered, valid int) string {
	return fmt.Sprintf("%d/%d", covered, valid)
}
