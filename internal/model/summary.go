package model

import "time"

// Summary is a condensed view of a Coverage tree: overall totals plus one
// row per package.
//
// Design decision: We derive a separate summary rather than printing parts
// of the tree because:
// 1. It provides a consistent, curated view for the Markdown/JSON/text writers
// 2. It is the exact shape the history database stores per run
// 3. It separates presentation concerns from the schema-exact XML tree
type Summary struct {
	// Files is the number of source files in the report.
	Files int `json:"files"`

	// Totals holds the line and branch counters over the whole report.
	Totals Stats `json:"totals"`

	// LineRate is covered/valid lines over the whole report.
	LineRate float64 `json:"line_rate"`

	// BranchRate is covered/valid branch outcomes over the whole report.
	BranchRate float64 `json:"branch_rate"`

	// Grade is the human-readable bucket for LineRate.
	Grade string `json:"grade"`

	// Packages lists per-package rates in report order.
	Packages []PackageSummary `json:"packages,omitempty"`
}

// PackageSummary is one package's row in the summary.
type PackageSummary struct {
	// Name is the package name, the source file's relative path.
	Name string `json:"name"`

	// LinesValid is the number of measured lines in the package.
	LinesValid int `json:"lines_valid"`

	// LinesCovered is the number of those lines with at least one hit.
	LinesCovered int `json:"lines_covered"`

	// BranchesValid is the number of measured branch outcomes.
	BranchesValid int `json:"branches_valid"`

	// BranchesCovered is the number of those outcomes that were taken.
	BranchesCovered int `json:"branches_covered"`

	// LineRate is covered/valid lines for the package.
	LineRate float64 `json:"line_rate"`

	// BranchRate is covered/valid branch outcomes for the package.
	BranchRate float64 `json:"branch_rate"`

	// Grade is the human-readable bucket for LineRate.
	Grade string `json:"grade"`
}

// NewSummary condenses a Coverage tree into totals and per-package rows.
func NewSummary(coverage *Coverage) *Summary {
	totals := coverage.Stats()
	summary := &Summary{
		Files:      len(coverage.Packages),
		Totals:     totals,
		LineRate:   totals.LineRate(),
		BranchRate: totals.BranchRate(),
		Grade:      GradeForRate(totals.LineRate()).String(),
	}

	for i := range coverage.Packages {
		pkg := &coverage.Packages[i]
		stats := pkg.Stats()
		summary.Packages = append(summary.Packages, PackageSummary{
			Name:            pkg.Name,
			LinesValid:      stats.LinesValid,
			LinesCovered:    stats.LinesCovered,
			BranchesValid:   stats.BranchesValid,
			BranchesCovered: stats.BranchesCovered,
			LineRate:        stats.LineRate(),
			BranchRate:      stats.BranchRate(),
			Grade:           GradeForRate(stats.LineRate()).String(),
		})
	}
	return summary
}

// CoverageRun is one recorded conversion in the history database.
type CoverageRun struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// Label groups runs of the same project or branch.
	Label string `json:"label"`

	// CreatedAt is when the run was recorded.
	CreatedAt time.Time `json:"created_at"`

	// Summary holds the run's coverage totals.
	Summary Summary `json:"summary"`
}
