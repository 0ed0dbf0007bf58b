package model

// CoverageResult holds the raw coverage measurements collected for one
// source file: per-line hit counts, per-line branch outcomes, and the
// functions detected in the file.
//
// Design decision: This mirrors what the profile parsers can actually
// extract rather than the output schema. The mapping onto the Cobertura
// hierarchy (which lines belong to which method, what counts as a branch)
// is the builder's job, not the parsers'.
type CoverageResult struct {
	// Lines maps a line number to the number of times it was executed.
	// A line absent from the map counts as never measured.
	Lines map[int]uint64

	// Branches maps a line number to the ordered outcomes of each branch
	// at that line: true if the branch was taken at least once.
	Branches map[int][]bool

	// Functions maps a raw symbol name to its location and execution flag.
	Functions map[string]FunctionCoverage
}

// FunctionCoverage describes one function detected in a source file.
type FunctionCoverage struct {
	// Start is the line number the function begins on.
	Start int

	// Executed reports whether the function was entered at least once.
	Executed bool
}

// NewCoverageResult returns an empty result with all maps initialized.
func NewCoverageResult() CoverageResult {
	return CoverageResult{
		Lines:     make(map[int]uint64),
		Branches:  make(map[int][]bool),
		Functions: make(map[string]FunctionCoverage),
	}
}

// Merge folds another result for the same file into r. Hit counts add up,
// branch outcome lists combine position by position with OR, and function
// executed flags OR. Functions only present in other are copied over.
//
// This is how measurements from multiple profile files (for example, one
// per test binary) collapse into a single per-file result.
func (r *CoverageResult) Merge(other CoverageResult) {
	for number, hits := range other.Lines {
		r.Lines[number] += hits
	}
	for number, outcomes := range other.Branches {
		merged := r.Branches[number]
		for i, taken := range outcomes {
			if i < len(merged) {
				merged[i] = merged[i] || taken
			} else {
				merged = append(merged, taken)
			}
		}
		r.Branches[number] = merged
	}
	for name, fn := range other.Functions {
		if existing, ok := r.Functions[name]; ok {
			existing.Executed = existing.Executed || fn.Executed
			r.Functions[name] = existing
			continue
		}
		r.Functions[name] = fn
	}
}

// FileCoverage pairs a source file's paths with its measurements. It is
// the unit the tree builder consumes, one entry per file, in input order.
type FileCoverage struct {
	// Path is the absolute path of the source file.
	Path string

	// RelPath is the path relative to the configured source root. It
	// becomes the package name and the class filename in the report.
	RelPath string

	// Result holds the file's raw measurements.
	Result CoverageResult
}
