package model

// Grade buckets a line rate for quick reading in summaries.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Grade int

const (
	// GradeLow marks line rates below 50%, where most measured code never
	// ran.
	GradeLow Grade = iota

	// GradeMedium marks line rates from 50% up to (but excluding) 80%.
	GradeMedium

	// GradeHigh marks line rates of 80% or more, the conventional
	// "well covered" threshold on coverage badges.
	GradeHigh
)

// GradeForRate buckets a line rate into a Grade.
func GradeForRate(rate float64) Grade {
	switch {
	case rate >= 0.8:
		return GradeHigh
	case rate >= 0.5:
		return GradeMedium
	default:
		return GradeLow
	}
}

// String returns a human-readable representation of the grade.
func (g Grade) String() string {
	switch g {
	case GradeHigh:
		return "HIGH"
	case GradeMedium:
		return "MEDIUM"
	case GradeLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the marker used for the grade in Markdown summaries.
func (g Grade) Icon() string {
	switch g {
	case GradeHigh:
		return "🟢"
	case GradeMedium:
		return "🟡"
	case GradeLow:
		return "🔴"
	default:
		return "⚪"
	}
}
