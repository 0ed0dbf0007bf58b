package model

import "testing"

// TestGradeForRate tests line-rate bucketing.
func TestGradeForRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rate     float64
		expected Grade
	}{
		{name: "zero rate is low", rate: 0, expected: GradeLow},
		{name: "just below half is low", rate: 0.49, expected: GradeLow},
		{name: "half is medium", rate: 0.5, expected: GradeMedium},
		{name: "just below threshold is medium", rate: 0.79, expected: GradeMedium},
		{name: "threshold is high", rate: 0.8, expected: GradeHigh},
		{name: "full coverage is high", rate: 1.0, expected: GradeHigh},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := GradeForRate(tc.rate); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

// TestGradeString tests the human-readable representations.
func TestGradeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		grade    Grade
		expected string
	}{
		{grade: GradeLow, expected: "LOW"},
		{grade: GradeMedium, expected: "MEDIUM"},
		{grade: GradeHigh, expected: "HIGH"},
		{grade: Grade(42), expected: "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := tc.grade.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestGradeIcon tests that every grade has a distinct marker.
func TestGradeIcon(t *testing.T) {
	t.Parallel()

	seen := make(map[string]Grade)
	for _, grade := range []Grade{GradeLow, GradeMedium, GradeHigh} {
		icon := grade.Icon()
		if icon == "" {
			t.Errorf("expected non-empty icon for %v", grade)
		}
		if previous, ok := seen[icon]; ok {
			t.Errorf("icon %q reused by %v and %v", icon, previous, grade)
		}
		seen[icon] = grade
	}
}
