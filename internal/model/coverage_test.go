package model

import "testing"

// TestCoverageResultMerge tests folding measurements from multiple
// profiles for the same file.
func TestCoverageResultMerge(t *testing.T) {
	t.Parallel()

	t.Run("hit counts add up", func(t *testing.T) {
		t.Parallel()

		base := NewCoverageResult()
		base.Lines[1] = 2
		base.Lines[2] = 0

		other := NewCoverageResult()
		other.Lines[1] = 3
		other.Lines[4] = 1

		base.Merge(other)

		if base.Lines[1] != 5 {
			t.Errorf("expected 5 hits on line 1, got %d", base.Lines[1])
		}
		if base.Lines[2] != 0 {
			t.Errorf("expected 0 hits on line 2, got %d", base.Lines[2])
		}
		if base.Lines[4] != 1 {
			t.Errorf("expected 1 hit on line 4, got %d", base.Lines[4])
		}
	})

	t.Run("branch outcomes combine with OR", func(t *testing.T) {
		t.Parallel()

		base := NewCoverageResult()
		base.Branches[3] = []bool{true, false}

		other := NewCoverageResult()
		other.Branches[3] = []bool{false, true, false}

		base.Merge(other)

		outcomes := base.Branches[3]
		if len(outcomes) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
		}
		expected := []bool{true, true, false}
		for i := range expected {
			if outcomes[i] != expected[i] {
				t.Errorf("outcome %d: expected %v, got %v", i, expected[i], outcomes[i])
			}
		}
	})

	t.Run("function executed flags combine with OR", func(t *testing.T) {
		t.Parallel()

		base := NewCoverageResult()
		base.Functions["main"] = FunctionCoverage{Start: 1, Executed: false}

		other := NewCoverageResult()
		other.Functions["main"] = FunctionCoverage{Start: 1, Executed: true}
		other.Functions["helper"] = FunctionCoverage{Start: 10, Executed: false}

		base.Merge(other)

		if !base.Functions["main"].Executed {
			t.Error("expected main to be marked executed")
		}
		helper, ok := base.Functions["helper"]
		if !ok {
			t.Fatal("expected helper to be copied over")
		}
		if helper.Start != 10 {
			t.Errorf("expected helper start 10, got %d", helper.Start)
		}
	})

	t.Run("merging an empty result changes nothing", func(t *testing.T) {
		t.Parallel()

		base := NewCoverageResult()
		base.Lines[1] = 1
		base.Branches[2] = []bool{true}
		base.Functions["f"] = FunctionCoverage{Start: 1, Executed: true}

		base.Merge(NewCoverageResult())

		if len(base.Lines) != 1 || len(base.Branches) != 1 || len(base.Functions) != 1 {
			t.Errorf("expected base to be unchanged, got %d/%d/%d entries",
				len(base.Lines), len(base.Branches), len(base.Functions))
		}
	})
}
