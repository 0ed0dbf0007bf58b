package model

// Stats holds the aggregate line and branch counters for one subtree of
// the report tree. Rates derive from the counters on demand; recomputing
// stats on an unmodified subtree always yields the same values.
type Stats struct {
	// LinesValid is the number of distinct measured lines in scope.
	LinesValid int `json:"lines_valid"`

	// LinesCovered is the number of those lines with at least one hit.
	LinesCovered int `json:"lines_covered"`

	// BranchesValid is the total number of branch outcomes in scope.
	BranchesValid int `json:"branches_valid"`

	// BranchesCovered is the number of outcomes taken at least once.
	BranchesCovered int `json:"branches_covered"`
}

// LineRate returns covered/valid lines, 0 when nothing was measured.
func (s Stats) LineRate() float64 {
	if s.LinesValid == 0 {
		return 0
	}
	return float64(s.LinesCovered) / float64(s.LinesValid)
}

// BranchRate returns covered/valid branch outcomes, 0 when the scope has
// no branch points.
func (s Stats) BranchRate() float64 {
	if s.BranchesValid == 0 {
		return 0
	}
	return float64(s.BranchesCovered) / float64(s.BranchesValid)
}

func (s Stats) merge(other Stats) Stats {
	s.LinesValid += other.LinesValid
	s.LinesCovered += other.LinesCovered
	s.BranchesValid += other.BranchesValid
	s.BranchesCovered += other.BranchesCovered
	return s
}

// countLine folds one leaf into the counters.
func (s *Stats) countLine(line Line) {
	s.LinesValid++
	if line.Covered() {
		s.LinesCovered++
	}
	if line.Kind == LineBranch {
		s.BranchesValid += len(line.Conditions)
		for _, condition := range line.Conditions {
			if condition.Coverage > 0 {
				s.BranchesCovered++
			}
		}
	}
}

// Stats computes the aggregate counters over every package in the report.
func (c *Coverage) Stats() Stats {
	var total Stats
	for i := range c.Packages {
		total = total.merge(c.Packages[i].Stats())
	}
	return total
}

// Stats computes the aggregate counters over the package's classes.
func (p *Package) Stats() Stats {
	var total Stats
	for i := range p.Classes {
		total = total.merge(p.Classes[i].Stats())
	}
	return total
}

// Stats computes the class counters. Duplicate methods from functions
// sharing a start offset carry identical copies of the same lines, so
// counting is keyed by line number: each distinct line in the class
// counts exactly once, whether it sits in one method, several duplicated
// methods, or the orphan list.
func (c *Class) Stats() Stats {
	var s Stats
	seen := make(map[int]struct{})
	count := func(line Line) {
		if _, ok := seen[line.Number]; ok {
			return
		}
		seen[line.Number] = struct{}{}
		s.countLine(line)
	}

	for i := range c.Methods {
		for _, line := range c.Methods[i].Lines {
			count(line)
		}
	}
	for _, line := range c.Lines {
		count(line)
	}
	return s
}

// Stats computes the method's counters from its own line list, which
// never contains duplicates.
func (m *Method) Stats() Stats {
	var s Stats
	for _, line := range m.Lines {
		s.countLine(line)
	}
	return s
}
