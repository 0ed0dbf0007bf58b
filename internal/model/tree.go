package model

// LineKind discriminates the two Line variants in the report tree.
//
// Design decision: Go has no sum types, so Line carries a kind tag and the
// use sites switch on it exhaustively. This is deliberate over an interface
// with two implementations: the leaves are plain data, and a tag keeps them
// comparable and cheap to copy.
type LineKind int

const (
	// LinePlain is an executable line that carries only a hit count.
	LinePlain LineKind = iota

	// LineBranch is a line that is also a branch point and carries one
	// Condition per possible outcome.
	LineBranch
)

// Condition records a single branch outcome at a branch line.
type Condition struct {
	// Number is the outcome's position in the line's branch list.
	Number int

	// Type is the Cobertura condition type, always "jump".
	Type string

	// Coverage is 1.0 if the outcome was taken at least once, else 0.0.
	Coverage float64
}

// Line is one leaf of the report tree. Kind selects the variant:
// Conditions is populated only for LineBranch.
type Line struct {
	Kind       LineKind
	Number     int
	Hits       uint64
	Conditions []Condition
}

// Covered reports whether the line was executed at least once.
func (l Line) Covered() bool {
	return l.Hits > 0
}

// Method is one function's coverage inside a class. Duplicate methods with
// identical line lists are legitimate: functions sharing a start offset
// (specialized instances, closures inlined at the same line) each claim
// the same range.
type Method struct {
	// Name is the demangled symbol name, or the raw name when demangling
	// is disabled or fails.
	Name string

	// Signature is always empty; the schema requires the attribute.
	Signature string

	// Lines lists the method's attributed lines in ascending order.
	Lines []Line
}

// Class is the per-file container. The schema allows many classes per
// package, but this tree always builds exactly one: a source file is a
// class.
type Class struct {
	// Name is the file stem (base name without extension).
	Name string

	// Filename is the file's path relative to the source root.
	Filename string

	// Lines holds the orphan lines no function claimed, ascending.
	Lines []Line

	// Methods holds the file's functions in ascending start order, ties
	// broken by raw symbol name.
	Methods []Method
}

// Package wraps one source file's class. The package name is the file's
// relative path.
type Package struct {
	Name    string
	Classes []Class
}

// Coverage is the root of the report tree: the configured source roots
// plus one package per input file, in input order.
type Coverage struct {
	Sources  []string
	Packages []Package
}
