package model

import (
	"path/filepath"
	"sort"
	"strings"
)

// BuilderOption configures NewCoverage.
type BuilderOption func(*builder)

// WithDemangler sets the symbol demangling function applied to method
// names. When unset, raw symbol names are used as-is.
func WithDemangler(fn func(string) string) BuilderOption {
	return func(b *builder) {
		b.demangle = fn
	}
}

// WithSource sets the document's single sources entry, usually the
// configured source root. The default is ".".
func WithSource(dir string) BuilderOption {
	return func(b *builder) {
		if dir != "" {
			b.source = dir
		}
	}
}

type builder struct {
	demangle func(string) string
	source   string
}

// NewCoverage assembles the report tree from per-file results in a single
// pass, one package per file, in input order. The returned tree is
// complete and must not be mutated afterward; the writers and Stats
// methods treat it as read-only.
func NewCoverage(files []FileCoverage, opts ...BuilderOption) *Coverage {
	b := &builder{source: "."}
	for _, opt := range opts {
		opt(b)
	}

	coverage := &Coverage{
		Sources:  []string{b.source},
		Packages: make([]Package, 0, len(files)),
	}
	for _, file := range files {
		coverage.Packages = append(coverage.Packages, Package{
			Name:    file.RelPath,
			Classes: []Class{b.buildClass(file)},
		})
	}
	return coverage
}

// buildClass partitions a file's measured lines across its functions and
// the class-level remainder.
//
// Each function's range is [start, next start), where "next start" is the
// smallest recorded start strictly greater than its own; the last function
// on the file runs to one past the file's last measured line. Functions
// sharing a start offset therefore claim identical ranges and produce
// duplicate methods, which is intended: specialized instances of the same
// source function report separately.
func (b *builder) buildClass(file FileCoverage) Class {
	result := file.Result

	// Every measured line number, ascending.
	all := make([]int, 0, len(result.Lines))
	for number := range result.Lines {
		all = append(all, number)
	}
	sort.Ints(all)

	// End boundary: one past the last measured line, 0 for an empty file.
	end := 0
	if len(all) > 0 {
		end = all[len(all)-1] + 1
	}

	// Pool of unclaimed lines, drained as functions claim their ranges.
	remaining := make(map[int]struct{}, len(all))
	for _, number := range all {
		remaining[number] = struct{}{}
	}

	starts := make([]int, 0, len(result.Functions))
	names := make([]string, 0, len(result.Functions))
	for name, fn := range result.Functions {
		starts = append(starts, fn.Start)
		names = append(names, name)
	}
	sort.Ints(starts)

	// Methods are emitted in ascending start order, ties broken by raw
	// symbol name, so output is stable across runs.
	sort.Slice(names, func(i, j int) bool {
		fi, fj := result.Functions[names[i]], result.Functions[names[j]]
		if fi.Start != fj.Start {
			return fi.Start < fj.Start
		}
		return names[i] < names[j]
	})

	methods := make([]Method, 0, len(names))
	for _, name := range names {
		fn := result.Functions[name]

		stop := end
		if idx := sort.SearchInts(starts, fn.Start+1); idx < len(starts) {
			stop = starts[idx]
		}

		var lines []Line
		for _, number := range all {
			if number >= fn.Start && number < stop {
				lines = append(lines, classify(number, result))
				delete(remaining, number)
			}
		}

		methods = append(methods, Method{
			Name:  b.methodName(name),
			Lines: lines,
		})
	}

	// Lines no function claimed belong to the class itself.
	var orphans []Line
	for _, number := range all {
		if _, ok := remaining[number]; ok {
			orphans = append(orphans, classify(number, result))
		}
	}

	return Class{
		Name:     fileStem(file.RelPath),
		Filename: file.RelPath,
		Lines:    orphans,
		Methods:  methods,
	}
}

func (b *builder) methodName(symbol string) string {
	if b.demangle == nil {
		return symbol
	}
	return b.demangle(symbol)
}

// classify builds the leaf for a single line number. A line is a branch
// point iff the branches map has an entry for it; hits default to 0 when
// the line was never measured as executed.
func classify(number int, result CoverageResult) Line {
	hits := result.Lines[number]

	outcomes, ok := result.Branches[number]
	if !ok {
		return Line{Kind: LinePlain, Number: number, Hits: hits}
	}

	conditions := make([]Condition, 0, len(outcomes))
	for i, taken := range outcomes {
		coverage := 0.0
		if taken {
			coverage = 1.0
		}
		conditions = append(conditions, Condition{
			Number:   i,
			Type:     "jump",
			Coverage: coverage,
		})
	}
	return Line{Kind: LineBranch, Number: number, Hits: hits, Conditions: conditions}
}

// fileStem returns the base name without its extension, the class-name
// convention of the Cobertura schema. An empty or root path yields "".
func fileStem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
