// Package model defines the core data structures used throughout cobertura.
//
// This package contains the following main types:
//   - CoverageResult: Raw per-file measurements produced by the profile parsers
//   - Coverage: The package/class/method/line report tree
//   - Stats: Aggregate line and branch counters for any subtree
//   - Summary: Condensed totals for human-oriented output and history storage
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (parser, pipeline, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The report tree is built once per conversion by NewCoverage, never mutated
// afterward, and discarded after the writers have serialized it.
package model
