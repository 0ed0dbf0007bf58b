// Package parser reads coverage profiles into the per-file measurements
// the report tree is built from.
//
// Two formats are supported: LCOV tracefiles as written by lcov, grcov and
// llvm-cov export, and Go cover profiles as written by go test
// -coverprofile. The format is sniffed from the first contentful line
// unless forced with WithFormat.
//
// Design decision: Parsers normalize everything into model.CoverageResult
// and know nothing about the Cobertura output schema. Which lines belong
// to which method, and what a branch leaf looks like, is decided by the
// tree builder. That keeps a new input format a one-file addition.
package parser
