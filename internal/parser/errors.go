package parser

import "errors"

// Parsing errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances at each failure site. This allows callers to use
// errors.Is() for programmatic error handling while the wrapping site adds
// the file name and line number.
var (
	// ErrUnknownFormat is returned when the input matches neither a Go
	// cover profile nor an LCOV tracefile and no format was forced.
	ErrUnknownFormat = errors.New("unknown coverage format: expected a go cover profile or an LCOV tracefile")

	// ErrMalformedRecord is returned when an LCOV record cannot be decoded,
	// for example a DA record with an unparsable line number.
	ErrMalformedRecord = errors.New("malformed LCOV record")

	// ErrRecordOutsideFile is returned when coverage data appears before
	// any SF record named the file it belongs to.
	ErrRecordOutsideFile = errors.New("coverage record outside an SF section")
)
