package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoInput is returned when no coverage profile is specified.
	// At least one profile path must be given as a positional argument.
	ErrNoInput = errors.New("no input specified: provide at least one coverage profile")

	// ErrInvalidFormat is returned when the format is not one of the
	// known parser names.
	ErrInvalidFormat = errors.New("invalid format: must be auto, lcov or go")

	// ErrNoOutput is returned when the XML output path is empty.
	// Use "-" to write the report to stdout.
	ErrNoOutput = errors.New(`no output specified: provide a file path or "-" for stdout`)

	// ErrEmptyLabel is returned when history recording is enabled with
	// an empty label. Runs are grouped by label, so one is required.
	ErrEmptyLabel = errors.New("empty history label: provide a label for the recorded run")
)
