// Package log provides terminal-oriented logging for the converter,
// built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Compact single-line output without timestamps or source locations
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Output Format
//
// Each record is rendered as one line: the level tag, the message, and
// any attributes as key=value pairs. Group names qualify attribute keys
// with dots:
//
//	WARN: duplicate line record file=src/main.rs line=12
//	DEBUG: step finished step=report run.label=main
//
// # Usage
//
//	// Create a logger for the command line
//	logger := log.NewLogger(os.Stderr, verbose)
//
//	// Use as a standard slog.Logger
//	logger.Debug("parsed profile",
//	    "file", "coverage.lcov",
//	    "records", 42,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
//
// Log output goes to stderr so that reports written to stdout stay
// machine-readable.
package log
