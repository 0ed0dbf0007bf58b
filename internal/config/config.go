package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen so that a bare "cobertura convert profile"
// produces a usable report without further flags.
const (
	// DefaultOutputFile is where the Cobertura XML report is written when
	// no --output flag is given. CI systems usually expect a file, so the
	// default is a file rather than stdout.
	DefaultOutputFile = "coverage.xml"

	// DefaultFormat lets the parser sniff the input format from the
	// profile itself. Explicit formats exist for ambiguous inputs.
	DefaultFormat = "auto"

	// DefaultLabel groups recorded runs that were not given an explicit
	// label. Typical labels are branch names or CI job names.
	DefaultLabel = "default"

	// StdoutPath is the pseudo path that redirects a report to stdout.
	StdoutPath = "-"

	// DefaultParseWorkers is the number of input profiles parsed
	// concurrently. Parsing is cheap, so a small fixed limit keeps file
	// descriptor usage bounded without a flag.
	DefaultParseWorkers = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "cobertura"
)

// Config holds all configuration options for the converter.
// This struct is designed to be populated from CLI flags and the
// optional .cobertura file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ParserConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Inputs is the list of coverage profiles to convert. At least one
	// path is required. All inputs are merged into a single report.
	Inputs []string

	// Format selects how inputs are parsed: "auto", "lcov" or "go".
	// With "auto" each input is sniffed individually, so mixed profile
	// kinds can be merged in one run.
	Format string

	// Output is the path the Cobertura XML report is written to.
	// StdoutPath ("-") writes the report to stdout instead.
	Output string

	// MarkdownFile is the optional path for a Markdown summary report.
	// Empty disables the Markdown writer. StdoutPath writes to stdout.
	MarkdownFile string

	// JSONFile is the optional path for a JSON summary report.
	// Empty disables the JSON writer. StdoutPath writes to stdout.
	JSONFile string

	// SourceRoot is stripped from profile paths so the report contains
	// workspace-relative names. Empty keeps paths as recorded.
	SourceRoot string

	// Demangle enables demangling of Rust and C++ symbol names in
	// method entries. Mangled names are kept verbatim when disabled.
	Demangle bool

	// Ignore holds glob patterns for files to drop from the report.
	// Patterns are matched against the path recorded in the profile.
	Ignore []string

	// KeepOnly holds glob patterns for files to keep in the report.
	// When set, files matching no pattern are dropped. Ignore wins over
	// KeepOnly when both match.
	KeepOnly []string

	// SaveHistory records the run's summary in the local history
	// database after a successful conversion.
	SaveHistory bool

	// Label names the history series this run belongs to.
	// Only used when SaveHistory is true.
	Label string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .cobertura in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/cobertura on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (output path, format,
// demangling). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Format:   DefaultFormat,
		Output:   DefaultOutputFile,
		Demangle: true,
		Label:    DefaultLabel,
	}
}

// XDGDataDir returns the XDG data directory for the converter.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/cobertura
// On macOS: ~/Library/Application Support/cobertura
// On Windows: %LOCALAPPDATA%\cobertura
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the converter.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/cobertura
// On macOS: ~/Library/Application Support/cobertura
// On Windows: %APPDATA%\cobertura
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any conversion begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one profile to convert
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	// Format must name a known parser
	switch c.Format {
	case "auto", "lcov", "go":
	default:
		return ErrInvalidFormat
	}

	// The XML report always needs a destination
	if c.Output == "" {
		return ErrNoOutput
	}

	// Recorded runs need a series name
	if c.SaveHistory && c.Label == "" {
		return ErrEmptyLabel
	}

	return nil
}
