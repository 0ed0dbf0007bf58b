package config

// File represents the structure of the .cobertura configuration file.
// Every field is optional; unset fields keep the built-in defaults and
// are overridden by command-line flags.
type File struct {
	// Output is where the Cobertura XML report is written. "-" selects stdout.
	Output string `yaml:"output,omitempty"`

	// Format selects the profile parser: auto, lcov or go.
	Format string `yaml:"format,omitempty"`

	// SourceRoot is stripped from profile paths in the report.
	SourceRoot string `yaml:"source_root,omitempty"`

	// Demangle toggles symbol demangling for method names.
	// A pointer distinguishes "absent" from an explicit false.
	Demangle *bool `yaml:"demangle,omitempty"`

	// Ignore holds glob patterns for files to drop from the report.
	Ignore []string `yaml:"ignore,omitempty"`

	// KeepOnly holds glob patterns for files to keep in the report.
	KeepOnly []string `yaml:"keep_only,omitempty"`

	// Markdown is the optional path for a Markdown summary report.
	Markdown string `yaml:"markdown,omitempty"`

	// JSON is the optional path for a JSON summary report.
	JSON string `yaml:"json,omitempty"`

	// History configures run recording in the local history database.
	History HistoryFile `yaml:"history,omitempty"`
}

// HistoryFile is the history section of the configuration file.
type HistoryFile struct {
	// Enabled records every successful conversion in the history database.
	Enabled bool `yaml:"enabled,omitempty"`

	// Label names the history series runs are recorded under.
	Label string `yaml:"label,omitempty"`
}

// Apply copies the file's settings onto c. Only fields the file
// actually sets are copied, so defaults survive an absent field and
// command-line flags applied afterwards win over the file.
func (cf *File) Apply(c *Config) {
	if cf.Output != "" {
		c.Output = cf.Output
	}
	if cf.Format != "" {
		c.Format = cf.Format
	}
	if cf.SourceRoot != "" {
		c.SourceRoot = cf.SourceRoot
	}
	if cf.Demangle != nil {
		c.Demangle = *cf.Demangle
	}
	if len(cf.Ignore) > 0 {
		c.Ignore = cf.Ignore
	}
	if len(cf.KeepOnly) > 0 {
		c.KeepOnly = cf.KeepOnly
	}
	if cf.Markdown != "" {
		c.MarkdownFile = cf.Markdown
	}
	if cf.JSON != "" {
		c.JSONFile = cf.JSON
	}
	if cf.History.Enabled {
		c.SaveHistory = true
	}
	if cf.History.Label != "" {
		c.Label = cf.History.Label
	}
}
