package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/cobertura/internal/config"
	"github.com/nao1215/cobertura/internal/log"
	"github.com/nao1215/cobertura/internal/pipeline"
	"github.com/nao1215/cobertura/internal/report"
	"github.com/spf13/cobra"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [profile]...",
		Short: "Convert coverage profiles to a Cobertura XML report",
		Long: `Convert parses one or more coverage profiles and writes a Cobertura XML report.

Supported input formats:
- LCOV tracefiles (lcov, grcov, llvm-cov export, cargo-llvm-cov)
- Go cover profiles (go test -coverprofile)

Multiple profiles are merged into a single report: line hit counts add up,
branch outcomes combine, and files appearing in several profiles are
reported once.

Examples:
  # Convert an LCOV tracefile to coverage.xml
  cobertura convert lcov.info

  # Merge several profiles into one report
  cobertura convert unit.lcov integration.lcov

  # Write the XML report to stdout
  cobertura convert -o - lcov.info

  # Strip the workspace prefix from report paths
  cobertura convert -s /workspace lcov.info

  # Write Markdown and JSON summaries alongside the XML
  cobertura convert -m coverage.md -j coverage.json lcov.info

  # Record the run in the local history database
  cobertura convert --save -l main lcov.info

Configuration file (.cobertura) example:
  output: reports/coverage.xml
  source_root: /workspace
  ignore:
    - "**/target/**"
  history:
    enabled: true
    label: main`,
		Args: cobra.ArbitraryArgs,
		RunE: runConvertCmd,
	}

	// Input flags
	cmd.Flags().StringP("format", "t", config.DefaultFormat,
		"Input profile format: auto, lcov or go")
	cmd.Flags().StringP("source-root", "s", "",
		"Path prefix stripped from profile paths in the report")
	cmd.Flags().StringArray("ignore", nil,
		"Glob pattern for files to drop from the report (repeatable)")
	cmd.Flags().StringArray("keep-only", nil,
		"Glob pattern for files to keep in the report (repeatable)")
	cmd.Flags().Bool("no-demangle", false,
		"Keep mangled Rust and C++ symbol names in method entries")

	// Report flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		`Cobertura XML output path ("-" for stdout)`)
	cmd.Flags().StringP("markdown", "m", "",
		"Write a Markdown summary report to the specified path")
	cmd.Flags().StringP("json", "j", "",
		"Write a JSON summary report to the specified path")

	// History flags
	cmd.Flags().Bool("save", false,
		"Record the run in the local history database")
	cmd.Flags().StringP("label", "l", config.DefaultLabel,
		"History label the run is recorded under")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cobertura in current or home directory)")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	// Build config from the config file and flags
	cfg, err := buildConvertConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runConvert(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConvertConfig creates a Config from the configuration file and
// cobra command flags. Precedence is flag > file > default: the file is
// applied onto the defaults first, then flags the user actually set
// override the result.
func buildConvertConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load converter settings from the config file before reading flags.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep the defaults when no file exists.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags only override file values when the user set them, so an
	// untouched --output default never clobbers the file's output path.
	if err := applyStringFlag(cmd, "format", &cfg.Format); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "output", &cfg.Output); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "source-root", &cfg.SourceRoot); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "markdown", &cfg.MarkdownFile); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "json", &cfg.JSONFile); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "label", &cfg.Label); err != nil {
		return nil, err
	}
	if err := applyStringArrayFlag(cmd, "ignore", &cfg.Ignore); err != nil {
		return nil, err
	}
	if err := applyStringArrayFlag(cmd, "keep-only", &cfg.KeepOnly); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("no-demangle") {
		noDemangle, err := cmd.Flags().GetBool("no-demangle")
		if err != nil {
			return nil, err
		}
		cfg.Demangle = !noDemangle
	}

	if cmd.Flags().Changed("save") {
		cfg.SaveHistory, err = cmd.Flags().GetBool("save")
		if err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// DBDir stays empty here; the record step resolves an empty value to
	// the XDG data directory.

	// Get positional arguments (coverage profiles)
	cfg.Inputs = args

	return cfg, nil
}

// applyStringFlag copies the flag value onto dst when the user set the
// flag. Unset flags keep the value coming from the config file or the
// built-in default.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

// applyStringArrayFlag copies the repeated flag values onto dst when the
// user set the flag. Flag values replace the config file's list rather
// than appending to it.
func applyStringArrayFlag(cmd *cobra.Command, name string, dst *[]string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	values, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		return err
	}
	*dst = values
	return nil
}

// runConvert executes the conversion.
func runConvert(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting conversion",
		"inputs", cfg.Inputs,
		"format", cfg.Format,
		"output", cfg.Output,
		"saveHistory", cfg.SaveHistory,
	)

	p := pipeline.DefaultPipeline(reportTargets(cfg), cfg.SaveHistory, pipeline.WithLogger(logger))
	conv := pipeline.NewConversion(cfg)

	if err := p.Execute(ctx, conv); err != nil {
		return err
	}

	return printConvertResult(os.Stdout, cfg, conv)
}

// reportTargets assembles the report destinations for the pipeline.
// The Cobertura XML report is always written; Markdown and JSON
// summaries are added when their paths are configured.
func reportTargets(cfg *config.Config) []pipeline.ReportTarget {
	targets := []pipeline.ReportTarget{
		{
			Path: cfg.Output,
			New:  func(w io.Writer) report.Writer { return report.NewCoberturaWriter(w) },
		},
	}

	if cfg.MarkdownFile != "" {
		targets = append(targets, pipeline.ReportTarget{
			Path: cfg.MarkdownFile,
			New:  func(w io.Writer) report.Writer { return report.NewMarkdownWriter(w) },
		})
	}

	if cfg.JSONFile != "" {
		targets = append(targets, pipeline.ReportTarget{
			Path: cfg.JSONFile,
			New:  func(w io.Writer) report.Writer { return report.NewJSONWriter(w, report.WithPrettyPrint()) },
		})
	}

	return targets
}

// printConvertResult prints a short coverage summary after a successful
// conversion. The summary is suppressed when any report goes to stdout
// so the report stream stays machine-readable.
func printConvertResult(w io.Writer, cfg *config.Config, conv *pipeline.Conversion) error {
	for _, target := range reportTargets(cfg) {
		if target.Path == config.StdoutPath {
			return nil
		}
	}

	writer := report.NewTextWriter(w)
	if _, err := writer.WriteSummary(conv.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	fmt.Fprintf(w, "\nReport written to %s\n", cfg.Output)
	if cfg.MarkdownFile != "" {
		fmt.Fprintf(w, "Markdown summary written to %s\n", cfg.MarkdownFile)
	}
	if cfg.JSONFile != "" {
		fmt.Fprintf(w, "JSON summary written to %s\n", cfg.JSONFile)
	}

	return nil
}
