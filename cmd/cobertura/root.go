// Package main provides the entry point for the cobertura CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the converter.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cobertura",
		Short: "Convert coverage profiles to Cobertura XML reports",
		Long: `cobertura converts code coverage profiles into Cobertura XML reports.

It reads LCOV tracefiles and Go cover profiles, merges them into a single
report, and writes Cobertura coverage-04 XML for CI systems. Optional
Markdown and JSON summaries can be written alongside the XML, and runs can
be recorded in a local history database to track coverage over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
