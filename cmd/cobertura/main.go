// Package main provides the entry point for the cobertura CLI.
//
// cobertura converts code coverage profiles (LCOV tracefiles and Go
// cover profiles) into Cobertura coverage-04 XML reports that CI
// systems understand.
//
// Usage:
//
//	cobertura convert lcov.info
//	cobertura convert -o reports/coverage.xml unit.lcov integration.lcov
//
// See --help for all available options.
package main

// main is the entry point for the converter.
func main() {
	Execute()
}
