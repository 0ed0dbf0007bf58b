package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/cobertura/internal/config"
	"github.com/nao1215/cobertura/internal/model"
)

// libraryProfile is an LCOV tracefile for a second, fully covered file.
const libraryProfile = `TN:
SF:/workspace/src/lib.rs
DA:1,1
DA:2,1
end_of_record
`

// goCoverProfile is a Go cover profile whose source is not on disk.
const goCoverProfile = `mode: set
example.com/demo/calc.go:3.10,5.2 2 1
example.com/demo/calc.go:7.2,8.10 1 0
`

// runRootCommand executes the root command with args and captures stdout.
func runRootCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	root := NewRootCmd()
	root.SetArgs(args)
	err := root.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), err
}

// TestConvertIntegration tests full conversions through the root command.
func TestConvertIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because these tests capture os.Stdout

	t.Run("converts an LCOV profile end to end", func(t *testing.T) {
		tmpDir := t.TempDir()
		profile := writeProfile(t, tmpDir, "cov.lcov", convertProfile)
		outPath := filepath.Join(tmpDir, "coverage.xml")

		output, err := runRootCommand(t, "convert", "-s", "/workspace", "-o", outPath, profile)
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		if !strings.Contains(output, "Report written to") {
			t.Errorf("expected report path in console output, got %q", output)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		report := string(data)

		if !strings.Contains(report, "<!DOCTYPE coverage SYSTEM 'http://cobertura.sourceforge.net/xml/coverage-04.dtd'>") {
			t.Error("expected Cobertura DOCTYPE declaration")
		}
		if !strings.Contains(report, `version="1.9"`) {
			t.Error("expected version attribute")
		}
		if !strings.Contains(report, `lines-covered="2" lines-valid="3" line-rate="0.6666666666666666"`) {
			t.Errorf("expected line counters, got %q", report)
		}
		if !strings.Contains(report, `<package name="src/main.rs"`) {
			t.Error("expected package entry for src/main.rs")
		}
	})

	t.Run("streams the report to stdout", func(t *testing.T) {
		tmpDir := t.TempDir()
		profile := writeProfile(t, tmpDir, "cov.lcov", convertProfile)

		output, err := runRootCommand(t, "convert", "-s", "/workspace", "-o", "-", profile)
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		if !strings.HasPrefix(output, `<?xml version="1.0"?>`) {
			t.Errorf("expected XML prolog on stdout, got %q", output)
		}
		if strings.Contains(output, "Report written to") {
			t.Error("expected no console summary when the report goes to stdout")
		}
	})

	t.Run("writes markdown and json summaries", func(t *testing.T) {
		tmpDir := t.TempDir()
		profile := writeProfile(t, tmpDir, "cov.lcov", convertProfile)
		outPath := filepath.Join(tmpDir, "coverage.xml")
		mdPath := filepath.Join(tmpDir, "coverage.md")
		jsonPath := filepath.Join(tmpDir, "coverage.json")

		output, err := runRootCommand(t, "convert",
			"-s", "/workspace", "-o", outPath, "-m", mdPath, "-j", jsonPath, profile)
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		if !strings.Contains(output, "Markdown summary written to") {
			t.Errorf("expected markdown path in console output, got %q", output)
		}

		md, err := os.ReadFile(mdPath)
		if err != nil {
			t.Fatalf("failed to read markdown summary: %v", err)
		}
		if !strings.Contains(string(md), "# Coverage Report") {
			t.Error("expected markdown summary title")
		}

		raw, err := os.ReadFile(jsonPath)
		if err != nil {
			t.Fatalf("failed to read JSON summary: %v", err)
		}
		var summary model.Summary
		if err := json.Unmarshal(raw, &summary); err != nil {
			t.Fatalf("failed to parse JSON summary: %v", err)
		}
		if summary.Files != 1 {
			t.Errorf("expected 1 file in summary, got %d", summary.Files)
		}
		if summary.Totals.LinesValid != 3 {
			t.Errorf("expected 3 valid lines, got %d", summary.Totals.LinesValid)
		}
	})

	t.Run("applies conversion settings from a config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		profile := writeProfile(t, tmpDir, "cov.lcov", convertProfile)
		outPath := filepath.Join(tmpDir, "from-config.xml")

		configPath := filepath.Join(tmpDir, "cobertura.yaml")
		content := "output: " + outPath + "\nsource_root: /workspace\n"
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := runRootCommand(t, "convert", "-c", configPath, profile); err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), `<package name="src/main.rs"`) {
			t.Error("expected source root from config file to apply")
		}
	})

	t.Run("converts a Go cover profile", func(t *testing.T) {
		tmpDir := t.TempDir()
		profile := writeProfile(t, tmpDir, "cover.out", goCoverProfile)
		outPath := filepath.Join(tmpDir, "coverage.xml")

		if _, err := runRootCommand(t, "convert", "-o", outPath, profile); err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		report := string(data)

		if !strings.Contains(report, `<package name="example.com/demo/calc.go"`) {
			t.Errorf("expected package entry for the Go file, got %q", report)
		}
		if !strings.Contains(report, `<class name="calc" filename="example.com/demo/calc.go"`) {
			t.Error("expected class entry for the Go file")
		}
		if !strings.Contains(report, `lines-covered="3" lines-valid="5"`) {
			t.Errorf("expected line counters from cover blocks, got %q", report)
		}
	})

	t.Run("combines multiple profiles into one report", func(t *testing.T) {
		tmpDir := t.TempDir()
		mainProfile := writeProfile(t, tmpDir, "main.lcov", convertProfile)
		libProfile := writeProfile(t, tmpDir, "lib.lcov", libraryProfile)
		outPath := filepath.Join(tmpDir, "coverage.xml")

		if _, err := runRootCommand(t, "convert",
			"-s", "/workspace", "-o", outPath, mainProfile, libProfile); err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		report := string(data)

		if !strings.Contains(report, `lines-covered="4" lines-valid="5"`) {
			t.Errorf("expected combined line counters, got %q", report)
		}
		libIdx := strings.Index(report, `<package name="src/lib.rs"`)
		mainIdx := strings.Index(report, `<package name="src/main.rs"`)
		if libIdx == -1 || mainIdx == -1 {
			t.Fatal("expected both packages in the report")
		}
		if libIdx > mainIdx {
			t.Error("expected packages sorted by path")
		}
	})

	t.Run("applies ignore patterns", func(t *testing.T) {
		tmpDir := t.TempDir()
		mainProfile := writeProfile(t, tmpDir, "main.lcov", convertProfile)
		libProfile := writeProfile(t, tmpDir, "lib.lcov", libraryProfile)
		outPath := filepath.Join(tmpDir, "coverage.xml")

		if _, err := runRootCommand(t, "convert",
			"-s", "/workspace", "-o", outPath, "--ignore", "**/main.rs", mainProfile, libProfile); err != nil {
			t.Fatalf("convert failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		report := string(data)

		if strings.Contains(report, "src/main.rs") {
			t.Error("expected ignored file to be excluded")
		}
		if !strings.Contains(report, `<package name="src/lib.rs"`) {
			t.Error("expected remaining file in the report")
		}
	})
}

// TestInitIntegration tests that init produces a loadable configuration.
func TestInitIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	t.Run("init writes a loadable config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".cobertura")

		output, err := runRootCommand(t, "init", "-o", configPath)
		if err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if !strings.Contains(output, "Created configuration file:") {
			t.Errorf("expected creation message, got %q", output)
		}

		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("generated config does not load: %v", err)
		}
		if file == nil {
			t.Fatal("expected non-nil config file")
		}
	})
}

// TestVersionIntegration tests the version command through the root command.
func TestVersionIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	output, err := runRootCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(output, "cobertura version") {
		t.Errorf("expected version banner, got %q", output)
	}
}

// TestRootUnknownCommand tests that unknown subcommands are rejected.
func TestRootUnknownCommand(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	_, err := runRootCommand(t, "frobnicate")
	if err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected 'unknown command' error, got %v", err)
	}
}
