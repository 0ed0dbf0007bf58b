package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/cobertura/internal/model"
)

// Format identifies a coverage profile format.
type Format string

const (
	// FormatAuto sniffs the format from the input itself.
	FormatAuto Format = "auto"
	// FormatLCOV is an LCOV tracefile as written by lcov, grcov or
	// llvm-cov export.
	FormatLCOV Format = "lcov"
	// FormatGo is a Go cover profile as written by go test -coverprofile.
	FormatGo Format = "go"
)

// Parser reads coverage profiles into per-file measurements. The zero
// value sniffs the format and applies no path mapping or filtering.
type Parser struct {
	format     Format
	sourceRoot string
	ignore     []string
	keepOnly   []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithFormat forces the profile format instead of sniffing it.
func WithFormat(format Format) Option {
	return func(p *Parser) {
		p.format = format
	}
}

// WithSourceRoot sets the directory profile paths are made relative to.
// It is also where the Go profile parser looks for source files.
func WithSourceRoot(dir string) Option {
	return func(p *Parser) {
		p.sourceRoot = dir
	}
}

// WithIgnore adds glob patterns for files to drop. Patterns match the
// relative path and support ** for directory spans.
func WithIgnore(patterns ...string) Option {
	return func(p *Parser) {
		p.ignore = append(p.ignore, patterns...)
	}
}

// WithKeepOnly adds glob patterns files must match to be kept. An empty
// list keeps everything.
func WithKeepOnly(patterns ...string) Option {
	return func(p *Parser) {
		p.keepOnly = append(p.keepOnly, patterns...)
	}
}

// New returns a Parser with the given options applied.
func New(opts ...Option) *Parser {
	p := &Parser{format: FormatAuto}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads one coverage profile from disk. The returned slice has
// one entry per source file the profile mentions, in profile order, minus
// files removed by the ignore and keep-only patterns.
func (p *Parser) ParseFile(path string) ([]model.FileCoverage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coverage profile: %w", err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads one coverage profile from r. The name is used in error
// messages, normally the profile's file path.
func (p *Parser) Parse(r io.Reader, name string) ([]model.FileCoverage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage profile: %w", err)
	}

	format := p.format
	if format == FormatAuto || format == "" {
		format, err = DetectFormat(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	switch format {
	case FormatLCOV:
		return p.parseLCOV(data, name)
	case FormatGo:
		return p.parseGoProfile(data)
	default:
		return nil, fmt.Errorf("%s: unsupported format %q: %w", name, format, ErrUnknownFormat)
	}
}

// DetectFormat sniffs the profile format from the first contentful line.
// Go cover profiles start with a mode: header; LCOV tracefiles start with
// a TN: or SF: record.
func DetectFormat(data []byte) (Format, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "mode:") {
			return FormatGo, nil
		}
		if strings.HasPrefix(line, "TN:") || strings.HasPrefix(line, "SF:") {
			return FormatLCOV, nil
		}
		break
	}
	return "", ErrUnknownFormat
}

// MergeFiles flattens parsed batches into one file list. Files appearing
// in more than one batch collapse into a single entry whose measurements
// are merged; first-appearance order is kept.
func MergeFiles(batches [][]model.FileCoverage) []model.FileCoverage {
	var files []model.FileCoverage
	index := make(map[string]int)
	for _, batch := range batches {
		for _, file := range batch {
			if i, ok := index[file.RelPath]; ok {
				files[i].Result.Merge(file.Result)
				continue
			}
			index[file.RelPath] = len(files)
			files = append(files, file)
		}
	}
	return files
}
