package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// relPath maps a profile path onto the path used for package and class
// names in the report. Absolute paths under the source root become
// relative to it; everything else is kept, cleaned and slash-separated.
func (p *Parser) relPath(path string) string {
	if p.sourceRoot != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(p.sourceRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// keep reports whether a relative path survives the keep-only and ignore
// patterns. Ignore wins when both match.
func (p *Parser) keep(relPath string) bool {
	if len(p.keepOnly) > 0 && !matchAny(p.keepOnly, relPath) {
		return false
	}
	return !matchAny(p.ignore, relPath)
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidatePatterns checks glob patterns before a conversion starts so a
// typo fails fast instead of silently matching nothing.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}
