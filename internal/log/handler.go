package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// CompactHandler is an slog.Handler that formats records as single
// lines suited to terminal output: a level tag, the message, and any
// attributes as key=value pairs. Timestamps and source locations are
// omitted because conversions are short-lived and the output is read
// by a human watching the command run.
//
// Design decision: We implement a handler rather than wrapping
// slog.NewTextHandler because:
//  1. The text handler always prints a time= attribute, which is noise
//     for a tool that finishes in well under a second
//  2. Reports are written to stdout or files, so log lines must stay
//     terse enough to be readable on stderr next to them
//  3. A custom handler lets tests assert exact output lines
type CompactHandler struct {
	// level is the minimum level this handler records.
	level slog.Leveler
	// w receives formatted lines. Writes are serialized by mu.
	w io.Writer
	// mu is shared by all handlers derived via WithAttrs/WithGroup
	// so concurrent loggers never interleave partial lines.
	mu *sync.Mutex
	// attrs holds preformatted attributes from WithAttrs calls.
	attrs string
	// groups holds open group names; they prefix attribute keys.
	groups []string
}

// NewCompactHandler creates a CompactHandler writing to w.
// If level is nil, slog.LevelInfo is used.
func NewCompactHandler(w io.Writer, level slog.Leveler) *CompactHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CompactHandler{
		level: level,
		w:     w,
		mu:    &sync.Mutex{},
	}
}

// Enabled reports whether the handler records at the given level.
func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record as a single line and writes it to the
// underlying writer.
func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)

	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that includes the given attributes in
// every record it handles.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var b strings.Builder
	b.WriteString(h.attrs)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		appendAttr(&b, prefix, a)
	}

	h2 := *h
	h2.attrs = b.String()
	return &h2
}

// WithGroup returns a handler that qualifies subsequent attribute keys
// with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &h2
}

// appendAttr writes a single attribute as " key=value", qualifying the
// key with prefix. Group attributes recurse with an extended prefix,
// matching the flattening slog.TextHandler performs.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		p := prefix
		if a.Key != "" {
			p = joinKey(prefix, a.Key)
		}
		for _, ga := range attrs {
			appendAttr(b, p, ga)
		}
		return
	}

	fmt.Fprintf(b, " %s=%s", joinKey(prefix, a.Key), formatValue(a.Value))
}

// joinKey qualifies key with a dotted group prefix.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// formatValue renders an attribute value, quoting strings that would
// be ambiguous in key=value form.
func formatValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n=\"") {
			return strconv.Quote(s)
		}
		return s
	}
	return v.String()
}

// NewLogger creates a new slog.Logger for command-line use.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewCompactHandler(w, level))
}
