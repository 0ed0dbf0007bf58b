package report

import (
	"io"

	"github.com/nao1215/cobertura/internal/model"
)

// Writer defines the interface for report output.
// Implementations render a coverage tree in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API. The interface carries only Write: the
// Cobertura writer needs the full tree and cannot render anything less,
// while the summary-oriented writers expose WriteSummary as a concrete
// method for callers that hold a stored summary instead of a tree.
type Writer interface {
	// Write renders the coverage tree to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(coverage *model.Coverage) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write coverage trees, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the coverage tree to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(coverage *model.Coverage) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(coverage)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
