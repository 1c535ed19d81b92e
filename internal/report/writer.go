package report

import (
	"io"

	"github.com/nao1215/relevador/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the survey result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.SurveyResult) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// Our Writer writes results, not raw bytes, so io.MultiWriter does not apply.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.SurveyResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
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
