package report

import (
	"io"

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: an interface allows different output formats and
// destinations (files, stdout) behind the same API.
type Writer interface {
	// WriteSummary outputs the corpus analysis summary.
	// Returns the number of bytes written and any error encountered.
	WriteSummary(summary linkage.Summary) (int, error)

	// WriteTransaction outputs a single-transaction report: the pairing
	// listing and, when the transaction carries maker annotations, the
	// known maker and possible taker addresses. A non-nil trace adds the
	// per-output attribution and the downstream transactions that were
	// exploited to obtain it.
	WriteTransaction(tx *model.MarkedCoinJoinTx, score linkage.UnmixScore, trace *linkage.Trace) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, useful for
// outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSummary outputs the summary to all configured Writers.
// Stops on the first error encountered.
func (m *MultiWriter) WriteSummary(summary linkage.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTransaction outputs the transaction report to all configured Writers.
func (m *MultiWriter) WriteTransaction(tx *model.MarkedCoinJoinTx, score linkage.UnmixScore, trace *linkage.Trace) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteTransaction(tx, score, trace)
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
