package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// JSONWriter outputs reports in JSON format, for tool integration and
// programmatic processing.
//
// Design decision: standard encoding/json rather than a third-party JSON
// library; it is sufficient here and behaves consistently across Go
// versions.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSummary outputs the analysis summary as a JSON object.
func (w *JSONWriter) WriteSummary(summary linkage.Summary) (int, error) {
	return w.writeJSON(summary)
}

// transactionReport is the JSON shape of a single-transaction report.
type transactionReport struct {
	Transaction    *model.MarkedCoinJoinTx `json:"transaction"`
	UnmixLevel     *float64                `json:"unmix_level"`
	PossibleTakers [][]string              `json:"possible_taker_addresses,omitempty"`
	Trace          *linkage.Trace          `json:"trace,omitempty"`
}

// WriteTransaction outputs a single-transaction report as a JSON object.
// An undefined unmix level serializes as null, never as zero.
func (w *JSONWriter) WriteTransaction(tx *model.MarkedCoinJoinTx, score linkage.UnmixScore, trace *linkage.Trace) (int, error) {
	r := transactionReport{
		Transaction:    tx,
		PossibleTakers: tx.PossibleTakerAddresses(),
		Trace:          trace,
	}
	if score.Defined {
		r.UnmixLevel = &score.Level
	}
	return w.writeJSON(r)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
