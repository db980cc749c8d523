package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// SimpleWriter outputs human-readable plain text reports. This is the
// default format for terminal use.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteSummary outputs the corpus statistics, one per line.
func (w *SimpleWriter) WriteSummary(summary linkage.Summary) (int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "TRANSACTIONS:        %d\n", summary.Transactions)
	fmt.Fprintf(&b, "WITH UNMIX LEVEL:    %d\n", summary.Scored)
	fmt.Fprintf(&b, "MAKER ADDRESSES:     %d\n", summary.MakerAddresses)
	if summary.Scored > 0 {
		fmt.Fprintf(&b, "AVG UNMIX LEVEL:     %.2f\n", summary.Mean)
		fmt.Fprintf(&b, "MEDIAN UNMIX LEVEL:  %.2f\n", summary.Median)
		fmt.Fprintf(&b, "MIN UNMIX LEVEL:     %.2f\n", summary.Min)
		fmt.Fprintf(&b, "MAX UNMIX LEVEL:     %.2f\n", summary.Max)
		fmt.Fprintf(&b, "FULLY UNMIXED FRAC:  %.2f\n", summary.FullyUnmixedFraction)
	}
	return io.WriteString(w.output, b.String())
}

// WriteTransaction outputs the pairing listing and, when present, the
// maker-address annotation and spend trace of one transaction.
func (w *SimpleWriter) WriteTransaction(tx *model.MarkedCoinJoinTx, score linkage.UnmixScore, trace *linkage.Trace) (int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "TX %s (%d parties, mix value %s)\n\n", tx.ID, tx.NumParties(), tx.MixValue())
	b.WriteString(tx.Describe())

	if tx.MakerAddresses.Len() > 0 {
		b.WriteString("\nPOSSIBLE TAKER ADDRESSES:\n")
		for _, addrs := range tx.PossibleTakerAddresses() {
			for _, addr := range addrs {
				fmt.Fprintf(&b, "    %s\n", addr)
			}
		}
		b.WriteString("KNOWN MAKER ADDRESSES:\n")
		for _, addr := range tx.MakerAddresses.Sorted() {
			fmt.Fprintf(&b, "    %s\n", addr)
		}
		if score.Defined {
			fmt.Fprintf(&b, "UNMIX LEVEL: %.2f\n", score.Level)
		} else {
			b.WriteString("UNMIX LEVEL: undefined (no taker candidate)\n")
		}
	}

	if trace != nil {
		writeTrace(&b, trace)
	}

	return io.WriteString(w.output, b.String())
}

// writeTrace renders the per-output attribution and the downstream
// transactions exploited to obtain it.
func writeTrace(b *strings.Builder, trace *linkage.Trace) {
	b.WriteString("\nMIX OUTPUT ATTRIBUTION:\n")
	for _, out := range trace.Outputs {
		if len(out.MakerAddresses) > 0 {
			fmt.Fprintf(b, "  vout %d MAKER: %s\n", out.Vout, strings.Join(out.MakerAddresses, " "))
			if out.Spender != nil {
				fmt.Fprintf(b, "    %s spent by tx %s, vin %d\n", out.Value, out.Spender.TxID, out.Spender.Vin)
			} else {
				b.WriteString("    not spent within the corpus\n")
			}
		} else {
			fmt.Fprintf(b, "  vout %d TAKER: %s\n", out.Vout, strings.Join(out.Addresses, " "))
		}
	}

	if len(trace.Exploited) == 0 {
		return
	}
	b.WriteString("\nTRANSACTIONS EXPLOITED:\n")
	for _, exploited := range trace.Exploited {
		tx := exploited.Tx
		fmt.Fprintf(b, "\nTX %s (%d parties, mix value %s)\n\n", tx.ID, tx.NumParties(), tx.MixValue())
		b.WriteString(tx.Describe())
		b.WriteString("VALUES EXPLOITED:\n")
		for _, v := range exploited.Values {
			fmt.Fprintf(b, "  %s spent from addr %s\n", v.Value, strings.Join(v.Addresses, ", "))
		}
	}
}
