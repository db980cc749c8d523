package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown, for
// documentation and sharing.
//
// Design decision: the nao1215/markdown library gives type-safe fluent
// generation with tables and alerts, instead of hand-assembled strings.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSummary outputs the analysis summary as a Markdown document.
func (w *MarkdownWriter) WriteSummary(summary linkage.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("JoinMarket Unmixing Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Transactions", strconv.Itoa(summary.Transactions)},
			{"With unmix level", strconv.Itoa(summary.Scored)},
			{"Maker addresses", strconv.Itoa(summary.MakerAddresses)},
			{"Average unmix level", fmt.Sprintf("%.2f", summary.Mean)},
			{"Median unmix level", fmt.Sprintf("%.2f", summary.Median)},
			{"Min unmix level", fmt.Sprintf("%.2f", summary.Min)},
			{"Max unmix level", fmt.Sprintf("%.2f", summary.Max)},
			{"Fully unmixed fraction", fmt.Sprintf("%.2f", summary.FullyUnmixedFraction)},
		},
	})
	md.PlainText("")

	switch {
	case summary.Scored == 0:
		md.Note("No transaction has a defined unmix level.")
	case summary.FullyUnmixedFraction > 0.5:
		md.Warningf("%.0f%% of scored transactions are fully unmixed.", summary.FullyUnmixedFraction*100)
	default:
		md.Notef("%.0f%% of scored transactions are fully unmixed.", summary.FullyUnmixedFraction*100)
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteTransaction outputs a single-transaction report as Markdown: a
// property table, the pairing listing as a code block, the address
// annotation when present, and the spend trace when given.
func (w *MarkdownWriter) WriteTransaction(tx *model.MarkedCoinJoinTx, score linkage.UnmixScore, trace *linkage.Trace) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Transaction " + tx.ID)
	md.PlainText("")

	level := "undefined"
	if score.Defined {
		level = fmt.Sprintf("%.2f", score.Level)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Parties", strconv.Itoa(tx.NumParties())},
			{"Mix value", tx.MixValue().String()},
			{"Miner fee", tx.Fee().String()},
			{"Coordinator fee", tx.CoordinatorFee().String()},
			{"Unmix level", level},
		},
	})
	md.PlainText("")

	md.H2("Pairing")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, tx.Describe())
	md.PlainText("")

	if tx.MakerAddresses.Len() > 0 {
		md.H2("Known Maker Addresses")
		md.PlainText("")
		md.BulletList(tx.MakerAddresses.Sorted()...)
		md.PlainText("")

		var takers []string
		for _, addrs := range tx.PossibleTakerAddresses() {
			takers = append(takers, addrs...)
		}
		md.H2("Possible Taker Addresses")
		md.PlainText("")
		if len(takers) > 0 {
			md.BulletList(takers...)
		} else {
			md.PlainText("None: every mix output is attributed to a maker.")
		}
		md.PlainText("")
	}

	if trace != nil {
		writeMarkdownTrace(md, trace)
	}

	return len(md.String()), md.Build()
}

// writeMarkdownTrace renders the per-output attribution table and the
// exploited downstream transactions.
func writeMarkdownTrace(md *markdown.Markdown, trace *linkage.Trace) {
	rows := make([][]string, 0, len(trace.Outputs))
	for _, out := range trace.Outputs {
		role, addrs, spentBy := "taker", out.Addresses, "-"
		if len(out.MakerAddresses) > 0 {
			role, addrs = "maker", out.MakerAddresses
			if out.Spender != nil {
				spentBy = fmt.Sprintf("%s vin %d", out.Spender.TxID, out.Spender.Vin)
			} else {
				spentBy = "not in corpus"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(out.Vout), role, strings.Join(addrs, " "), spentBy,
		})
	}
	md.H2("Mix Output Attribution")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Vout", "Role", "Addresses", "Spent by"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(trace.Exploited) == 0 {
		return
	}
	md.H2("Transactions Exploited")
	md.PlainText("")
	for _, exploited := range trace.Exploited {
		md.H3("Transaction " + exploited.Tx.ID)
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightText, exploited.Tx.Describe())
		md.PlainText("")
		values := make([]string, 0, len(exploited.Values))
		for _, v := range exploited.Values {
			values = append(values, fmt.Sprintf("%s spent from %s", v.Value, strings.Join(v.Addresses, ", ")))
		}
		md.BulletList(values...)
		md.PlainText("")
	}
}
