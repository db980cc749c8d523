package model

import (
	"fmt"
	"strings"
)

// CoinJoinTx wraps a transaction together with its computed pairing and
// exposes participant-level views: the taker, the makers, and the fees that
// flowed between them.
type CoinJoinTx struct {
	Transaction

	// Pairing is the partition of this transaction into participant groups.
	Pairing Pairing `json:"pairing"`
}

// NumParties returns the number of participants in the coinjoin.
func (tx *CoinJoinTx) NumParties() int {
	return tx.Pairing.NumParties()
}

// MixValue returns the common equal-output value of this coinjoin.
func (tx *CoinJoinTx) MixValue() Amount {
	return tx.Pairing.MixValue
}

// MixOutputs returns the outputs carrying exactly the mix value, in wire
// order. These form the anonymity set of the transaction.
func (tx *CoinJoinTx) MixOutputs() []Output {
	var outs []Output
	for _, out := range tx.Outputs {
		if out.Value == tx.Pairing.MixValue {
			outs = append(outs, out)
		}
	}
	return outs
}

// TakerGroup returns the unique group whose net value flow is negative:
// the participant that initiated the join and pays the fees.
func (tx *CoinJoinTx) TakerGroup() Group {
	for _, g := range tx.Pairing.Groups {
		if g.NetFlow() < 0 {
			return g
		}
	}
	// The pairer stores the taker first; this is only reached if every
	// group has a non-negative flow, which a valid pairing rules out.
	return tx.Pairing.Groups[0]
}

// MakerGroups returns all groups with a non-negative net value flow: the
// liquidity providers, each collecting a small fee.
func (tx *CoinJoinTx) MakerGroups() []Group {
	var makers []Group
	for _, g := range tx.Pairing.Groups {
		if g.NetFlow() >= 0 {
			makers = append(makers, g)
		}
	}
	return makers
}

// CoordinatorFee returns the total fee the taker paid to the makers: the
// taker group's paid-in value minus the miner fee.
func (tx *CoinJoinTx) CoordinatorFee() Amount {
	return tx.TakerGroup().FeePaid() - tx.Fee()
}

// Describe renders a side-by-side input/output listing of the pairing for
// human audit, one section per participant. Mix-value outputs are marked
// with a trailing "**". Purely presentational.
func (tx *CoinJoinTx) Describe() string {
	var b strings.Builder

	b.WriteString("[TAKER]\n")
	describeGroup(&b, tx.TakerGroup(), tx.Pairing.MixValue)
	fmt.Fprintf(&b, "  %s\n", formatLabel(fmt.Sprintf("(JMFEE=%s)", tx.CoordinatorFee())))
	fmt.Fprintf(&b, "  %s\n", formatLabel(fmt.Sprintf("(TXFEE=%s)", tx.Fee())))

	for i, maker := range tx.MakerGroups() {
		fmt.Fprintf(&b, "[MAKER %d]\n", i)
		describeGroup(&b, maker, tx.Pairing.MixValue)
		fmt.Fprintf(&b, "  %s  %s\n",
			strings.Repeat(" ", valueColumnWidth),
			formatLabel(fmt.Sprintf("(JMFEE=%s)", maker.NetFlow())))
	}

	return b.String()
}

// valueColumnWidth is the width of one value column in Describe output.
const valueColumnWidth = 23

// describeGroup writes the input and output values of one group side by
// side, padding the shorter column with blanks.
func describeGroup(b *strings.Builder, g Group, mixValue Amount) {
	rows := len(g.InputValues)
	if len(g.OutputValues) > rows {
		rows = len(g.OutputValues)
	}
	for i := 0; i < rows; i++ {
		left := strings.Repeat(" ", valueColumnWidth)
		if i < len(g.InputValues) {
			left = formatValue("IN ", g.InputValues[i], false)
		}
		right := strings.Repeat(" ", valueColumnWidth)
		if i < len(g.OutputValues) {
			v := g.OutputValues[i]
			right = formatValue("OUT", v, v == mixValue)
		}
		fmt.Fprintf(b, "  %s  %s\n", left, right)
	}
}

// formatValue renders one value cell, e.g. "OUT:        1.00000000 **".
// The prefix and the value field fill exactly valueColumnWidth so filled
// and blank cells line up; the mix mark overflows on the right column only.
func formatValue(prefix string, v Amount, mark bool) string {
	suffix := ""
	if mark {
		suffix = " **"
	}
	return fmt.Sprintf("%s: %18.8f%s", prefix, v.ToBTC(), suffix)
}

// formatLabel pads a free-form label to the value column width.
func formatLabel(s string) string {
	return fmt.Sprintf("%-*s", valueColumnWidth, s)
}
