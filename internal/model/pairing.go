package model

// Group is one participant's share of a coinjoin: the input values the
// participant contributed and the output values paid back to them.
//
// Maker groups hold exactly one mix-value output and one change output.
// The taker group absorbs everything left after the makers are matched, so
// it may hold more outputs and any number of inputs.
type Group struct {
	// InputValues are the values of the inputs attributed to this participant.
	InputValues []Amount `json:"input_values"`

	// OutputValues are the values of the outputs attributed to this
	// participant. For maker groups the mix output comes first, then change.
	OutputValues []Amount `json:"output_values"`
}

// SumInputs returns the total value this participant paid in.
func (g Group) SumInputs() Amount {
	var total Amount
	for _, v := range g.InputValues {
		total += v
	}
	return total
}

// SumOutputs returns the total value paid back to this participant.
func (g Group) SumOutputs() Amount {
	var total Amount
	for _, v := range g.OutputValues {
		total += v
	}
	return total
}

// NetFlow returns outputs minus inputs for this participant. Positive for
// makers (they collect a fee), negative for the taker (it pays the fees).
func (g Group) NetFlow() Amount {
	return g.SumOutputs() - g.SumInputs()
}

// FeePaid returns inputs minus outputs: what this participant paid into the
// transaction. The taker's FeePaid covers the miner fee plus all maker fees.
func (g Group) FeePaid() Amount {
	return -g.NetFlow()
}

// Pairing is a validated partition of a transaction's inputs and outputs
// into per-participant groups. The groups are disjoint and their union
// equals the transaction's input and output value multisets exactly.
//
// A Pairing is computed once per transaction and never mutated. The taker
// group is stored first.
type Pairing struct {
	// MixValue is the common equal-output value defining the anonymity set.
	MixValue Amount `json:"mix_value"`

	// Groups are the participant groups, taker first.
	Groups []Group `json:"groups"`
}

// NumParties returns the number of participants (groups) in the coinjoin.
func (p *Pairing) NumParties() int {
	return len(p.Groups)
}
