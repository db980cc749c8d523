package classify

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/nao1215/joinscan/internal/model"
)

// Structural limits for coinjoin candidates.
const (
	// MinInputs is the minimum input count, exclusive. A coinjoin needs at
	// least one input per party.
	MinInputs = 3

	// MinOutputs is the minimum output count, exclusive.
	MinOutputs = 3

	// MaxInputs is the hard cap on input count. It bounds the worst-case
	// combinatorial cost of the pairing search, which is exponential in the
	// number of inputs.
	MaxInputs = 25

	// MinMixValue is the smallest mix value worth analyzing: 0.01 BTC.
	// Smaller equal-output transactions are usually dust consolidation.
	MinMixValue = model.Amount(1_000_000)

	// minMixFrequency is the minimum frequency of the mix value, exclusive.
	// A frequency of 2 would mean a 2-party coinjoin, which provides so
	// little anonymity that it is unlikely to be a real join.
	minMixFrequency = 2
)

// Reason identifies why a transaction was rejected as a coinjoin candidate.
type Reason int

const (
	// ReasonNone means the transaction was not rejected.
	ReasonNone Reason = iota

	// ReasonInsufficientInputs: too few inputs for a multi-party join.
	ReasonInsufficientInputs

	// ReasonInsufficientOutputs: too few outputs for a multi-party join.
	ReasonInsufficientOutputs

	// ReasonNoUniqueMixValue: no modal output value with frequency above
	// the minimum, or two values tie for the mode.
	ReasonNoUniqueMixValue

	// ReasonMixValueTooSmall: the mix value is below MinMixValue.
	ReasonMixValueTooSmall

	// ReasonUnusualOutputCount: the output count is incompatible with one
	// change output per maker plus an optional taker change.
	ReasonUnusualOutputCount

	// ReasonTooManyInputs: the input count exceeds MaxInputs.
	ReasonTooManyInputs
)

// String returns a human-readable description of the rejection reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "not rejected"
	case ReasonInsufficientInputs:
		return "insufficient inputs"
	case ReasonInsufficientOutputs:
		return "insufficient outputs"
	case ReasonNoUniqueMixValue:
		return "no unique mix value"
	case ReasonMixValueTooSmall:
		return "mix value too small"
	case ReasonUnusualOutputCount:
		return "unusual number of outputs"
	case ReasonTooManyInputs:
		return "too many inputs"
	default:
		return "unknown"
	}
}

// Check decides whether a transaction with the given input/output values is
// structurally plausible as a coinjoin. It returns true when the
// transaction is a candidate, or false plus the specific rejection reason.
//
// Pure function: no side effects, identical input yields identical output.
func Check(inValues, outValues []model.Amount) (bool, Reason) {
	if len(inValues) <= MinInputs {
		return false, ReasonInsufficientInputs
	}
	if len(outValues) <= MinOutputs {
		return false, ReasonInsufficientOutputs
	}

	mixValue, parties, ok := MixValue(outValues)
	if !ok {
		return false, ReasonNoUniqueMixValue
	}
	if mixValue < MinMixValue {
		return false, ReasonMixValueTooSmall
	}

	// A coinjoin has, besides the equal outputs, one change output per
	// maker and optionally a change output for the taker.
	if len(outValues) < 2*parties-1 || len(outValues) > 2*parties {
		return false, ReasonUnusualOutputCount
	}

	if len(inValues) > MaxInputs {
		return false, ReasonTooManyInputs
	}

	return true, ReasonNone
}

// MixValue detects the mix value of a transaction: the unique modal output
// value. It returns the value, its frequency (the party count), and whether
// a usable mix value exists. Detection fails when the modal frequency does
// not exceed minMixFrequency or when another value ties the mode.
func MixValue(outValues []model.Amount) (model.Amount, int, bool) {
	counts := make(map[btcutil.Amount]int, len(outValues))
	for _, v := range outValues {
		counts[v]++
	}

	var (
		mode      model.Amount
		modeCount int
		tied      bool
	)
	for v, n := range counts {
		switch {
		case n > modeCount:
			mode, modeCount, tied = v, n, false
		case n == modeCount:
			tied = true
		}
	}

	if modeCount <= minMixFrequency || tied {
		return 0, 0, false
	}
	return mode, modeCount, true
}
