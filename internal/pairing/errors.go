package pairing

import (
	"errors"
	"fmt"
)

// FailureReason identifies why a transaction could not be paired.
// Unpairable transactions are an expected, recoverable outcome of batch
// processing: callers skip them and continue.
type FailureReason int

const (
	// FailureNegativeFee: the input values sum to less than the output
	// values, which no confirmed transaction can do. Usually indicates bad
	// prevout resolution upstream.
	FailureNegativeFee FailureReason = iota

	// FailureUnusualChangeCount: the number of non-mix outputs is
	// incompatible with the detected party count.
	FailureUnusualChangeCount

	// FailureSearchExhausted: the priority-ordered search ran out of
	// (bucket, tolerance) candidates before consuming every value.
	FailureSearchExhausted

	// FailureTakerFeeOutOfRange: all makers were matched but the taker's
	// aggregate fee per maker falls outside the tolerance band.
	FailureTakerFeeOutOfRange
)

// String returns a human-readable description of the failure reason.
func (r FailureReason) String() string {
	switch r {
	case FailureNegativeFee:
		return "negative transaction fee"
	case FailureUnusualChangeCount:
		return "unusual change output count"
	case FailureSearchExhausted:
		return "search exhausted with unpairable values"
	case FailureTakerFeeOutOfRange:
		return "taker fees dont add up"
	default:
		return "unknown"
	}
}

// UnpairableError reports that a transaction's values could not be
// partitioned into participant groups. It carries a structured reason so
// batch processing can classify failures without string matching.
type UnpairableError struct {
	// Reason is the structured failure reason.
	Reason FailureReason

	// Detail optionally describes the leftover or offending values.
	Detail string
}

// Error implements the error interface.
func (e *UnpairableError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unpairable: %s (%s)", e.Reason, e.Detail)
	}
	return fmt.Sprintf("unpairable: %s", e.Reason)
}

// IsUnpairable reports whether err is an expected pairing failure, as
// opposed to a programming or infrastructure error.
func IsUnpairable(err error) bool {
	var ue *UnpairableError
	return errors.As(err, &ue)
}
