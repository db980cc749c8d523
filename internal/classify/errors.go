package classify

import "fmt"

// RejectionError reports that a transaction failed the trivial-reject
// check. It is an expected, recoverable outcome: batch processing skips
// rejected transactions and continues.
type RejectionError struct {
	// TxID is the rejected transaction's id, when known.
	TxID string

	// Reason is the structural check that failed.
	Reason Reason
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e.TxID != "" {
		return fmt.Sprintf("not a coinjoin candidate: %s (tx %s)", e.Reason, e.TxID)
	}
	return fmt.Sprintf("not a coinjoin candidate: %s", e.Reason)
}
