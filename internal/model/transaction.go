package model

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
)

// Amount is an exact monetary value in integer satoshis.
//
// Design decision: We alias btcutil.Amount rather than defining our own
// fixed-point type. It is already an int64 satoshi count with exact
// arithmetic, and it round-trips through JSON as a plain integer, which
// keeps persisted corpora free of float formatting artifacts.
type Amount = btcutil.Amount

// Input references the output being spent: a prior transaction id plus the
// index of the output within it. The spent value is never stored here; it
// lives in the prevout and is resolved externally.
type Input struct {
	// PrevTxID is the id of the transaction whose output is being spent.
	// Empty for coinbase inputs, which never appear in a coinjoin candidate.
	PrevTxID string `json:"prev_txid"`

	// PrevIndex is the output index within the previous transaction.
	PrevIndex uint32 `json:"prev_index"`
}

// Output is a transaction output: a value plus the addresses encoded in its
// script. An output may carry zero, one, or multiple addresses (multisig).
type Output struct {
	// Value is the output value in satoshis.
	Value Amount `json:"value"`

	// Addresses are the addresses the output script pays to.
	Addresses []string `json:"addresses,omitempty"`
}

// ErrNegativeFee is returned by Transaction.Validate when the resolved input
// values sum to less than the output values. A confirmed transaction cannot
// destroy value, so this indicates bad or incomplete prevout resolution.
var ErrNegativeFee = errors.New("transaction fee is negative")

// Transaction is an immutable transaction as consumed by the analysis:
// ordered inputs and outputs plus the externally-resolved input values.
//
// InputValues is parallel to Inputs and is populated exactly once, at
// construction, from the prevout resolver. Storing the snapshot here lets a
// persisted corpus be re-analyzed without a live blockchain source.
type Transaction struct {
	// ID is the transaction id (hex).
	ID string `json:"id"`

	// Inputs are the transaction inputs in wire order.
	Inputs []Input `json:"inputs"`

	// Outputs are the transaction outputs in wire order.
	Outputs []Output `json:"outputs"`

	// InputValues are the resolved values of the spent prevouts, parallel
	// to Inputs.
	InputValues []Amount `json:"input_values"`
}

// OutputValues returns the output values in wire order.
func (tx *Transaction) OutputValues() []Amount {
	values := make([]Amount, len(tx.Outputs))
	for i, out := range tx.Outputs {
		values[i] = out.Value
	}
	return values
}

// TotalInputValue returns the sum of all resolved input values.
func (tx *Transaction) TotalInputValue() Amount {
	var total Amount
	for _, v := range tx.InputValues {
		total += v
	}
	return total
}

// TotalOutputValue returns the sum of all output values.
func (tx *Transaction) TotalOutputValue() Amount {
	var total Amount
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// Fee returns the miner fee: total input value minus total output value.
func (tx *Transaction) Fee() Amount {
	return tx.TotalInputValue() - tx.TotalOutputValue()
}

// Validate checks the internal consistency of the transaction: input values
// must be resolved for every input, and the fee must be non-negative.
func (tx *Transaction) Validate() error {
	if len(tx.InputValues) != len(tx.Inputs) {
		return errors.New("input values not resolved for every input")
	}
	if tx.Fee() < 0 {
		return ErrNegativeFee
	}
	return nil
}
