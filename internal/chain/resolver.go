package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/joinscan/internal/model"
)

// PrevOutResolver resolves the output being spent by an input: its value
// and the addresses it pays to. A resolution must end in either a definite
// output or a definite error; retry and backoff are the implementation's
// concern, never the caller's.
type PrevOutResolver interface {
	// ResolveOutput returns output `index` of transaction `txid`.
	ResolveOutput(ctx context.Context, txid string, index uint32) (model.Output, error)
}

// ErrCoinbaseInput is returned when input-value resolution meets a coinbase
// input, which spends no prevout. Coinbase transactions are never coinjoin
// candidates.
var ErrCoinbaseInput = errors.New("coinbase input has no previous output")

// ResolveInputValues fills tx.InputValues by resolving every input's
// prevout through the resolver. It fails on the first unresolvable input;
// partially resolved transactions are never produced.
func ResolveInputValues(ctx context.Context, resolver PrevOutResolver, tx *model.Transaction) error {
	values := make([]model.Amount, len(tx.Inputs))
	for i, in := range tx.Inputs {
		if in.PrevTxID == "" {
			return fmt.Errorf("transaction %s input %d: %w", tx.ID, i, ErrCoinbaseInput)
		}
		out, err := resolver.ResolveOutput(ctx, in.PrevTxID, in.PrevIndex)
		if err != nil {
			return fmt.Errorf("transaction %s input %d: %w", tx.ID, i, err)
		}
		values[i] = out.Value
	}
	tx.InputValues = values
	return nil
}
