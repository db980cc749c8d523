// Package model defines the core data structures used throughout joinscan.
//
// This package contains the following main types:
//   - Transaction: an immutable transaction with resolved input values
//   - Pairing: a partition of a transaction's inputs/outputs into participant groups
//   - CoinJoinTx: a paired transaction exposing taker/maker views and fees
//   - MarkedCoinJoinTx: a CoinJoinTx annotated with known maker addresses
//   - AddressSet: the corpus-wide set of addresses attributed to makers
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (classify, pairing, linkage, chain, report)
// need to use these types, so centralizing them prevents import cycles.
//
// All monetary values are btcutil.Amount (integer satoshis). Floating point
// only exists at the RPC boundary where bitcoind reports BTC values; it is
// converted exactly once and never used for comparisons, so tolerance checks
// are deterministic.
package model
