// Package classify implements the trivial-reject filter that decides whether
// a transaction is structurally plausible as a JoinMarket-style coinjoin.
//
// The check is a pure function over the input/output value lists: it detects
// the modal "mix" output value and rejects anything whose shape cannot be a
// multi-party equal-output transaction. It exists to keep the expensive
// pairing search away from the vast majority of ordinary transactions, and
// to bound the pairer's worst-case combinatorial cost via the input cap.
package classify
