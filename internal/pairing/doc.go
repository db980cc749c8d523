// Package pairing implements the core coinjoin matching algorithm: it
// partitions a transaction's input and output values into per-participant
// groups under fee-tolerance constraints.
//
// The search matches maker groups greedily: candidate input subsets
// ("buckets") of increasing size are tried against the change outputs under
// an increasing fee-tolerance band, in a fixed priority order that favors
// small buckets first and small tolerances second. Every accepted group
// removes its values from play and restarts the scan, so real matches are
// found early even though the search space is exponential in the input
// count (which the classifier caps).
//
// Determinism: the (bucket, tolerance) priority order is a precomputed sort
// by an integer cost function, input combinations are enumerated in
// lexicographic index order, and ties between change outputs are broken by
// minimal excess. Two runs on identical input produce identical groupings.
//
// Expected failures are reported as *UnpairableError carrying a reason
// code; the package never panics on unpairable transactions.
package pairing
