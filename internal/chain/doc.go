// Package chain provides access to the blockchain source: a bitcoind node
// spoken to over JSON-RPC via the btcsuite rpcclient.
//
// The package exposes two things the analysis core depends on:
//   - Client: block and transaction lookup, one explicit handle per
//     construction (no global connection state). The underlying rpcclient
//     re-establishes HTTP connections transparently, so callers do not
//     manage reconnects.
//   - PrevOutResolver: resolution of a spent output's value and addresses
//     from its (txid, index) reference. CachingResolver decorates any
//     resolver with a concurrency-safe memoizing cache plus in-flight
//     deduplication, since the same prevout is frequently requested by
//     multiple inputs across a corpus.
//
// Resolution failures surface as definite errors; retry policy belongs to
// the caller, not this package.
package chain
