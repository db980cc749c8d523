// Package database provides SQLite-based persistence for the three corpus
// artifacts: the paired transaction corpus, the marked corpus with unmix
// scores, and the maker address set.
//
// Transactions are stored as JSON payloads keyed by txid; the table's rowid
// preserves first-seen insertion order and UPSERTs keep it, so a reloaded
// corpus iterates in the same order it was built. This is what makes
// save/load/re-analyze cycles byte-reproducible.
package database
