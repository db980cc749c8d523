// Package report renders analysis results in multiple formats: a simple
// human-readable text report, JSON for tool integration, and Markdown for
// documentation and sharing.
//
// Two report shapes exist: the corpus summary (aggregate unmix statistics)
// and the single-transaction report (the side-by-side pairing listing plus
// known maker and possible taker addresses).
package report
