// Package main provides the entry point for the joinscan CLI.
//
// joinscan detects JoinMarket-style equal-output coinjoin transactions on
// the Bitcoin blockchain and measures how far their anonymity sets can be
// broken by cross-transaction linkage.
//
// Usage:
//
//	joinscan find <height-start> <height-end>
//	joinscan analyze
//	joinscan inspect <txid>
//
// See --help for all available options.
package main

// main is the entry point for joinscan.
func main() {
	Execute()
}
