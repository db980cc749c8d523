package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for joinscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinscan",
		Short: "Forensic analyzer for JoinMarket-style coinjoin transactions",
		Long: `joinscan detects JoinMarket-style equal-output coinjoin transactions
on the Bitcoin blockchain and measures how far their anonymity sets can be
broken by linking maker inputs across transactions.

Typical workflow:
  1. joinscan find 500000 500100    # scan blocks, build the corpus
  2. joinscan analyze               # run the linkage analysis
  3. joinscan inspect <txid>        # examine one transaction in detail

find and analyze talk to a local bitcoind node over JSON-RPC.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFindCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
