package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/joinscan/internal/chain"
	"github.com/nao1215/joinscan/internal/config"
	"github.com/nao1215/joinscan/internal/database"
	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
	"github.com/nao1215/joinscan/internal/pairing"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <txid>",
		Short: "Examine one coinjoin transaction in detail",
		Long: `Inspect prints the participant-level view of one coinjoin transaction:
the input/output groups of each party, which output addresses are known
maker addresses, the remaining taker candidates, and the unmix level.
When maker outputs were identified, the report also attributes every mix
output and lists the downstream transactions whose inputs revealed them.

The transaction is read from the corpus database. Stored marking results
from the latest analyze run are used when available; a transaction that is
not in the corpus is fetched from bitcoind and paired on the fly.

Examples:
  # Inspect a transaction from the analyzed corpus
  joinscan inspect 8a6bcec4...

  # Markdown output to a file
  joinscan inspect --markdown -o tx.md 8a6bcec4...`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	addNodeFlags(cmd)
	addReportFlags(cmd)
	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runInspect(ctx, cfg, logger)
}

// runInspect locates the transaction and writes its report.
func runInspect(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	txid := cfg.Args[0]

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	marked, score, err := loadMarked(ctx, db, cfg, logger, txid)
	if err != nil {
		return err
	}

	trace, err := traceAgainstCorpus(ctx, db, marked)
	if err != nil {
		return err
	}

	output, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = output.Close() }()

	writer := newReportWriter(cfg, output)
	if _, err := writer.WriteTransaction(marked, score, trace); err != nil {
		return fmt.Errorf("failed to write transaction report: %w", err)
	}
	return nil
}

// traceAgainstCorpus follows the transaction's maker outputs to the stored
// corpus transactions spending them. Without maker annotations there is
// nothing to trace.
func traceAgainstCorpus(ctx context.Context, db *database.CorpusDB, marked *model.MarkedCoinJoinTx) (*linkage.Trace, error) {
	if marked.MakerAddresses.Len() == 0 {
		return nil, nil
	}
	corpus, err := db.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus for spend tracing: %w", err)
	}
	return linkage.TraceTransaction(marked, corpus, linkage.NewSpendIndex(corpus)), nil
}

// loadMarked fetches the marked transaction from, in order of preference,
// the stored analysis results, the corpus marked against the stored maker
// set, or the node directly.
func loadMarked(ctx context.Context, db *database.CorpusDB, cfg *config.Config, logger *slog.Logger, txid string) (*model.MarkedCoinJoinTx, linkage.UnmixScore, error) {
	marked, score, err := db.GetMarked(ctx, txid)
	if err == nil {
		return marked, score, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, linkage.UnmixScore{}, err
	}

	makerAddresses, err := db.LoadMakerAddresses(ctx)
	if err != nil {
		return nil, linkage.UnmixScore{}, err
	}
	if makerAddresses.Len() > 0 {
		logger.Info("no stored marking for transaction, marking against the stored maker set", "txid", txid)
	}

	jmtx, err := db.GetJoinTx(ctx, txid)
	if errors.Is(err, database.ErrNotFound) {
		logger.Info("transaction not in corpus, fetching from node", "txid", txid)
		jmtx, err = fetchAndPair(ctx, cfg, txid)
	}
	if err != nil {
		return nil, linkage.UnmixScore{}, err
	}

	marked = linkage.MarkTransaction(jmtx, makerAddresses)
	level, ok := marked.UnmixLevel()
	return marked, linkage.UnmixScore{Level: level, Defined: ok}, nil
}

// fetchAndPair pulls one transaction from bitcoind and pairs it.
func fetchAndPair(ctx context.Context, cfg *config.Config, txid string) (*model.CoinJoinTx, error) {
	if err := cfg.LoadRPCCredentials(); err != nil {
		return nil, err
	}

	client, err := chain.NewClient(cfg.RPCAddress, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	tx, err := client.GetTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}
	if err := chain.ResolveInputValues(ctx, client, tx); err != nil {
		return nil, err
	}
	return pairing.FromTransaction(tx)
}
