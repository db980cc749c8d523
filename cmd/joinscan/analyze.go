package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/joinscan/internal/chain"
	"github.com/nao1215/joinscan/internal/config"
	"github.com/nao1215/joinscan/internal/database"
	"github.com/nao1215/joinscan/internal/linkage"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the linkage analysis over the coinjoin corpus",
		Long: `Analyze runs the three-pass linkage analysis over the corpus built by
the find command:

  pass 1 links maker inputs back to the outputs they spend and collects
         the addresses found there into a corpus-wide maker set
  pass 2 marks every corpus output paying a known maker address
  pass 3 computes per-transaction unmix levels

It prints aggregate statistics and stores the marking results for the
inspect command. Pass 1 resolves previous outputs through bitcoind.

Examples:
  # Analyze the whole corpus
  joinscan analyze

  # Quick mode: only the 100 most recently found transactions
  joinscan analyze --limit 100

  # Write the summary as Markdown
  joinscan analyze --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runAnalyzeCmd,
	}

	addNodeFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().IntP("limit", "z", 0,
		"Quick mode: analyze only the last N corpus transactions (0 = all)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Limit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runAnalyze(ctx, cfg, logger)
}

// runAnalyze loads the corpus, runs the engine, stores the results and
// prints the summary.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.LoadRPCCredentials(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	corpus, err := db.LoadCorpus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d coinjoins loaded\n", corpus.Len())
	if corpus.Len() == 0 {
		return fmt.Errorf("corpus is empty: run `joinscan find` first")
	}
	if cfg.Limit > 0 {
		corpus = corpus.Tail(cfg.Limit)
		fmt.Printf("%d coinjoins to process (quick mode)\n", corpus.Len())
	}

	client, err := chain.NewClient(cfg.RPCAddress, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return err
	}
	defer client.Close()

	resolver := chain.NewCachingResolver(client)
	defer resolver.Close()

	engine := linkage.NewEngine(resolver,
		linkage.WithWorkers(cfg.Workers),
		linkage.WithLogger(logger),
	)

	startTime := time.Now()
	result, err := engine.Analyze(ctx, corpus)
	if err != nil {
		return err
	}
	fmt.Printf("analysis completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

	if err := db.SaveAnalysis(ctx, result); err != nil {
		return err
	}
	logger.Info("analysis results saved", "dir", cfg.DBDir)

	output, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = output.Close() }()

	writer := newReportWriter(cfg, output)
	if _, err := writer.WriteSummary(result.Summary()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
