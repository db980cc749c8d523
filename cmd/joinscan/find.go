package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/joinscan/internal/chain"
	"github.com/nao1215/joinscan/internal/classify"
	"github.com/nao1215/joinscan/internal/config"
	"github.com/nao1215/joinscan/internal/database"
	"github.com/nao1215/joinscan/internal/model"
	"github.com/nao1215/joinscan/internal/pairing"
)

// NewFindCmd creates the find command.
func NewFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [args...]",
		Short: "Scan blockchain transactions for coinjoin transactions",
		Long: `Find scans blockchain transactions, detects JoinMarket-style coinjoins,
and adds them to the corpus database for later analysis.

The arguments select what to scan. All arguments must be of the same kind:
- one or two block heights (two heights scan the half-open range [start, end))
- block ids (64 hex characters starting with 0000000)
- transaction ids (64 hex characters)
- files containing one transaction id per line

Examples:
  # Scan a range of blocks
  joinscan find 500000 500100

  # Check specific transactions
  joinscan find 8a6bcec4...  f31ec2f4...

  # Check transaction ids listed in a file
  joinscan find txids.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFindCmd,
	}

	addNodeFlags(cmd)
	return cmd
}

// runFindCmd executes the find command.
func runFindCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runFind(ctx, cfg, logger)
}

// argType classifies a positional argument of the find command.
type argType int

const (
	argTypeBlockID argType = iota
	argTypeBlockHeight
	argTypeTxID
	argTypeFile
)

// maxBlockHeight bounds what a numeric argument may mean as a height.
const maxBlockHeight = 1_000_000_000

// detectArgType classifies one argument. An existing file path wins over
// everything; 64 hex characters are a block id when they carry the
// proof-of-work zero prefix and a transaction id otherwise; small integers
// are block heights.
func detectArgType(arg string) (argType, error) {
	if _, err := os.Stat(arg); err == nil {
		return argTypeFile, nil
	}
	if len(arg) == 64 {
		if arg[:7] == "0000000" {
			return argTypeBlockID, nil
		}
		return argTypeTxID, nil
	}
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil && n >= 0 && n < maxBlockHeight {
		return argTypeBlockHeight, nil
	}
	return 0, fmt.Errorf("argument not understood: %q", arg)
}

// detectArgsType classifies all arguments and requires them to agree.
func detectArgsType(args []string) (argType, error) {
	t, err := detectArgType(args[0])
	if err != nil {
		return 0, err
	}
	for _, arg := range args[1:] {
		at, err := detectArgType(arg)
		if err != nil {
			return 0, err
		}
		if at != t {
			return 0, fmt.Errorf("ambiguous arguments: %q does not match the kind of %q", arg, args[0])
		}
	}
	return t, nil
}

// runFind collects the candidate transaction ids and scans them.
func runFind(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.LoadRPCCredentials(); err != nil {
		return err
	}

	client, err := chain.NewClient(cfg.RPCAddress, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return err
	}
	defer client.Close()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	logger.Info("database opened", "dir", cfg.DBDir)

	fmt.Println("collecting txids...")
	txids, err := collectTxIDs(ctx, client, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%d txs found\n", len(txids))

	fmt.Println("looking for coinjoins...")
	startTime := time.Now()
	found, err := scanTxIDs(ctx, client, db, cfg, logger, txids)
	if err != nil {
		return err
	}
	fmt.Printf("%d coinjoins found in %s\n", found, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// collectTxIDs expands the find arguments into the transaction ids to scan.
func collectTxIDs(ctx context.Context, client *chain.Client, cfg *config.Config) ([]string, error) {
	t, err := detectArgsType(cfg.Args)
	if err != nil {
		return nil, err
	}

	switch t {
	case argTypeTxID:
		return cfg.Args, nil

	case argTypeFile:
		var txids []string
		for _, path := range cfg.Args {
			ids, err := readTxIDFile(path)
			if err != nil {
				return nil, err
			}
			txids = append(txids, ids...)
		}
		return txids, nil

	case argTypeBlockID:
		var txids []string
		for _, id := range cfg.Args {
			block, err := client.GetBlockByID(ctx, id)
			if err != nil {
				return nil, err
			}
			txids = append(txids, block.TxIDs...)
		}
		return txids, nil

	case argTypeBlockHeight:
		heights, err := heightRange(cfg.Args)
		if err != nil {
			return nil, err
		}
		return collectBlockRangeTxIDs(ctx, client, cfg.Workers, heights)

	default:
		return nil, fmt.Errorf("unhandled argument kind %d", t)
	}
}

// heightRange expands height arguments into the heights to scan: a single
// height, or the half-open range [start, end).
func heightRange(args []string) ([]int64, error) {
	h1, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid block height %q: %w", args[0], err)
	}
	switch len(args) {
	case 1:
		return []int64{h1}, nil
	case 2:
		h2, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid block height %q: %w", args[1], err)
		}
		heights := make([]int64, 0, int(max(h2-h1, 0)))
		for h := h1; h < h2; h++ {
			heights = append(heights, h)
		}
		return heights, nil
	default:
		return nil, errors.New("block heights should be passed as a start/end range")
	}
}

// collectBlockRangeTxIDs fetches the blocks concurrently and concatenates
// their transaction ids in height order.
func collectBlockRangeTxIDs(ctx context.Context, client *chain.Client, workers int, heights []int64) ([]string, error) {
	perBlock := make([][]string, len(heights))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, h := range heights {
		i, h := i, h
		g.Go(func() error {
			block, err := client.GetBlockByHeight(ctx, h)
			if err != nil {
				return err
			}
			perBlock[i] = block.TxIDs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var txids []string
	for _, ids := range perBlock {
		txids = append(txids, ids...)
	}
	return txids, nil
}

// readTxIDFile reads one transaction id per line, skipping blank lines.
func readTxIDFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's own arguments
	if err != nil {
		return nil, fmt.Errorf("failed to open txid file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var txids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if txid := strings.TrimSpace(scanner.Text()); txid != "" {
			txids = append(txids, txid)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read txid file %s: %w", path, err)
	}
	return txids, nil
}

// scanTxIDs checks each candidate transaction concurrently, printing and
// storing every detected coinjoin. Returns the number of coinjoins found.
func scanTxIDs(ctx context.Context, client *chain.Client, db *database.CorpusDB, cfg *config.Config, logger *slog.Logger, txids []string) (int, error) {
	resolver := chain.NewCachingResolver(client)
	defer resolver.Close()

	var (
		mu    sync.Mutex
		found int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, txid := range txids {
		txid := txid
		g.Go(func() error {
			jmtx, err := scanOneTx(ctx, client, resolver, txid)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("failed to check transaction", "txid", txid, "error", err)
				return nil
			}
			if jmtx == nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			found++
			fmt.Printf("JMTX %s\n", jmtx.ID)
			return db.SaveJoinTx(ctx, jmtx)
		})
	}
	if err := g.Wait(); err != nil {
		return found, err
	}
	return found, nil
}

// scanOneTx fetches and checks one transaction. A nil result with nil error
// means the transaction is not a coinjoin; prevout resolution is only paid
// for transactions that pass the cheap structural checks.
func scanOneTx(ctx context.Context, client *chain.Client, resolver chain.PrevOutResolver, txid string) (*model.CoinJoinTx, error) {
	tx, err := client.GetTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	if len(tx.Inputs) <= classify.MinInputs || len(tx.Inputs) > classify.MaxInputs ||
		len(tx.Outputs) <= classify.MinOutputs {
		return nil, nil
	}
	for _, in := range tx.Inputs {
		if in.PrevTxID == "" {
			return nil, nil
		}
	}

	if err := chain.ResolveInputValues(ctx, resolver, tx); err != nil {
		return nil, err
	}

	jmtx, err := pairing.FromTransaction(tx)
	if err != nil {
		var rejected *classify.RejectionError
		if errors.As(err, &rejected) || pairing.IsUnpairable(err) {
			return nil, nil
		}
		return nil, err
	}
	return jmtx, nil
}
