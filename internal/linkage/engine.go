package linkage

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/joinscan/internal/chain"
	"github.com/nao1215/joinscan/internal/model"
)

// DefaultWorkers is the default per-pass concurrency.
const DefaultWorkers = 8

// Engine runs the three-pass linkage analysis over a corpus.
type Engine struct {
	// resolver resolves the outputs spent by maker inputs. It is shared
	// across workers and must be safe for concurrent use; wrap the node
	// client in a chain.CachingResolver.
	resolver chain.PrevOutResolver

	// workers is the maximum per-pass concurrency.
	workers int

	// logger is used for pass-level progress and per-transaction warnings.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the maximum number of concurrent per-transaction tasks.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine that resolves prevouts through resolver.
func NewEngine(resolver chain.PrevOutResolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// UnmixScore is the pass-3 result for one transaction. Defined is false
// when no taker candidate remains (every mix output attributed to a maker);
// that case is a valid result, excluded from aggregates, never zero.
type UnmixScore struct {
	// Level is the unmix level in [0, 1]. Only meaningful when Defined.
	Level float64 `json:"level"`

	// Defined reports whether the level exists for this transaction.
	Defined bool `json:"defined"`
}

// Result is the outcome of a corpus analysis: the marked transactions and
// their scores in first-seen corpus order, plus the frozen maker set.
type Result struct {
	// Marked are the annotated transactions, parallel to Scores.
	Marked []*model.MarkedCoinJoinTx

	// Scores are the per-transaction unmix scores, parallel to Marked.
	Scores []UnmixScore

	// MakerAddresses is the corpus-wide maker address set seeded in pass 1.
	MakerAddresses model.AddressSet
}

// Analyze runs the three passes over the corpus. The only error it returns
// is context cancellation: unresolvable prevouts and other per-transaction
// problems are logged and skipped, never fatal.
func (e *Engine) Analyze(ctx context.Context, corpus *Corpus) (*Result, error) {
	txs := corpus.Transactions()

	e.logger.Info("pass 1: linking maker inputs", "transactions", len(txs), "workers", e.workers)
	makerAddresses, err := e.seed(ctx, txs)
	if err != nil {
		return nil, err
	}
	e.logger.Info("pass 1 complete", "maker_addresses", makerAddresses.Len())

	// Barrier: the maker set is complete and frozen from here on. Pass 2
	// and 3 only read it.

	e.logger.Info("pass 2: marking maker outputs", "transactions", len(txs))
	marked, err := e.mark(ctx, txs, makerAddresses)
	if err != nil {
		return nil, err
	}

	e.logger.Info("pass 3: scoring unmix levels", "transactions", len(txs))
	scores, err := e.score(ctx, marked)
	if err != nil {
		return nil, err
	}

	return &Result{
		Marked:         marked,
		Scores:         scores,
		MakerAddresses: makerAddresses,
	}, nil
}

// seed runs pass 1: for every maker input of every transaction, resolve the
// output it spends and collect that output's addresses. Workers build local
// sets merged under a mutex; set union is commutative, so the merged result
// is independent of completion order.
func (e *Engine) seed(ctx context.Context, txs []*model.CoinJoinTx) (model.AddressSet, error) {
	makerAddresses := model.NewAddressSet()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			local, err := e.seedTx(ctx, tx)
			if err != nil {
				return err
			}
			mu.Lock()
			makerAddresses.Union(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return makerAddresses, nil
}

// seedTx extracts the maker addresses observable from one transaction.
//
// Maker inputs are matched to physical inputs by value. Values may repeat
// across participants, so each physical input is consumed at most once;
// when equal values repeat, any assignment yields the same address set
// because only set membership is used downstream.
func (e *Engine) seedTx(ctx context.Context, tx *model.CoinJoinTx) (model.AddressSet, error) {
	addrs := model.NewAddressSet()
	consumed := make([]bool, len(tx.InputValues))

	for _, maker := range tx.MakerGroups() {
		for _, value := range maker.InputValues {
			idx := -1
			for i, v := range tx.InputValues {
				if !consumed[i] && v == value {
					idx = i
					break
				}
			}
			if idx < 0 {
				// Cannot happen for a valid pairing; tolerate it anyway.
				e.logger.Warn("maker input value not found among inputs",
					"txid", tx.ID, "value", value)
				continue
			}
			consumed[idx] = true

			in := tx.Inputs[idx]
			out, err := e.resolver.ResolveOutput(ctx, in.PrevTxID, in.PrevIndex)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				e.logger.Warn("prevout unavailable, skipping input",
					"txid", tx.ID, "prev_txid", in.PrevTxID, "prev_index", in.PrevIndex, "error", err)
				continue
			}
			for _, a := range out.Addresses {
				addrs.Add(a)
			}
		}
	}
	return addrs, nil
}

// mark runs pass 2 against the frozen maker set. Each worker writes only
// its own slot of the result slice, so no locking is needed.
func (e *Engine) mark(ctx context.Context, txs []*model.CoinJoinTx, makerAddresses model.AddressSet) ([]*model.MarkedCoinJoinTx, error) {
	marked := make([]*model.MarkedCoinJoinTx, len(txs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			marked[i] = MarkTransaction(tx, makerAddresses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return marked, nil
}

// MarkTransaction annotates one transaction against a maker address set,
// applying the co-output propagation rule: if any address of an output is a
// known maker address, every address sharing that output is one too.
func MarkTransaction(tx *model.CoinJoinTx, makerAddresses model.AddressSet) *model.MarkedCoinJoinTx {
	marked := model.NewMarkedCoinJoinTx(tx)
	for _, out := range tx.Outputs {
		if makerAddresses.Intersects(out.Addresses) {
			for _, a := range out.Addresses {
				marked.AddMakerAddress(a)
			}
		}
	}
	return marked
}

// score runs pass 3: each transaction's unmix level, computed independently.
func (e *Engine) score(ctx context.Context, marked []*model.MarkedCoinJoinTx) ([]UnmixScore, error) {
	scores := make([]UnmixScore, len(marked))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, tx := range marked {
		i, tx := i, tx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			level, ok := tx.UnmixLevel()
			scores[i] = UnmixScore{Level: level, Defined: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
