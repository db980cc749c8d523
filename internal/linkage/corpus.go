package linkage

import "github.com/nao1215/joinscan/internal/model"

// Corpus is an ordered collection of paired coinjoin transactions keyed by
// transaction id. Iteration follows first-seen order; adding a transaction
// whose id is already present replaces it in place, keeping its original
// position. This is what makes repeated analyses of the same corpus
// reproducible.
type Corpus struct {
	order []string
	txs   map[string]*model.CoinJoinTx
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{txs: make(map[string]*model.CoinJoinTx)}
}

// Add inserts a transaction, overwriting any earlier occurrence of the same
// id without changing its position.
func (c *Corpus) Add(tx *model.CoinJoinTx) {
	if _, ok := c.txs[tx.ID]; !ok {
		c.order = append(c.order, tx.ID)
	}
	c.txs[tx.ID] = tx
}

// Get returns the transaction with the given id, if present.
func (c *Corpus) Get(id string) (*model.CoinJoinTx, bool) {
	tx, ok := c.txs[id]
	return tx, ok
}

// Len returns the number of transactions in the corpus.
func (c *Corpus) Len() int {
	return len(c.order)
}

// Transactions returns the transactions in first-seen order.
func (c *Corpus) Transactions() []*model.CoinJoinTx {
	txs := make([]*model.CoinJoinTx, len(c.order))
	for i, id := range c.order {
		txs[i] = c.txs[id]
	}
	return txs
}

// Tail returns a corpus holding only the last n transactions, in order.
// Used by quick mode to bound analysis time while debugging.
func (c *Corpus) Tail(n int) *Corpus {
	if n <= 0 || n >= len(c.order) {
		return c
	}
	tail := NewCorpus()
	for _, id := range c.order[len(c.order)-n:] {
		tail.Add(c.txs[id])
	}
	return tail
}
