package linkage

import "github.com/nao1215/joinscan/internal/model"

// Spender identifies the corpus transaction input that consumes an outpoint.
type Spender struct {
	// TxID is the id of the spending transaction.
	TxID string `json:"txid"`

	// Vin is the index of the consuming input within that transaction.
	Vin int `json:"vin"`
}

// SpendIndex maps every outpoint spent inside a corpus to the input that
// consumes it. Keys reuse model.Input, which is exactly an outpoint
// reference.
type SpendIndex map[model.Input]Spender

// NewSpendIndex indexes the inputs of every corpus transaction. A coinjoin
// never spends the same outpoint twice, so the mapping is unambiguous.
func NewSpendIndex(corpus *Corpus) SpendIndex {
	index := make(SpendIndex)
	for _, tx := range corpus.Transactions() {
		for vin, in := range tx.Inputs {
			index[in] = Spender{TxID: tx.ID, Vin: vin}
		}
	}
	return index
}

// OutputTrace attributes one mix output of an inspected transaction. An
// output with known maker addresses was deanonymized by a later corpus
// transaction spending it; one without remains a taker candidate.
type OutputTrace struct {
	// Vout is the output's index in the transaction.
	Vout int `json:"vout"`

	// Value is the output value, always the mix value.
	Value model.Amount `json:"value"`

	// Addresses are all addresses of the output.
	Addresses []string `json:"addresses"`

	// MakerAddresses is the subset of Addresses known to belong to makers.
	// Empty means the output is a taker candidate.
	MakerAddresses []string `json:"maker_addresses,omitempty"`

	// Spender is the corpus transaction input spending this output, when
	// the spend happened inside the corpus.
	Spender *Spender `json:"spender,omitempty"`
}

// ExploitedValue is one maker output value followed into a downstream
// transaction.
type ExploitedValue struct {
	// Value is the exploited output value.
	Value model.Amount `json:"value"`

	// Addresses are the maker addresses the value was spent from.
	Addresses []string `json:"addresses"`
}

// ExploitedTx is a downstream corpus transaction whose inputs revealed
// maker outputs of the inspected transaction.
type ExploitedTx struct {
	// Tx is the downstream transaction with its pairing.
	Tx *model.CoinJoinTx `json:"transaction"`

	// Values are the maker outputs it spends, in vout order.
	Values []ExploitedValue `json:"values"`
}

// Trace links the mix outputs of one transaction to the downstream corpus
// transactions that spend them.
type Trace struct {
	// Outputs attributes each mix output, in wire order.
	Outputs []OutputTrace `json:"outputs"`

	// Exploited lists the spending transactions, ordered by the first
	// output of the inspected transaction each one consumes.
	Exploited []ExploitedTx `json:"exploited,omitempty"`
}

// TraceTransaction attributes each mix output of tx as maker or taker and
// follows the maker outputs to the corpus transactions spending them. The
// index must have been built over the same corpus.
func TraceTransaction(tx *model.MarkedCoinJoinTx, corpus *Corpus, index SpendIndex) *Trace {
	trace := &Trace{}
	var spenderOrder []string
	valuesPerSpender := make(map[string][]ExploitedValue)

	for vout, out := range tx.Outputs {
		if out.Value != tx.MixValue() {
			continue
		}
		ot := OutputTrace{Vout: vout, Value: out.Value, Addresses: out.Addresses}
		for _, addr := range out.Addresses {
			if tx.MakerAddresses.Contains(addr) {
				ot.MakerAddresses = append(ot.MakerAddresses, addr)
			}
		}
		if len(ot.MakerAddresses) > 0 {
			outpoint := model.Input{PrevTxID: tx.ID, PrevIndex: uint32(vout)}
			if spender, ok := index[outpoint]; ok {
				ot.Spender = &spender
				if _, seen := valuesPerSpender[spender.TxID]; !seen {
					spenderOrder = append(spenderOrder, spender.TxID)
				}
				valuesPerSpender[spender.TxID] = append(valuesPerSpender[spender.TxID],
					ExploitedValue{Value: out.Value, Addresses: ot.MakerAddresses})
			}
		}
		trace.Outputs = append(trace.Outputs, ot)
	}

	for _, txid := range spenderOrder {
		spendingTx, ok := corpus.Get(txid)
		if !ok {
			continue
		}
		trace.Exploited = append(trace.Exploited, ExploitedTx{
			Tx:     spendingTx,
			Values: valuesPerSpender[txid],
		})
	}
	return trace
}
