package linkage

import (
	"reflect"
	"testing"

	"github.com/nao1215/joinscan/internal/model"
)

// tracedCorpus builds a two-transaction corpus: txB spends the first two
// mix outputs of txA (the maker outputs) with its maker inputs.
func tracedCorpus() (*Corpus, *model.CoinJoinTx) {
	txA := makeJoinTx("txA",
		[3]string{"srcA1", "srcA2", "srcA3"},
		[3][]string{{"makerA1"}, {"makerA2"}, {"takerA"}})
	txB := makeJoinTx("txB",
		[3]string{"txA", "txA", "srcB3"},
		[3][]string{{"mixB1"}, {"mixB2"}, {"mixB3"}})
	txB.Inputs[1].PrevIndex = 1

	corpus := NewCorpus()
	corpus.Add(txA)
	corpus.Add(txB)
	return corpus, txA
}

// TestNewSpendIndex tests outpoint-to-spender indexing over a corpus.
func TestNewSpendIndex(t *testing.T) {
	t.Parallel()

	corpus, _ := tracedCorpus()
	index := NewSpendIndex(corpus)

	t.Run("maps spent outpoints to the consuming input", func(t *testing.T) {
		t.Parallel()

		want := map[model.Input]Spender{
			{PrevTxID: "txA", PrevIndex: 0}:   {TxID: "txB", Vin: 0},
			{PrevTxID: "txA", PrevIndex: 1}:   {TxID: "txB", Vin: 1},
			{PrevTxID: "srcB3", PrevIndex: 0}: {TxID: "txB", Vin: 2},
		}
		for outpoint, spender := range want {
			got, ok := index[outpoint]
			if !ok {
				t.Errorf("outpoint %v not indexed", outpoint)
				continue
			}
			if got != spender {
				t.Errorf("outpoint %v: expected spender %v, got %v", outpoint, spender, got)
			}
		}
	})

	t.Run("omits outpoints nothing in the corpus spends", func(t *testing.T) {
		t.Parallel()

		if _, ok := index[model.Input{PrevTxID: "txB", PrevIndex: 0}]; ok {
			t.Error("unspent outpoint present in the index")
		}
	})
}

// TestTraceTransaction tests per-output attribution and the exploited
// transaction listing.
func TestTraceTransaction(t *testing.T) {
	t.Parallel()

	corpus, txA := tracedCorpus()
	index := NewSpendIndex(corpus)

	marked := model.NewMarkedCoinJoinTx(txA)
	marked.AddMakerAddress("makerA1")
	marked.AddMakerAddress("makerA2")

	trace := TraceTransaction(marked, corpus, index)

	t.Run("attributes every mix output in wire order", func(t *testing.T) {
		t.Parallel()

		if len(trace.Outputs) != 3 {
			t.Fatalf("expected 3 traced outputs, got %d", len(trace.Outputs))
		}
		for i, out := range trace.Outputs {
			if out.Vout != i {
				t.Errorf("output %d: expected vout %d, got %d", i, i, out.Vout)
			}
			if out.Value != 100_000_000 {
				t.Errorf("output %d: unexpected value %d", i, out.Value)
			}
		}
	})

	t.Run("maker outputs carry their spender", func(t *testing.T) {
		t.Parallel()

		for vout, wantAddr := range map[int]string{0: "makerA1", 1: "makerA2"} {
			out := trace.Outputs[vout]
			if !reflect.DeepEqual(out.MakerAddresses, []string{wantAddr}) {
				t.Errorf("vout %d: expected maker addresses [%s], got %v", vout, wantAddr, out.MakerAddresses)
			}
			if out.Spender == nil {
				t.Fatalf("vout %d: expected a spender", vout)
			}
			if out.Spender.TxID != "txB" || out.Spender.Vin != vout {
				t.Errorf("vout %d: unexpected spender %v", vout, out.Spender)
			}
		}
	})

	t.Run("taker candidate has neither maker addresses nor spender", func(t *testing.T) {
		t.Parallel()

		out := trace.Outputs[2]
		if len(out.MakerAddresses) != 0 {
			t.Errorf("unexpected maker addresses %v", out.MakerAddresses)
		}
		if out.Spender != nil {
			t.Errorf("unexpected spender %v", out.Spender)
		}
	})

	t.Run("lists the exploited transaction with its values", func(t *testing.T) {
		t.Parallel()

		if len(trace.Exploited) != 1 {
			t.Fatalf("expected 1 exploited transaction, got %d", len(trace.Exploited))
		}
		exploited := trace.Exploited[0]
		if exploited.Tx.ID != "txB" {
			t.Errorf("expected txB, got %s", exploited.Tx.ID)
		}
		want := []ExploitedValue{
			{Value: 100_000_000, Addresses: []string{"makerA1"}},
			{Value: 100_000_000, Addresses: []string{"makerA2"}},
		}
		if !reflect.DeepEqual(exploited.Values, want) {
			t.Errorf("expected values %v, got %v", want, exploited.Values)
		}
	})

	t.Run("maker output unspent in the corpus stays without spender", func(t *testing.T) {
		t.Parallel()

		alone := NewCorpus()
		alone.Add(txA)
		got := TraceTransaction(marked, alone, NewSpendIndex(alone))

		if got.Outputs[0].Spender != nil {
			t.Errorf("unexpected spender %v", got.Outputs[0].Spender)
		}
		if len(got.Exploited) != 0 {
			t.Errorf("expected no exploited transactions, got %d", len(got.Exploited))
		}
	})

	t.Run("orders exploited transactions by first consumed output", func(t *testing.T) {
		t.Parallel()

		// txC consumes vout 0 and txB vout 1, so txC is listed first even
		// though txB precedes it in the corpus.
		txB := makeJoinTx("txB",
			[3]string{"txA", "srcB2", "srcB3"},
			[3][]string{{"mixB1"}, {"mixB2"}, {"mixB3"}})
		txB.Inputs[0].PrevIndex = 1
		txC := makeJoinTx("txC",
			[3]string{"txA", "srcC2", "srcC3"},
			[3][]string{{"mixC1"}, {"mixC2"}, {"mixC3"}})

		corpus := NewCorpus()
		corpus.Add(txA)
		corpus.Add(txB)
		corpus.Add(txC)
		got := TraceTransaction(marked, corpus, NewSpendIndex(corpus))

		if len(got.Exploited) != 2 {
			t.Fatalf("expected 2 exploited transactions, got %d", len(got.Exploited))
		}
		if got.Exploited[0].Tx.ID != "txC" || got.Exploited[1].Tx.ID != "txB" {
			t.Errorf("unexpected order: %s, %s", got.Exploited[0].Tx.ID, got.Exploited[1].Tx.ID)
		}
	})
}
