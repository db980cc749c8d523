package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/joinscan/internal/linkage"
	"github.com/nao1215/joinscan/internal/model"
)

// testSummary returns a small, fully-populated summary.
func testSummary() linkage.Summary {
	return linkage.Summary{
		Transactions:         4,
		Scored:               3,
		MakerAddresses:       7,
		Mean:                 0.5,
		Median:               0.5,
		Min:                  0,
		Max:                  1,
		FullyUnmixedFraction: 1.0 / 3.0,
	}
}

// testMarkedTx returns a marked three-party coinjoin with one identified
// maker output.
func testMarkedTx() *model.MarkedCoinJoinTx {
	tx := &model.CoinJoinTx{
		Transaction: model.Transaction{
			ID: "reporttx",
			Inputs: []model.Input{
				{PrevTxID: "p1", PrevIndex: 0},
				{PrevTxID: "p2", PrevIndex: 0},
				{PrevTxID: "p3", PrevIndex: 0},
			},
			Outputs: []model.Output{
				{Value: 100_000_000, Addresses: []string{"maker-out"}},
				{Value: 100_000_000, Addresses: []string{"candidate1"}},
				{Value: 100_000_000, Addresses: []string{"candidate2"}},
				{Value: 10_001_000, Addresses: []string{"c1"}},
				{Value: 10_001_000, Addresses: []string{"c2"}},
				{Value: 4_000_000, Addresses: []string{"c3"}},
			},
			InputValues: []model.Amount{110_000_000, 110_000_000, 105_000_000},
		},
		Pairing: model.Pairing{
			MixValue: 100_000_000,
			Groups: []model.Group{
				{InputValues: []model.Amount{105_000_000}, OutputValues: []model.Amount{100_000_000, 4_000_000}},
				{InputValues: []model.Amount{110_000_000}, OutputValues: []model.Amount{100_000_000, 10_001_000}},
				{InputValues: []model.Amount{110_000_000}, OutputValues: []model.Amount{100_000_000, 10_001_000}},
			},
		},
	}
	marked := model.NewMarkedCoinJoinTx(tx)
	marked.AddMakerAddress("maker-out")
	return marked
}

// testTrace returns a spend trace for testMarkedTx: the maker output was
// consumed by a downstream corpus transaction, the other two mix outputs
// remain taker candidates.
func testTrace() *linkage.Trace {
	spending := testMarkedTx().CoinJoinTx
	spending.ID = "spendtx"
	return &linkage.Trace{
		Outputs: []linkage.OutputTrace{
			{
				Vout:           0,
				Value:          100_000_000,
				Addresses:      []string{"maker-out"},
				MakerAddresses: []string{"maker-out"},
				Spender:        &linkage.Spender{TxID: "spendtx", Vin: 1},
			},
			{Vout: 1, Value: 100_000_000, Addresses: []string{"candidate1"}},
			{Vout: 2, Value: 100_000_000, Addresses: []string{"candidate2"}},
		},
		Exploited: []linkage.ExploitedTx{{
			Tx:     spending,
			Values: []linkage.ExploitedValue{{Value: 100_000_000, Addresses: []string{"maker-out"}}},
		}},
	}
}

// TestSimpleWriter tests the plain-text report format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary lists the statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteSummary(testSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"TRANSACTIONS:", "WITH UNMIX LEVEL:", "MAKER ADDRESSES:",
			"AVG UNMIX LEVEL:", "MEDIAN UNMIX LEVEL:", "FULLY UNMIXED FRAC:",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
	})

	t.Run("summary omits statistics when nothing is scored", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteSummary(linkage.Summary{Transactions: 2}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "AVG UNMIX LEVEL") {
			t.Error("statistics printed for an unscored corpus")
		}
	})

	t.Run("transaction report shows the pairing and addresses", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewSimpleWriter(&buf).WriteTransaction(testMarkedTx(), score, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"TX reporttx", "[TAKER]", "[MAKER 0]",
			"POSSIBLE TAKER ADDRESSES:", "candidate1", "candidate2",
			"KNOWN MAKER ADDRESSES:", "maker-out",
			"UNMIX LEVEL: 0.50",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
		if strings.Contains(out, "MIX OUTPUT ATTRIBUTION") {
			t.Error("attribution printed without a trace")
		}
	})

	t.Run("trace adds attribution and the exploited transactions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewSimpleWriter(&buf).WriteTransaction(testMarkedTx(), score, testTrace()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"MIX OUTPUT ATTRIBUTION:",
			"vout 0 MAKER: maker-out",
			"spent by tx spendtx, vin 1",
			"vout 1 TAKER: candidate1",
			"vout 2 TAKER: candidate2",
			"TRANSACTIONS EXPLOITED:",
			"TX spendtx",
			"VALUES EXPLOITED:",
			"spent from addr maker-out",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
	})

	t.Run("unspent maker output is called out", func(t *testing.T) {
		t.Parallel()

		trace := testTrace()
		trace.Outputs[0].Spender = nil
		trace.Exploited = nil

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewSimpleWriter(&buf).WriteTransaction(testMarkedTx(), score, trace); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "not spent within the corpus") {
			t.Error("missing the unspent note")
		}
		if strings.Contains(out, "TRANSACTIONS EXPLOITED:") {
			t.Error("exploited section printed without exploited transactions")
		}
	})

	t.Run("undefined level is spelled out", func(t *testing.T) {
		t.Parallel()

		marked := testMarkedTx()
		marked.AddMakerAddress("candidate1")
		marked.AddMakerAddress("candidate2")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteTransaction(marked, linkage.UnmixScore{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "UNMIX LEVEL: undefined") {
			t.Error("expected the undefined level to be spelled out")
		}
	})
}

// TestJSONWriter tests the machine-readable report format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary is valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded linkage.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded != testSummary() {
			t.Errorf("summary changed across serialization: %+v", decoded)
		}
	})

	t.Run("defined level serializes as a number", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewJSONWriter(&buf).WriteTransaction(testMarkedTx(), score, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			UnmixLevel *float64 `json:"unmix_level"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.UnmixLevel == nil || *decoded.UnmixLevel != 0.5 {
			t.Errorf("expected unmix_level 0.5, got %v", decoded.UnmixLevel)
		}
	})

	t.Run("undefined level serializes as null", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteTransaction(testMarkedTx(), linkage.UnmixScore{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		level, present := decoded["unmix_level"]
		if !present {
			t.Fatal("unmix_level missing")
		}
		if level != nil {
			t.Errorf("expected null unmix_level, got %v", level)
		}
	})

	t.Run("trace serializes with spenders and exploited transactions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewJSONWriter(&buf).WriteTransaction(testMarkedTx(), score, testTrace()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Trace *linkage.Trace `json:"trace"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Trace == nil {
			t.Fatal("trace missing")
		}
		if len(decoded.Trace.Outputs) != 3 {
			t.Errorf("expected 3 traced outputs, got %d", len(decoded.Trace.Outputs))
		}
		spender := decoded.Trace.Outputs[0].Spender
		if spender == nil || spender.TxID != "spendtx" || spender.Vin != 1 {
			t.Errorf("unexpected spender %v", spender)
		}
		if len(decoded.Trace.Exploited) != 1 || decoded.Trace.Exploited[0].Tx.ID != "spendtx" {
			t.Errorf("unexpected exploited listing %v", decoded.Trace.Exploited)
		}
	})

	t.Run("nil trace is omitted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteTransaction(testMarkedTx(), linkage.UnmixScore{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if _, present := decoded["trace"]; present {
			t.Error("trace key present without a trace")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter tests the Markdown report format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary renders a table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSummary(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "# JoinMarket Unmixing Report") {
			t.Error("missing title")
		}
		for _, want := range []string{"Transactions", "Average unmix level", "Fully unmixed fraction"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
	})

	t.Run("transaction report carries the pairing listing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewMarkdownWriter(&buf).WriteTransaction(testMarkedTx(), score, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Transaction reporttx", "[TAKER]",
			"## Known Maker Addresses", "maker-out",
			"## Possible Taker Addresses", "candidate1",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
	})

	t.Run("trace renders the attribution table and exploited transactions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		score := linkage.UnmixScore{Level: 0.5, Defined: true}
		if _, err := NewMarkdownWriter(&buf).WriteTransaction(testMarkedTx(), score, testTrace()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"## Mix Output Attribution",
			"maker", "spendtx vin 1", "taker",
			"## Transactions Exploited",
			"### Transaction spendtx",
			"spent from maker-out",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in output", want)
			}
		}
	})
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewSimpleWriter(&b))

	n, err := mw.WriteSummary(testSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != b.String() {
		t.Error("writers received different output")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("expected %d total bytes, got %d", a.Len()+b.Len(), n)
	}
}
