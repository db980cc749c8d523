package pairing

import (
	"sort"

	"github.com/nao1215/joinscan/internal/model"
)

// Fee-tolerance constants, in satoshis.
const (
	// FeeFloor is the minimum plausible maker fee, exclusive: 0.000001 BTC.
	// A matched group must earn strictly more than this.
	FeeFloor = model.Amount(100)

	// FeeCeiling is the maximum plausible maker fee, exclusive: 0.03 BTC.
	FeeCeiling = model.Amount(3_000_000)

	// toleranceBase is the smallest tolerance band: FeeFloor * 2^4.
	toleranceBase = FeeFloor << 4

	// costBucketWeight scales the bucket-size term of the priority cost
	// relative to the tolerance term. Growing the bucket size is ten times
	// as expensive as widening the tolerance band, so the search prefers
	// few-input matches at loose tolerances over many-input matches at
	// tight ones.
	costBucketWeight = 10
)

// tolerances returns the geometric ladder of fee-tolerance bands:
// FeeFloor * 2^k starting at k=4, capped strictly below FeeCeiling.
func tolerances() []model.Amount {
	var ts []model.Amount
	for t := toleranceBase; t < FeeCeiling; t <<= 1 {
		ts = append(ts, t)
	}
	return ts
}

// candidate is one (bucket size, tolerance) pair of the search.
type candidate struct {
	bucketSize int
	tolerance  model.Amount
}

// priorityOrder returns every (bucket size, tolerance) pair sorted by the
// integer cost costBucketWeight*b² + t², where b and t are the zero-based
// bucket and tolerance indexes. Ties are broken by smaller bucket size,
// then smaller tolerance, so the order is fully determined by its inputs
// and free of floating-point growth artifacts.
func priorityOrder(maxBucketSize int) []candidate {
	ts := tolerances()

	type ranked struct {
		candidate
		cost      int
		bucketIdx int
		tolIdx    int
	}
	items := make([]ranked, 0, maxBucketSize*len(ts))
	for b := 0; b < maxBucketSize; b++ {
		for t := range ts {
			items = append(items, ranked{
				candidate: candidate{bucketSize: b + 1, tolerance: ts[t]},
				cost:      costBucketWeight*b*b + t*t,
				bucketIdx: b,
				tolIdx:    t,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].cost != items[j].cost {
			return items[i].cost < items[j].cost
		}
		if items[i].bucketIdx != items[j].bucketIdx {
			return items[i].bucketIdx < items[j].bucketIdx
		}
		return items[i].tolIdx < items[j].tolIdx
	})

	order := make([]candidate, len(items))
	for i, it := range items {
		order[i] = it.candidate
	}
	return order
}
