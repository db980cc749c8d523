package linkage

import "sort"

// Summary aggregates the unmix scores of a corpus analysis. Transactions
// with an undefined level are counted but excluded from every statistic.
type Summary struct {
	// Transactions is the corpus size.
	Transactions int `json:"transactions"`

	// Scored is the number of transactions with a defined unmix level.
	Scored int `json:"scored"`

	// MakerAddresses is the size of the seeded maker address set.
	MakerAddresses int `json:"maker_addresses"`

	// Mean, Median, Min and Max summarize the defined unmix levels.
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	// FullyUnmixedFraction is the share of scored transactions whose
	// anonymity set collapsed to a single taker candidate (level 1).
	FullyUnmixedFraction float64 `json:"fully_unmixed_fraction"`
}

// Summary computes aggregate statistics over the analysis result.
func (r *Result) Summary() Summary {
	s := Summary{
		Transactions:   len(r.Marked),
		MakerAddresses: r.MakerAddresses.Len(),
	}

	var levels []float64
	fullyUnmixed := 0
	for _, score := range r.Scores {
		if !score.Defined {
			continue
		}
		levels = append(levels, score.Level)
		if score.Level == 1 {
			fullyUnmixed++
		}
	}
	s.Scored = len(levels)
	if len(levels) == 0 {
		return s
	}

	sort.Float64s(levels)
	s.Min = levels[0]
	s.Max = levels[len(levels)-1]

	var sum float64
	for _, l := range levels {
		sum += l
	}
	s.Mean = sum / float64(len(levels))

	mid := len(levels) / 2
	if len(levels)%2 == 1 {
		s.Median = levels[mid]
	} else {
		s.Median = (levels[mid-1] + levels[mid]) / 2
	}

	s.FullyUnmixedFraction = float64(fullyUnmixed) / float64(len(levels))
	return s
}
