package pairing

// forEachCombination calls fn with every k-element index combination of
// [0, n) in lexicographic order, stopping early when fn returns false.
// The slice passed to fn is reused between calls and must not be retained.
//
// Lexicographic order is part of the pairer's determinism contract: the
// first acceptable combination in this order wins.
func forEachCombination(n, k int, fn func(indexes []int) bool) {
	if k <= 0 || k > n {
		return
	}

	indexes := make([]int, k)
	for i := range indexes {
		indexes[i] = i
	}

	for {
		if !fn(indexes) {
			return
		}

		// Advance to the next combination: find the rightmost index that
		// can still move, bump it, and reset everything to its right.
		i := k - 1
		for i >= 0 && indexes[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		indexes[i]++
		for j := i + 1; j < k; j++ {
			indexes[j] = indexes[j-1] + 1
		}
	}
}
