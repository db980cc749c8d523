package pairing

import (
	"fmt"
	"slices"
	"sort"

	"github.com/nao1215/joinscan/internal/classify"
	"github.com/nao1215/joinscan/internal/model"
)

// Pair partitions the given input and output values into exactly N
// participant groups, where N is the frequency of mixValue among the
// outputs. It returns the pairing with the taker group first, or a
// *UnpairableError when no valid partition exists.
//
// The caller is expected to have run classify.Check first; Pair revalidates
// the structural preconditions it depends on.
func Pair(inValues, outValues []model.Amount, mixValue model.Amount) (*model.Pairing, error) {
	inputs := slices.Clone(inValues)

	// Split outputs into the mix outputs and the remaining change values.
	var change []model.Amount
	numParties := 0
	for _, v := range outValues {
		if v == mixValue {
			numParties++
		} else {
			change = append(change, v)
		}
	}
	sort.Slice(change, func(i, j int) bool { return change[i] < change[j] })
	mixLeft := numParties

	var totalIn, totalOut model.Amount
	for _, v := range inputs {
		totalIn += v
	}
	for _, v := range outValues {
		totalOut += v
	}
	txFee := totalIn - totalOut
	if txFee < 0 {
		return nil, &UnpairableError{
			Reason: FailureNegativeFee,
			Detail: fmt.Sprintf("fee=%s", txFee),
		}
	}

	// One change output per maker, optionally one for the taker.
	if len(change) < numParties-1 || len(change) > numParties {
		return nil, &UnpairableError{
			Reason: FailureUnusualChangeCount,
			Detail: fmt.Sprintf("%d change outputs for %d parties", len(change), numParties),
		}
	}

	// Maker matching. The taker cannot be matched directly (its fee is
	// negative), so it is always the last group standing.
	order := priorityOrder(len(inputs) - numParties + 1)
	var groups []model.Group
	remaining := numParties

	for remaining > 1 {
		matchIdxs, matchChange, found := findMakerGroup(order, inputs, change, mixValue)
		if !found {
			break
		}

		group := model.Group{
			InputValues:  make([]model.Amount, len(matchIdxs)),
			OutputValues: []model.Amount{mixValue, change[matchChange]},
		}
		for i, idx := range matchIdxs {
			group.InputValues[i] = inputs[idx]
		}

		// Remove the matched values from play and restart the scan.
		for i := len(matchIdxs) - 1; i >= 0; i-- {
			inputs = slices.Delete(inputs, matchIdxs[i], matchIdxs[i]+1)
		}
		change = slices.Delete(change, matchChange, matchChange+1)
		mixLeft--
		remaining--
		groups = append(groups, group)
	}

	if remaining == 1 {
		// The taker absorbs all unmatched inputs and outputs.
		taker := model.Group{
			InputValues:  inputs,
			OutputValues: make([]model.Amount, 0, mixLeft+len(change)),
		}
		for i := 0; i < mixLeft; i++ {
			taker.OutputValues = append(taker.OutputValues, mixValue)
		}
		taker.OutputValues = append(taker.OutputValues, change...)

		// The taker's paid-in value, net of the miner fee, is what the
		// makers collectively earned. Per maker it must sit inside the
		// same tolerance band used for matching. Multiplying the bounds
		// keeps the comparison exact.
		//
		// After a successful maker phase the identity
		// coordFee = sum of accepted maker excesses holds, and each excess
		// already lies inside (FeeFloor, FeeCeiling), so this check only
		// fires on degenerate calls that bypass classification, such as a
		// single mix output leaving no maker to pay.
		coordFee := taker.FeePaid() - txFee
		parties := model.Amount(numParties - 1)
		if coordFee <= FeeFloor*parties || coordFee >= FeeCeiling*parties {
			return nil, &UnpairableError{
				Reason: FailureTakerFeeOutOfRange,
				Detail: fmt.Sprintf("aggregate fee %s over %d makers", coordFee, numParties-1),
			}
		}

		groups = append([]model.Group{taker}, groups...)
		return &model.Pairing{MixValue: mixValue, Groups: groups}, nil
	}

	return nil, &UnpairableError{
		Reason: FailureSearchExhausted,
		Detail: fmt.Sprintf("%d inputs, %d mix and %d change outputs left", len(inputs), mixLeft, len(change)),
	}
}

// findMakerGroup walks the (bucket, tolerance) priority order and returns
// the first acceptable match: the input index subset and the change output
// index whose excess over the bucket lies in (FeeFloor, tolerance). Among
// change outputs acceptable for one bucket, the minimal excess wins.
func findMakerGroup(order []candidate, inputs, change []model.Amount, mixValue model.Amount) (idxs []int, changeIdx int, found bool) {
	for _, cand := range order {
		if cand.bucketSize > len(inputs) {
			continue
		}
		forEachCombination(len(inputs), cand.bucketSize, func(combo []int) bool {
			var bucket model.Amount
			for _, i := range combo {
				bucket += inputs[i]
			}

			best := cand.tolerance
			bestIdx := -1
			for ci, cv := range change {
				excess := cv + mixValue - bucket
				if excess > FeeFloor && excess < best {
					best = excess
					bestIdx = ci
				}
			}
			if bestIdx < 0 {
				return true
			}
			idxs = slices.Clone(combo)
			changeIdx = bestIdx
			found = true
			return false
		})
		if found {
			return idxs, changeIdx, true
		}
	}
	return nil, 0, false
}

// FromTransaction classifies and pairs a resolved transaction in one step,
// producing the participant-level view. Classifier rejections surface as
// *classify.RejectionError, pairing failures as *UnpairableError; both are
// expected per-transaction outcomes.
func FromTransaction(tx *model.Transaction) (*model.CoinJoinTx, error) {
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}

	inValues := tx.InputValues
	outValues := tx.OutputValues()

	if ok, reason := classify.Check(inValues, outValues); !ok {
		return nil, &classify.RejectionError{TxID: tx.ID, Reason: reason}
	}

	mixValue, _, _ := classify.MixValue(outValues)
	pairing, err := Pair(inValues, outValues, mixValue)
	if err != nil {
		return nil, err
	}

	return &model.CoinJoinTx{Transaction: *tx, Pairing: *pairing}, nil
}
