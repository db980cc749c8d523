package model

// MarkedCoinJoinTx is a CoinJoinTx annotated with the subset of its output
// addresses known to belong to makers. It is created fresh per corpus
// analysis run and never mutated after the marking pass.
type MarkedCoinJoinTx struct {
	*CoinJoinTx

	// MakerAddresses are the addresses of this transaction known to belong
	// to makers.
	MakerAddresses AddressSet `json:"maker_addresses"`
}

// NewMarkedCoinJoinTx creates an annotation wrapper with an empty
// maker-address set.
func NewMarkedCoinJoinTx(tx *CoinJoinTx) *MarkedCoinJoinTx {
	return &MarkedCoinJoinTx{
		CoinJoinTx:     tx,
		MakerAddresses: NewAddressSet(),
	}
}

// AddMakerAddress records an address of this transaction as maker-owned.
func (tx *MarkedCoinJoinTx) AddMakerAddress(addr string) {
	tx.MakerAddresses.Add(addr)
}

// PossibleTakerOutputs returns the mix-value outputs whose address set does
// not intersect the known maker addresses. These are the outputs that could
// still belong to the taker.
func (tx *MarkedCoinJoinTx) PossibleTakerOutputs() []Output {
	var outs []Output
	for _, out := range tx.MixOutputs() {
		if !tx.MakerAddresses.Intersects(out.Addresses) {
			outs = append(outs, out)
		}
	}
	return outs
}

// PossibleTakerAddresses returns the address lists of the possible taker
// outputs.
func (tx *MarkedCoinJoinTx) PossibleTakerAddresses() [][]string {
	var addrs [][]string
	for _, out := range tx.PossibleTakerOutputs() {
		addrs = append(addrs, out.Addresses)
	}
	return addrs
}

// UnmixLevel reports how far this transaction's anonymity set has been
// broken, in [0, 1]: 0 means no makers were identified, 1 means exactly one
// taker candidate remains (full maker deanonymization).
//
// The level is undefined (ok=false) when every mix output is attributable
// to a known maker, leaving no taker candidate at all. Callers must not
// coerce that case to zero; it is excluded from aggregate statistics.
func (tx *MarkedCoinJoinTx) UnmixLevel() (level float64, ok bool) {
	possibleTakers := len(tx.PossibleTakerOutputs())
	if possibleTakers == 0 {
		return 0, false
	}
	parties := tx.NumParties()
	knownMakers := parties - possibleTakers
	return float64(knownMakers) / float64(parties-1), true
}
