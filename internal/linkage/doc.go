// Package linkage implements the three-pass corpus analysis that estimates
// how much of each coinjoin's anonymity set has been broken.
//
// Pass 1 (seed) exploits the fact that a maker's funding input was itself
// an output the same maker controlled earlier: every address of those spent
// outputs is a maker address. Pass 2 (mark) propagates the frozen maker set
// onto every transaction's outputs, with co-output propagation: addresses
// appearing together in one output script are assumed co-controlled.
// Pass 3 (score) turns each marked transaction into an unmix level.
//
// Passes 1, 2 and 3 are each embarrassingly parallel per transaction and
// run on an errgroup worker pool; a strict barrier separates pass 1 from
// pass 2 so marking only ever sees the fully merged maker set. Results are
// reported in first-seen corpus order, so repeated runs over the same
// corpus are reproducible regardless of worker scheduling.
package linkage
