package model

import "time"

// Block is the view of a block the scanner consumes: identity, position in
// the chain, and the ids of the transactions it contains.
type Block struct {
	// Height is the block height.
	Height int64 `json:"height"`

	// ID is the block hash (hex).
	ID string `json:"id"`

	// Time is the block timestamp.
	Time time.Time `json:"time"`

	// TxIDs are the ids of the transactions in the block, in block order.
	TxIDs []string `json:"txids"`

	// NextID is the hash of the following block, empty at the chain tip.
	NextID string `json:"next_id,omitempty"`
}
