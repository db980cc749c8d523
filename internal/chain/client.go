package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"

	"github.com/nao1215/joinscan/internal/model"
)

// Client is a handle to a bitcoind node over JSON-RPC.
//
// Design decision: the handle is passed explicitly to whatever needs it
// rather than held in package-level state. Lifecycle is the caller's:
// construct, use, Close.
type Client struct {
	rpc *rpcclient.Client
}

// NewClient connects to bitcoind at the given address using HTTP POST mode
// JSON-RPC, the mode bitcoind serves. TLS is disabled because the node is
// expected on localhost (bitcoind does not speak TLS natively).
func NewClient(address, user, password string) (*Client, error) {
	rpc, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         address,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}
	return &Client{rpc: rpc}, nil
}

// Close shuts down the RPC client and releases its resources.
func (c *Client) Close() {
	c.rpc.Shutdown()
}

// BlockCount returns the height of the most-work fully-validated chain.
func (c *Client) BlockCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.rpc.GetBlockCount()
}

// GetBlockByHeight fetches the block at the given height.
func (c *Client) GetBlockByHeight(ctx context.Context, height int64) (*model.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := c.rpc.GetBlockHash(height)
	if err != nil {
		return nil, fmt.Errorf("failed to get block hash at height %d: %w", height, err)
	}
	return c.getBlock(hash)
}

// GetBlockByID fetches the block with the given hash.
func (c *Client) GetBlockByID(ctx context.Context, id string) (*model.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(id)
	if err != nil {
		return nil, fmt.Errorf("invalid block id %q: %w", id, err)
	}
	return c.getBlock(hash)
}

// getBlock fetches a verbose block and converts it to the model view.
func (c *Client) getBlock(hash *chainhash.Hash) (*model.Block, error) {
	block, err := c.rpc.GetBlockVerbose(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", hash, err)
	}
	return &model.Block{
		Height: block.Height,
		ID:     block.Hash,
		Time:   time.Unix(block.Time, 0).UTC(),
		TxIDs:  block.Tx,
		NextID: block.NextHash,
	}, nil
}

// GetTransaction fetches a transaction and converts it to the model view.
// Input values are not resolved here; see ResolveInputValues.
func (c *Client) GetTransaction(ctx context.Context, txid string) (*model.Transaction, error) {
	raw, err := c.getRawTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		ID:      raw.Txid,
		Inputs:  make([]model.Input, 0, len(raw.Vin)),
		Outputs: make([]model.Output, 0, len(raw.Vout)),
	}
	for _, vin := range raw.Vin {
		// Coinbase inputs spend nothing; they keep an empty prevout
		// reference and disqualify the transaction during resolution.
		tx.Inputs = append(tx.Inputs, model.Input{
			PrevTxID:  vin.Txid,
			PrevIndex: vin.Vout,
		})
	}
	for _, vout := range raw.Vout {
		out, err := convertOutput(vout)
		if err != nil {
			return nil, fmt.Errorf("transaction %s output %d: %w", txid, vout.N, err)
		}
		tx.Outputs = append(tx.Outputs, out)
	}
	return tx, nil
}

// ResolveOutput implements PrevOutResolver against the node: it fetches the
// referenced transaction and returns the output being spent.
func (c *Client) ResolveOutput(ctx context.Context, txid string, index uint32) (model.Output, error) {
	raw, err := c.getRawTransaction(ctx, txid)
	if err != nil {
		return model.Output{}, err
	}
	if int(index) >= len(raw.Vout) {
		return model.Output{}, fmt.Errorf("transaction %s has no output %d", txid, index)
	}
	out, err := convertOutput(raw.Vout[index])
	if err != nil {
		return model.Output{}, fmt.Errorf("transaction %s output %d: %w", txid, index, err)
	}
	return out, nil
}

// getRawTransaction fetches a transaction in verbose (decoded) form.
func (c *Client) getRawTransaction(ctx context.Context, txid string) (*btcjson.TxRawResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", txid, err)
	}
	raw, err := c.rpc.GetRawTransactionVerbose(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", txid, err)
	}
	return raw, nil
}

// convertOutput converts a decoded output to the model view, turning the
// node's floating-point BTC value into exact satoshis exactly once.
func convertOutput(vout btcjson.Vout) (model.Output, error) {
	value, err := btcutil.NewAmount(vout.Value)
	if err != nil {
		return model.Output{}, fmt.Errorf("invalid output value %v: %w", vout.Value, err)
	}
	return model.Output{
		Value:     value,
		Addresses: outputAddresses(vout.ScriptPubKey),
	}, nil
}

// outputAddresses extracts the addresses of an output script. Older nodes
// report an "addresses" list, newer ones a single "address"; scripts that
// encode no address (e.g. OP_RETURN) yield an empty list.
func outputAddresses(spk btcjson.ScriptPubKeyResult) []string {
	if len(spk.Addresses) > 0 {
		return spk.Addresses
	}
	if spk.Address != "" {
		return []string{spk.Address}
	}
	return nil
}
