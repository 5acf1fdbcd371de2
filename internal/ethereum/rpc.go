// Package ethereum provides read-only JSON-RPC access to an EVM
// execution node over HTTP or WebSocket.
package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Client is the read surface the analysis engine needs from a node.
type Client interface {
	// CodeAt returns the deployed bytecode at addr. Empty for wallets.
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)

	// BalanceAt returns the current balance of addr in wei.
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)

	// LatestBlockNumber returns the current chain head number.
	LatestBlockNumber(ctx context.Context) (int64, error)

	// BlockByNumber returns header fields for the given block number.
	// Returns domain.ErrNotFound if the node has no such block.
	BlockByNumber(ctx context.Context, number int64) (*Block, error)

	// CallContract executes a read-only call against to at the latest block.
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)

	// FilterLogs returns event logs matching the filter.
	FilterLogs(ctx context.Context, q LogFilter) ([]Log, error)
}

// Block is the subset of header fields the engine uses.
type Block struct {
	Number    int64
	Timestamp int64
}

// LogFilter selects event logs by block range, emitter and topics.
type LogFilter struct {
	FromBlock int64
	ToBlock   int64
	Address   common.Address
	Topics    []common.Hash
}

// Log is one emitted event log.
type Log struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	TxHash      common.Hash
	BlockNumber int64
}
