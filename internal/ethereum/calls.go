package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"ethyr-engine/internal/domain"
)

// caller abstracts the transport so the same typed methods serve the HTTP
// and WebSocket clients.
type caller interface {
	call(ctx context.Context, method string, params []interface{}, result interface{}) error
}

// rpcBlock is the header subset decoded from eth_getBlockByNumber.
type rpcBlock struct {
	Number    hexutil.Uint64 `json:"number"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// rpcLog is one entry decoded from eth_getLogs.
type rpcLog struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	TxHash      common.Hash    `json:"transactionHash"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
}

func codeAt(ctx context.Context, c caller, addr common.Address) ([]byte, error) {
	var code hexutil.Bytes
	if err := c.call(ctx, "eth_getCode", []interface{}{addr, "latest"}, &code); err != nil {
		return nil, err
	}
	return code, nil
}

func balanceAt(ctx context.Context, c caller, addr common.Address) (*big.Int, error) {
	var balance hexutil.Big
	if err := c.call(ctx, "eth_getBalance", []interface{}{addr, "latest"}, &balance); err != nil {
		return nil, err
	}
	return (*big.Int)(&balance), nil
}

func latestBlockNumber(ctx context.Context, c caller) (int64, error) {
	var number hexutil.Uint64
	if err := c.call(ctx, "eth_blockNumber", nil, &number); err != nil {
		return 0, err
	}
	return int64(number), nil
}

func blockByNumber(ctx context.Context, c caller, number int64) (*Block, error) {
	var raw *rpcBlock
	params := []interface{}{hexutil.EncodeUint64(uint64(number)), false}
	if err := c.call(ctx, "eth_getBlockByNumber", params, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: block %d", domain.ErrNotFound, number)
	}
	return &Block{
		Number:    int64(raw.Number),
		Timestamp: int64(raw.Timestamp),
	}, nil
}

func callContract(ctx context.Context, c caller, to common.Address, data []byte) ([]byte, error) {
	msg := map[string]interface{}{
		"to":   to,
		"data": hexutil.Bytes(data),
	}
	var out hexutil.Bytes
	if err := c.call(ctx, "eth_call", []interface{}{msg, "latest"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func filterLogs(ctx context.Context, c caller, q LogFilter) ([]Log, error) {
	filter := map[string]interface{}{
		"fromBlock": hexutil.EncodeUint64(uint64(q.FromBlock)),
		"toBlock":   hexutil.EncodeUint64(uint64(q.ToBlock)),
		"address":   q.Address,
	}
	if len(q.Topics) > 0 {
		filter["topics"] = q.Topics
	}

	var raw []rpcLog
	if err := c.call(ctx, "eth_getLogs", []interface{}{filter}, &raw); err != nil {
		return nil, err
	}

	logs := make([]Log, len(raw))
	for i, r := range raw {
		logs[i] = Log{
			Address:     r.Address,
			Topics:      r.Topics,
			Data:        r.Data,
			TxHash:      r.TxHash,
			BlockNumber: int64(r.BlockNumber),
		}
	}
	return logs, nil
}

// HTTPClient typed methods.

func (c *HTTPClient) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return codeAt(ctx, c, addr)
}

func (c *HTTPClient) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return balanceAt(ctx, c, addr)
}

func (c *HTTPClient) LatestBlockNumber(ctx context.Context) (int64, error) {
	return latestBlockNumber(ctx, c)
}

func (c *HTTPClient) BlockByNumber(ctx context.Context, number int64) (*Block, error) {
	return blockByNumber(ctx, c, number)
}

func (c *HTTPClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return callContract(ctx, c, to, data)
}

func (c *HTTPClient) FilterLogs(ctx context.Context, q LogFilter) ([]Log, error) {
	return filterLogs(ctx, c, q)
}
