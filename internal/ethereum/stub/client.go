package stub

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
)

// Client implements ethereum.Client for testing. Fixtures are added with
// the Add* helpers; unknown addresses behave like empty chain state.
type Client struct {
	Code        map[common.Address][]byte
	Balances    map[common.Address]*big.Int
	Blocks      map[int64]*ethereum.Block
	Latest      int64
	CallResults map[string][]byte
	CallErrs    map[string]error
	Logs        []ethereum.Log
}

// NewClient creates a new stub chain client.
func NewClient() *Client {
	return &Client{
		Code:        make(map[common.Address][]byte),
		Balances:    make(map[common.Address]*big.Int),
		Blocks:      make(map[int64]*ethereum.Block),
		CallResults: make(map[string][]byte),
		CallErrs:    make(map[string]error),
	}
}

// callKey identifies a contract call by target and input data.
func callKey(to common.Address, data []byte) string {
	return to.Hex() + ":" + hex.EncodeToString(data)
}

// CodeAt returns the bytecode fixture for addr, empty if none was added.
func (c *Client) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	return c.Code[addr], nil
}

// BalanceAt returns the balance fixture for addr, zero if none was added.
func (c *Client) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	if b, ok := c.Balances[addr]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

// LatestBlockNumber returns the configured chain head.
func (c *Client) LatestBlockNumber(_ context.Context) (int64, error) {
	return c.Latest, nil
}

// BlockByNumber retrieves a block fixture.
func (c *Client) BlockByNumber(_ context.Context, number int64) (*ethereum.Block, error) {
	block, ok := c.Blocks[number]
	if !ok {
		return nil, fmt.Errorf("%w: block %d", domain.ErrNotFound, number)
	}
	return block, nil
}

// CallContract answers from the call fixture table. Calls with no fixture
// fail like a reverting contract.
func (c *Client) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	key := callKey(to, data)
	if err, ok := c.CallErrs[key]; ok {
		return nil, err
	}
	if ret, ok := c.CallResults[key]; ok {
		return ret, nil
	}
	return nil, fmt.Errorf("%w: execution reverted", domain.ErrFetchFailed)
}

// FilterLogs returns added logs matching the filter.
func (c *Client) FilterLogs(_ context.Context, q ethereum.LogFilter) ([]ethereum.Log, error) {
	var out []ethereum.Log
	for _, l := range c.Logs {
		if l.Address != q.Address {
			continue
		}
		if l.BlockNumber < q.FromBlock || l.BlockNumber > q.ToBlock {
			continue
		}
		if len(q.Topics) > 0 && (len(l.Topics) == 0 || l.Topics[0] != q.Topics[0]) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// AddCode adds a bytecode fixture.
func (c *Client) AddCode(addr common.Address, code []byte) {
	c.Code[addr] = code
}

// AddBalance adds a balance fixture.
func (c *Client) AddBalance(addr common.Address, wei *big.Int) {
	c.Balances[addr] = wei
}

// AddBlock adds a block fixture and advances the chain head.
func (c *Client) AddBlock(block *ethereum.Block) {
	c.Blocks[block.Number] = block
	if block.Number > c.Latest {
		c.Latest = block.Number
	}
}

// AddCallResult adds a contract call fixture.
func (c *Client) AddCallResult(to common.Address, data []byte, ret []byte) {
	c.CallResults[callKey(to, data)] = ret
}

// AddCallErr makes a contract call fail.
func (c *Client) AddCallErr(to common.Address, data []byte, err error) {
	c.CallErrs[callKey(to, data)] = err
}

// AddLog adds an event log fixture.
func (c *Client) AddLog(l ethereum.Log) {
	c.Logs = append(c.Logs, l)
}
