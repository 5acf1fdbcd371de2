// Package profile collects on-chain and indexer evidence about an
// address: contract characteristics for the risk engine, or activity
// metrics for a plain wallet.
package profile

import (
	"bytes"
	"context"
	"math/big"
	"time"

	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/indexer"
)

// Feature availability keys reported alongside profiles. A false value
// means the upstream fetch failed and the field holds its neutral
// default.
const (
	FeatureContractSource = "contract_source"
	FeatureCreator        = "creator"
	FeatureBytecode       = "bytecode"
	FeatureMintActivity   = "mint_activity"
	FeatureBurnEvents     = "burn_events"
	FeatureLiquidityLock  = "liquidity_lock"
	FeatureTransferVolume = "transfer_volume"
	FeatureContractAge    = "contract_age"
	FeatureBalance        = "balance"
	FeatureTxHistory      = "tx_history"
	FeatureDeFiActivity   = "defi_activity"
)

// HistorySource lists an address's indexed history. Satisfied by
// *indexer.Client.
type HistorySource interface {
	TransactionList(ctx context.Context, address string, opts indexer.ListOpts) ([]indexer.Transaction, error)
	InternalTransactionList(ctx context.Context, address string, opts indexer.ListOpts) ([]indexer.Transaction, error)
	TokenTransferList(ctx context.Context, address string, opts indexer.ListOpts) ([]indexer.TokenTransfer, error)
	ContractSource(ctx context.Context, address string) (*indexer.ContractSource, error)
	ContractCreation(ctx context.Context, addresses ...string) ([]indexer.ContractCreation, error)
}

// Function selectors whose presence in bytecode grants mint ability.
var mintSelectors = [][4]byte{
	{0x40, 0xc1, 0x0f, 0x19}, // mint(address,uint256)
	{0xa0, 0x71, 0x2d, 0x68}, // mint(uint256)
	{0x6a, 0x62, 0x78, 0x42}, // mint(address)
}

// Function selectors associated with honeypot behavior.
var honeypotSelectors = [][4]byte{
	{0x8d, 0x80, 0xff, 0x0a}, // multiSend, used by selfdestruct proxies
	{0xf8, 0xb2, 0xcb, 0x4f}, // getBalance
	{0x70, 0xa0, 0x82, 0x31}, // balanceOf
}

func codeContainsAny(code []byte, selectors [][4]byte) bool {
	for _, sel := range selectors {
		if bytes.Contains(code, sel[:]) {
			return true
		}
	}
	return false
}

// dateFormat renders timestamps the way the report presents them.
const dateFormat = "01/02/2006"

var etherWei = new(big.Float).SetFloat64(1e18)

func weiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), etherWei).Float64()
	return out
}

// headTime returns the chain head's timestamp, falling back to wall
// clock when the head cannot be read.
func headTime(ctx context.Context, chain ethereum.Client) int64 {
	number, err := chain.LatestBlockNumber(ctx)
	if err != nil {
		return time.Now().Unix()
	}
	block, err := chain.BlockByNumber(ctx, number)
	if err != nil {
		return time.Now().Unix()
	}
	return block.Timestamp
}
