// Package dex discovers liquidity pools for a token across configured
// DEX factories and assembles a market snapshot: price, liquidity,
// 24h volume and market cap.
package dex

import (
	"github.com/ethereum/go-ethereum/common"
)

// Pool contract versions.
const (
	VersionV2 = "v2"
	VersionV3 = "v3"
)

// Factory is one DEX factory to probe for pools.
type Factory struct {
	Name    string
	Address common.Address
	Version string
}

// DefaultFactories returns the mainnet factories probed in order.
func DefaultFactories() []Factory {
	return []Factory{
		{Name: "Uniswap V2", Address: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"), Version: VersionV2},
		{Name: "SushiSwap", Address: common.HexToAddress("0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac"), Version: VersionV2},
		{Name: "Uniswap V3", Address: common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"), Version: VersionV3},
		{Name: "PancakeSwap", Address: common.HexToAddress("0x1097053Fd2ea711dad45caCcc45EfF7548fCB362"), Version: VersionV2},
	}
}

// WETH is the reference asset every pool is priced against.
var WETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

// refDecimals is the reference asset's decimals.
const refDecimals = 18

// Pool read selectors.
var (
	selectorGetPair     = [4]byte{0xe6, 0xa4, 0x39, 0x05}
	selectorGetPool     = [4]byte{0x16, 0x98, 0xee, 0x82}
	selectorToken0      = [4]byte{0x0d, 0xfe, 0x16, 0x81}
	selectorGetReserves = [4]byte{0x09, 0x02, 0xf1, 0xac}
	selectorSlot0       = [4]byte{0x38, 0x50, 0xc7, 0xbd}
	selectorLiquidity   = [4]byte{0x1a, 0x68, 0x65, 0x02}
)

// v3SwapTopic is the Uniswap V3 Swap event signature.
var v3SwapTopic = common.HexToHash("0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67")

// v3FeeTiers are the fee levels probed per V3 factory, in hundredths of
// a basis point.
var v3FeeTiers = []uint64{100, 500, 3000, 10000}
