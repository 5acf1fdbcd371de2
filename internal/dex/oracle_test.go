package dex

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/ethereum/stub"
	"ethyr-engine/internal/indexer"
)

var (
	testToken = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testPairA = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testPairB = common.HexToAddress("0x3000000000000000000000000000000000000003")
	testPairC = common.HexToAddress("0x6000000000000000000000000000000000000006")
	factoryA  = common.HexToAddress("0x4000000000000000000000000000000000000004")
	factoryB  = common.HexToAddress("0x5000000000000000000000000000000000000005")
	factoryC  = common.HexToAddress("0x7000000000000000000000000000000000000007")
)

type fakeMarket struct {
	ethUSD    float64
	ethErr    error
	transfers map[string][]indexer.TokenTransfer
}

func (m *fakeMarket) EthPrice(context.Context) (float64, error) {
	return m.ethUSD, m.ethErr
}

func (m *fakeMarket) TokenTransferList(_ context.Context, address string, _ indexer.ListOpts) ([]indexer.TokenTransfer, error) {
	return m.transfers[domain.AddressKey(address)], nil
}

type fakeBlocks struct {
	block int64
	err   error
}

func (b *fakeBlocks) BlockDayAgo(context.Context) (int64, error) {
	return b.block, b.err
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func intWord(v *big.Int) []byte {
	if v.Sign() >= 0 {
		return common.LeftPadBytes(v.Bytes(), 32)
	}
	twos := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), v)
	return common.LeftPadBytes(twos.Bytes(), 32)
}

func addrWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// seedV2Pool adds the pair lookup, token0 and reserve fixtures for a
// token/WETH pool on factory.
func seedV2Pool(chain *stub.Client, factory, pair common.Address, tokenReserve, ethReserve *big.Int) {
	chain.AddCallResult(factory,
		ethereum.PackCall(selectorGetPair, ethereum.AddressWord(testToken), ethereum.AddressWord(WETH)),
		addrWord(pair))
	chain.AddCallResult(pair, ethereum.PackCall(selectorToken0), addrWord(testToken))

	reserves := append(word(tokenReserve), word(ethReserve)...)
	reserves = append(reserves, word(big.NewInt(1700000000))...)
	chain.AddCallResult(pair, ethereum.PackCall(selectorGetReserves), reserves)
}

// seedV3NoPools makes every fee tier of factory report no pool.
func seedV3NoPools(chain *stub.Client, factory common.Address) {
	for _, fee := range v3FeeTiers {
		chain.AddCallResult(factory,
			ethereum.PackCall(selectorGetPool,
				ethereum.AddressWord(testToken),
				ethereum.AddressWord(WETH),
				ethereum.UintWord(fee)),
			word(big.NewInt(0)))
	}
}

func TestSnapshot_V2Pool(t *testing.T) {
	chain := stub.NewClient()
	seedV2Pool(chain, factoryA, testPairA, wad(1000000), wad(500))
	chain.AddCallResult(testToken, ethereum.PackCall(ethereum.SelectorTotalSupply), word(wad(1000000)))

	market := &fakeMarket{
		ethUSD: 2000,
		transfers: map[string][]indexer.TokenTransfer{
			domain.AddressKey(testPairA.Hex()): {
				{Hash: "0xswap1", ContractAddress: testToken.Hex(), Value: "100000000000000000000", TokenDecimal: "18"},
				{Hash: "0xswap1", ContractAddress: testToken.Hex(), Value: "100000000000000000000", TokenDecimal: "18"},
				{Hash: "0xswap2", ContractAddress: WETH.Hex(), Value: "50000000000000000", TokenDecimal: "18"},
				{Hash: "0xswap3", ContractAddress: testToken.Hex(), Value: "50000000000000000000", TokenDecimal: "18"},
			},
		},
	}

	oracle := NewOracle(OracleOptions{
		Chain:     chain,
		Market:    market,
		Blocks:    &fakeBlocks{block: 100},
		Factories: []Factory{{Name: "Uniswap V2", Address: factoryA, Version: VersionV2}},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(snapshot.Pools))
	}
	if snapshot.MainPoolAddress != testPairA.Hex() {
		t.Errorf("expected main pool %s, got %s", testPairA.Hex(), snapshot.MainPoolAddress)
	}
	// 500 ETH / 1M tokens
	if math.Abs(snapshot.PriceETH-0.0005) > 1e-12 {
		t.Errorf("expected price 0.0005 ETH, got %v", snapshot.PriceETH)
	}
	if math.Abs(snapshot.PriceUSD-1.0) > 1e-9 {
		t.Errorf("expected price $1.00, got %v", snapshot.PriceUSD)
	}
	if math.Abs(snapshot.TotalLiquidityETH-500) > 1e-9 {
		t.Errorf("expected 500 ETH liquidity, got %v", snapshot.TotalLiquidityETH)
	}
	// 0xswap1 counted once, WETH leg excluded: 100 + 50
	if math.Abs(snapshot.Volume24h-150) > 1e-9 {
		t.Errorf("expected volume 150, got %v", snapshot.Volume24h)
	}
	if math.Abs(snapshot.MarketCap-1000000) > 1e-3 {
		t.Errorf("expected market cap 1000000, got %v", snapshot.MarketCap)
	}
}

func TestSnapshot_V3Pool(t *testing.T) {
	chain := stub.NewClient()
	chain.AddBlock(&ethereum.Block{Number: 200, Timestamp: 1700000000})

	seedV3NoPools(chain, factoryA)
	chain.AddCallResult(factoryA,
		ethereum.PackCall(selectorGetPool,
			ethereum.AddressWord(testToken),
			ethereum.AddressWord(WETH),
			ethereum.UintWord(3000)),
		addrWord(testPairB))

	// sqrtPrice 2^96 means a raw price of 1 ETH per token
	chain.AddCallResult(testPairB, ethereum.PackCall(selectorSlot0),
		word(new(big.Int).Lsh(big.NewInt(1), 96)))
	chain.AddCallResult(testPairB, ethereum.PackCall(selectorLiquidity), word(wad(1000)))

	chain.AddLog(ethereum.Log{
		Address:     testPairB,
		Topics:      []common.Hash{v3SwapTopic},
		Data:        append(intWord(wad(-5)), intWord(wad(3))...),
		BlockNumber: 150,
	})

	oracle := NewOracle(OracleOptions{
		Chain:     chain,
		Market:    &fakeMarket{ethUSD: 2000},
		Blocks:    &fakeBlocks{block: 100},
		Factories: []Factory{{Name: "Uniswap V3", Address: factoryA, Version: VersionV3}},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(snapshot.Pools))
	}
	pool := snapshot.Pools[0]
	if pool.Dex != "Uniswap V3 (0.3%)" {
		t.Errorf("unexpected pool label %q", pool.Dex)
	}
	if math.Abs(pool.PriceETH-1.0) > 1e-9 {
		t.Errorf("expected price 1 ETH, got %v", pool.PriceETH)
	}
	if math.Abs(pool.PriceUSD-2000) > 1e-6 {
		t.Errorf("expected price $2000, got %v", pool.PriceUSD)
	}
	if math.Abs(pool.LiquidityETH-1000) > 1e-6 {
		t.Errorf("expected 1000 ETH liquidity, got %v", pool.LiquidityETH)
	}
	// larger swap leg: |amount0| = 5 tokens
	if math.Abs(pool.Volume24h-5) > 1e-9 {
		t.Errorf("expected volume 5, got %v", pool.Volume24h)
	}
}

func TestSnapshot_MainPoolDeepestLiquidity(t *testing.T) {
	chain := stub.NewClient()
	seedV2Pool(chain, factoryA, testPairA, wad(1000000), wad(500))
	seedV2Pool(chain, factoryB, testPairB, wad(1000000), wad(800))

	oracle := NewOracle(OracleOptions{
		Chain:  chain,
		Market: &fakeMarket{ethUSD: 2000},
		Blocks: &fakeBlocks{block: 100},
		Factories: []Factory{
			{Name: "Uniswap V2", Address: factoryA, Version: VersionV2},
			{Name: "SushiSwap", Address: factoryB, Version: VersionV2},
		},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(snapshot.Pools))
	}
	if snapshot.MainPoolAddress != testPairB.Hex() {
		t.Errorf("expected main pool %s, got %s", testPairB.Hex(), snapshot.MainPoolAddress)
	}
	if math.Abs(snapshot.TotalLiquidityETH-1300) > 1e-6 {
		t.Errorf("expected 1300 ETH total liquidity, got %v", snapshot.TotalLiquidityETH)
	}
	// price from the deeper pool: 800 / 1M
	if math.Abs(snapshot.PriceETH-0.0008) > 1e-12 {
		t.Errorf("expected price 0.0008 ETH, got %v", snapshot.PriceETH)
	}
}

func TestSnapshot_MainPoolTieFirstWins(t *testing.T) {
	chain := stub.NewClient()
	// Pools A and B hold exactly 500 ETH each; A is probed first and
	// must stay the main pool. C is shallower and keeps appending after
	// the choice is made.
	seedV2Pool(chain, factoryA, testPairA, wad(1000000), wad(500))
	seedV2Pool(chain, factoryB, testPairB, wad(2000000), wad(500))
	seedV2Pool(chain, factoryC, testPairC, wad(1000000), wad(300))

	oracle := NewOracle(OracleOptions{
		Chain:  chain,
		Market: &fakeMarket{ethUSD: 2000},
		Blocks: &fakeBlocks{block: 100},
		Factories: []Factory{
			{Name: "Uniswap V2", Address: factoryA, Version: VersionV2},
			{Name: "SushiSwap", Address: factoryB, Version: VersionV2},
			{Name: "PancakeSwap", Address: factoryC, Version: VersionV2},
		},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 3 {
		t.Fatalf("expected 3 pools, got %d", len(snapshot.Pools))
	}
	if snapshot.MainPoolAddress != testPairA.Hex() {
		t.Errorf("expected first-discovered pool %s on tie, got %s", testPairA.Hex(), snapshot.MainPoolAddress)
	}
	// price from pool A: 500 / 1M, not B's 500 / 2M
	if math.Abs(snapshot.PriceETH-0.0005) > 1e-12 {
		t.Errorf("expected price 0.0005 ETH, got %v", snapshot.PriceETH)
	}
	if math.Abs(snapshot.TotalLiquidityETH-1300) > 1e-6 {
		t.Errorf("expected 1300 ETH total liquidity, got %v", snapshot.TotalLiquidityETH)
	}
}

func TestSnapshot_NoPools(t *testing.T) {
	chain := stub.NewClient()
	chain.AddCallResult(factoryA,
		ethereum.PackCall(selectorGetPair, ethereum.AddressWord(testToken), ethereum.AddressWord(WETH)),
		word(big.NewInt(0)))
	seedV3NoPools(chain, factoryB)

	oracle := NewOracle(OracleOptions{
		Chain:  chain,
		Market: &fakeMarket{ethUSD: 2000},
		Blocks: &fakeBlocks{block: 100},
		Factories: []Factory{
			{Name: "Uniswap V2", Address: factoryA, Version: VersionV2},
			{Name: "Uniswap V3", Address: factoryB, Version: VersionV3},
		},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 0 {
		t.Errorf("expected no pools, got %d", len(snapshot.Pools))
	}
	if snapshot.MainPoolAddress != "" || snapshot.PriceUSD != 0 || snapshot.MarketCap != 0 {
		t.Errorf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestSnapshot_ProbeFailureSkipped(t *testing.T) {
	chain := stub.NewClient()
	// factoryA has no getPair fixture and reverts
	seedV2Pool(chain, factoryB, testPairB, wad(1000000), wad(500))

	oracle := NewOracle(OracleOptions{
		Chain:  chain,
		Market: &fakeMarket{ethUSD: 2000},
		Blocks: &fakeBlocks{block: 100},
		Factories: []Factory{
			{Name: "Uniswap V2", Address: factoryA, Version: VersionV2},
			{Name: "SushiSwap", Address: factoryB, Version: VersionV2},
		},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.Pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(snapshot.Pools))
	}
	if snapshot.Pools[0].Dex != "SushiSwap" {
		t.Errorf("expected SushiSwap pool, got %s", snapshot.Pools[0].Dex)
	}
}

func TestSnapshot_EthPriceUnavailable(t *testing.T) {
	chain := stub.NewClient()
	seedV2Pool(chain, factoryA, testPairA, wad(1000000), wad(500))

	oracle := NewOracle(OracleOptions{
		Chain:     chain,
		Market:    &fakeMarket{ethErr: domain.ErrFetchFailed},
		Blocks:    &fakeBlocks{block: 100},
		Factories: []Factory{{Name: "Uniswap V2", Address: factoryA, Version: VersionV2}},
	})

	snapshot, err := oracle.Snapshot(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// ETH price still available, USD fields degrade to zero
	if math.Abs(snapshot.PriceETH-0.0005) > 1e-12 {
		t.Errorf("expected price 0.0005 ETH, got %v", snapshot.PriceETH)
	}
	if snapshot.PriceUSD != 0 || snapshot.MarketCap != 0 {
		t.Errorf("expected zero USD fields, got %+v", snapshot)
	}
}
