package dex

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/indexer"
)

// MarketDataSource provides the off-chain data the oracle needs:
// the ETH/USD rate and token transfer listings for V2 volume.
// Satisfied by *indexer.Client.
type MarketDataSource interface {
	EthPrice(ctx context.Context) (float64, error)
	TokenTransferList(ctx context.Context, address string, opts indexer.ListOpts) ([]indexer.TokenTransfer, error)
}

// BlockSource resolves the block one day back for volume windows.
// Satisfied by *blocktime.Index.
type BlockSource interface {
	BlockDayAgo(ctx context.Context) (int64, error)
}

// Oracle probes configured factories for pools holding a token and
// merges the results deterministically, in factory order.
type Oracle struct {
	chain     ethereum.Client
	market    MarketDataSource
	blocks    BlockSource
	factories []Factory
	verbose   bool
}

// OracleOptions configures Oracle.
type OracleOptions struct {
	Chain  ethereum.Client
	Market MarketDataSource
	Blocks BlockSource
	// Factories defaults to DefaultFactories.
	Factories []Factory
	Verbose   bool
}

// NewOracle creates an Oracle.
func NewOracle(opts OracleOptions) *Oracle {
	factories := opts.Factories
	if len(factories) == 0 {
		factories = DefaultFactories()
	}
	return &Oracle{
		chain:     opts.Chain,
		market:    opts.Market,
		blocks:    opts.Blocks,
		factories: factories,
		verbose:   opts.Verbose,
	}
}

// Snapshot assembles the market view for token. Pool probes that fail
// are skipped; a token with no pools yields an empty snapshot, not an
// error. The main pool is the first one with the strictly deepest
// reference-asset liquidity and supplies the snapshot's price fields.
func (o *Oracle) Snapshot(ctx context.Context, token common.Address) (*domain.TokenMarketSnapshot, error) {
	snapshot := &domain.TokenMarketSnapshot{}

	decimals := ethereum.TokenDecimals(ctx, o.chain, token)

	// ETH/USD and the volume window degrade independently
	ethUSD, err := o.market.EthPrice(ctx)
	if err != nil {
		o.log("eth price unavailable: %v", err)
		ethUSD = 0
	}
	fromBlock, err := o.blocks.BlockDayAgo(ctx)
	if err != nil {
		o.log("volume window unavailable: %v", err)
		fromBlock = 0
	}
	head, err := o.chain.LatestBlockNumber(ctx)
	if err != nil {
		head = 0
	}

	bestIdx := -1
	for _, factory := range o.factories {
		var pools []domain.PoolEntry
		switch factory.Version {
		case VersionV2:
			entry, err := o.probeV2(ctx, factory, token, decimals, ethUSD, fromBlock)
			if err != nil {
				o.log("%s probe failed: %v", factory.Name, err)
				continue
			}
			if entry != nil {
				pools = append(pools, *entry)
			}
		case VersionV3:
			for _, fee := range v3FeeTiers {
				entry, err := o.probeV3(ctx, factory, token, fee, decimals, ethUSD, fromBlock, head)
				if err != nil {
					o.log("%s fee %d probe failed: %v", factory.Name, fee, err)
					continue
				}
				if entry != nil {
					pools = append(pools, *entry)
				}
			}
		}

		for i := range pools {
			entry := pools[i]
			snapshot.Pools = append(snapshot.Pools, entry)
			snapshot.TotalLiquidityETH += entry.LiquidityETH
			snapshot.Volume24h += entry.Volume24h

			if bestIdx < 0 || entry.LiquidityETH > snapshot.Pools[bestIdx].LiquidityETH {
				bestIdx = len(snapshot.Pools) - 1
			}
		}
	}

	if bestIdx >= 0 {
		best := snapshot.Pools[bestIdx]
		snapshot.MainPoolAddress = best.PairAddress
		snapshot.PriceETH = best.PriceETH
		snapshot.PriceUSD = best.PriceUSD
	}

	if snapshot.PriceUSD > 0 {
		if ret, err := o.chain.CallContract(ctx, token, ethereum.PackCall(ethereum.SelectorTotalSupply)); err == nil {
			if supply, err := ethereum.DecodeUint(ret, 0); err == nil {
				snapshot.MarketCap = ethereum.ScaleAmount(supply, decimals) * snapshot.PriceUSD
			}
		}
	}

	return snapshot, nil
}

// probeV2 looks up the factory's token/WETH pair and prices it from its
// reserves. Returns (nil, nil) when the factory has no such pair.
func (o *Oracle) probeV2(ctx context.Context, factory Factory, token common.Address, decimals int, ethUSD float64, fromBlock int64) (*domain.PoolEntry, error) {
	ret, err := o.chain.CallContract(ctx, factory.Address,
		ethereum.PackCall(selectorGetPair, ethereum.AddressWord(token), ethereum.AddressWord(WETH)))
	if err != nil {
		return nil, fmt.Errorf("getPair: %w", err)
	}
	pair, err := ethereum.DecodeAddress(ret, 0)
	if err != nil {
		return nil, err
	}
	if pair == (common.Address{}) {
		return nil, nil
	}

	ret, err = o.chain.CallContract(ctx, pair, ethereum.PackCall(selectorToken0))
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}
	token0, err := ethereum.DecodeAddress(ret, 0)
	if err != nil {
		return nil, err
	}

	ret, err = o.chain.CallContract(ctx, pair, ethereum.PackCall(selectorGetReserves))
	if err != nil {
		return nil, fmt.Errorf("getReserves: %w", err)
	}
	reserve0, err := ethereum.DecodeUint(ret, 0)
	if err != nil {
		return nil, err
	}
	reserve1, err := ethereum.DecodeUint(ret, 1)
	if err != nil {
		return nil, err
	}

	var tokenReserve, ethReserve float64
	if token0 == token {
		tokenReserve = scaleReserve(reserve0, decimals)
		ethReserve = scaleReserve(reserve1, refDecimals)
	} else {
		tokenReserve = scaleReserve(reserve1, decimals)
		ethReserve = scaleReserve(reserve0, refDecimals)
	}

	priceETH := 0.0
	if tokenReserve > 0 {
		priceETH = ethReserve / tokenReserve
	}

	volume, err := o.v2Volume(ctx, pair, token, fromBlock)
	if err != nil {
		o.log("%s volume unavailable: %v", factory.Name, err)
		volume = 0
	}

	return &domain.PoolEntry{
		Dex:          factory.Name,
		PairAddress:  pair.Hex(),
		LiquidityETH: ethReserve,
		TokenReserve: tokenReserve,
		PriceETH:     priceETH,
		PriceUSD:     priceETH * ethUSD,
		Volume24h:    volume,
	}, nil
}

// v2Volume sums the token legs of the pair's transfers since fromBlock,
// one leg per transaction.
func (o *Oracle) v2Volume(ctx context.Context, pair, token common.Address, fromBlock int64) (float64, error) {
	rows, err := o.market.TokenTransferList(ctx, pair.Hex(), indexer.ListOpts{
		StartBlock: fromBlock,
		Sort:       "desc",
	})
	if err != nil {
		return 0, err
	}

	tokenKey := domain.AddressKey(token.Hex())
	seen := make(map[string]bool, len(rows))

	var volume float64
	for _, row := range rows {
		if domain.AddressKey(row.ContractAddress) != tokenKey {
			continue
		}
		if seen[row.Hash] {
			continue
		}
		seen[row.Hash] = true
		volume += row.Amount()
	}
	return volume, nil
}

// probeV3 looks up the factory's token/WETH pool at one fee tier and
// prices it from slot0. Returns (nil, nil) when the pool does not exist.
func (o *Oracle) probeV3(ctx context.Context, factory Factory, token common.Address, fee uint64, decimals int, ethUSD float64, fromBlock, head int64) (*domain.PoolEntry, error) {
	ret, err := o.chain.CallContract(ctx, factory.Address,
		ethereum.PackCall(selectorGetPool,
			ethereum.AddressWord(token),
			ethereum.AddressWord(WETH),
			ethereum.UintWord(fee)))
	if err != nil {
		return nil, fmt.Errorf("getPool: %w", err)
	}
	pool, err := ethereum.DecodeAddress(ret, 0)
	if err != nil {
		return nil, err
	}
	if pool == (common.Address{}) {
		return nil, nil
	}

	ret, err = o.chain.CallContract(ctx, pool, ethereum.PackCall(selectorSlot0))
	if err != nil {
		return nil, fmt.Errorf("slot0: %w", err)
	}
	sqrtPriceX96, err := ethereum.DecodeUint(ret, 0)
	if err != nil {
		return nil, err
	}

	ret, err = o.chain.CallContract(ctx, pool, ethereum.PackCall(selectorLiquidity))
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	liquidity, err := ethereum.DecodeUint(ret, 0)
	if err != nil {
		return nil, err
	}

	priceETH := v3PriceETH(sqrtPriceX96, decimals)

	ethReserve := scaleReserve(liquidity, refDecimals) * priceETH
	tokenReserve := scaleReserve(liquidity, decimals)

	volume, err := o.v3Volume(ctx, pool, decimals, fromBlock, head)
	if err != nil {
		o.log("%s volume unavailable: %v", factory.Name, err)
		volume = 0
	}

	label := fmt.Sprintf("%s (%s%%)", factory.Name, strconv.FormatFloat(float64(fee)/10000, 'f', -1, 64))
	return &domain.PoolEntry{
		Dex:          label,
		PairAddress:  pool.Hex(),
		LiquidityETH: ethReserve,
		TokenReserve: tokenReserve,
		PriceETH:     priceETH,
		PriceUSD:     priceETH * ethUSD,
		Volume24h:    volume,
	}, nil
}

// v3Volume sums swap sizes from the pool's Swap events since fromBlock,
// taking each swap's larger leg.
func (o *Oracle) v3Volume(ctx context.Context, pool common.Address, decimals int, fromBlock, head int64) (float64, error) {
	if head <= 0 {
		return 0, nil
	}

	logs, err := o.chain.FilterLogs(ctx, ethereum.LogFilter{
		FromBlock: fromBlock,
		ToBlock:   head,
		Address:   pool,
		Topics:    []common.Hash{v3SwapTopic},
	})
	if err != nil {
		return 0, err
	}

	var volume float64
	for _, l := range logs {
		amount0, err := ethereum.DecodeInt(l.Data, 0)
		if err != nil {
			continue
		}
		amount1, err := ethereum.DecodeInt(l.Data, 1)
		if err != nil {
			continue
		}

		tokenLeg := scaleReserve(amount0.Abs(amount0), decimals)
		ethLeg := scaleReserve(amount1.Abs(amount1), refDecimals)
		if tokenLeg > ethLeg {
			volume += tokenLeg
		} else {
			volume += ethLeg
		}
	}
	return volume, nil
}

func (o *Oracle) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[dex] "+format, args...)
	}
}
