package domain

// PoolEntry describes one DEX pool holding the analyzed token.
type PoolEntry struct {
	Dex          string  `json:"dex"`
	PairAddress  string  `json:"pair_address"`
	LiquidityETH float64 `json:"liquidity_eth"`
	TokenReserve float64 `json:"token_reserve"`
	PriceETH     float64 `json:"price_eth"`
	PriceUSD     float64 `json:"price_usd"`
	Volume24h    float64 `json:"volume_24h"`
}

// TokenMarketSnapshot aggregates pricing and liquidity across every pool
// that was found for a token. Price fields come from the main pool, the one
// with the deepest reference-asset liquidity.
type TokenMarketSnapshot struct {
	PriceETH          float64     `json:"price_eth"`
	PriceUSD          float64     `json:"price_usd"`
	MarketCap         float64     `json:"market_cap"`
	Volume24h         float64     `json:"volume_24h"`
	TotalLiquidityETH float64     `json:"total_liquidity_eth"`
	MainPoolAddress   string      `json:"main_pool_address,omitempty"`
	Pools             []PoolEntry `json:"dex_data"`
}

// TokenMetadata is the ERC-20 self-description read from the contract.
// TotalSupply is scaled by Decimals.
type TokenMetadata struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Decimals    int     `json:"decimals"`
	TotalSupply float64 `json:"total_supply"`
}
