package domain

// HolderStats summarizes participation in a transfer window.
type HolderStats struct {
	ActiveAddresses int     `json:"active_addresses"`
	BuySellRatio    string  `json:"buy_sell_ratio"`
	AvgTransaction  float64 `json:"avg_transaction"`
}

// WhaleStats counts large-position movements in a transfer window.
type WhaleStats struct {
	LargeTransactions  int `json:"large_transactions"`
	AccumulationEvents int `json:"accumulation_events"`
	DisposalEvents     int `json:"disposal_events"`
}

// ContractCount is one receiving contract and how many transfers hit it.
type ContractCount struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

// ContractInteractions summarizes which contracts the transfers touched.
type ContractInteractions struct {
	DeFiInteractions int             `json:"defi_interactions"`
	UniqueContracts  int             `json:"unique_contracts"`
	TopContracts     []ContractCount `json:"top_contracts"`
}

// TradingPatterns summarizes holding behavior in a transfer window.
type TradingPatterns struct {
	AvgHoldingTime string `json:"avg_holding_time"`
	ActivePairs    int    `json:"active_pairs"`
}

// HolderActivity is the full holder analysis for a token over the
// analyzed window.
type HolderActivity struct {
	Activity  HolderStats          `json:"holder_activity"`
	Whales    WhaleStats           `json:"whale_analysis"`
	Contracts ContractInteractions `json:"contract_interactions"`
	Trading   TradingPatterns      `json:"trading_patterns"`
}
