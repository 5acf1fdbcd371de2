package domain

// WalletMetrics is the activity profile of a non-contract address.
// ETH amounts are in ether, not wei.
type WalletMetrics struct {
	Balance                  float64 `json:"balance"`
	TotalTransactions        int     `json:"total_transactions"`
	FirstTxTimestamp         string  `json:"first_tx_timestamp,omitempty"`
	LastTxTimestamp          string  `json:"last_tx_timestamp,omitempty"`
	UniqueInteractedAddrs    int     `json:"unique_interacted_addresses"`
	IncomingTxCount          int     `json:"incoming_tx_count"`
	OutgoingTxCount          int     `json:"outgoing_tx_count"`
	FailedTxCount            int     `json:"failed_tx_count"`
	TotalReceivedETH         float64 `json:"total_received_eth"`
	TotalSentETH             float64 `json:"total_sent_eth"`
	AvgGasUsed               float64 `json:"avg_gas_used"`
	TotalGasSpentETH         float64 `json:"total_gas_spent_eth"`
	WalletAgeDays            int     `json:"wallet_age_days"`
}

// DeFiProtocolActivity is one protocol's share of an address's activity.
type DeFiProtocolActivity struct {
	InteractionCount int     `json:"interaction_count"`
	TotalValue       float64 `json:"total_value"`
	LastInteraction  string  `json:"last_interaction,omitempty"`
}

// DeFiActivity summarizes an address's interactions with known protocols.
type DeFiActivity struct {
	Protocols         map[string]*DeFiProtocolActivity `json:"protocols"`
	TotalInteractions int                              `json:"total_interactions"`
	TotalValueLocked  float64                          `json:"total_value_locked"`
	LastInteraction   string                           `json:"last_interaction,omitempty"`
}
