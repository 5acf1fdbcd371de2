package domain

// Address type labels used in reports.
const (
	TypeWallet   = "Wallet"
	TypeContract = "Contract"
	TypeToken    = "Token"
	TypeError    = "Error"
)

// TokenDetails carries token-specific data on a report. The embedded
// sections flatten into one JSON object; nil sections are omitted.
type TokenDetails struct {
	TokenMetadata
	*TokenMarketSnapshot
	*HolderActivity
}

// AddressReport is the full analysis result for one address.
type AddressReport struct {
	Address             string                 `json:"address"`
	Type                string                 `json:"type"`
	RiskScore           float64                `json:"risk_score"`
	RiskTier            string                 `json:"risk_tier"`
	Explanation         []string               `json:"explanation"`
	Summary             map[string]interface{} `json:"summary,omitempty"`
	Features            *FeatureSet            `json:"features,omitempty"`
	IsContract          bool                   `json:"is_contract"`
	IsToken             bool                   `json:"is_token"`
	TokenInfo           *TokenDetails          `json:"token_info,omitempty"`
	WalletMetrics       *WalletMetrics         `json:"wallet_metrics,omitempty"`
	DeFiActivity        *DeFiActivity          `json:"defi_activity,omitempty"`
	FeatureAvailability map[string]bool        `json:"feature_availability,omitempty"`
}

// ErrorReport builds the report shape returned when analysis cannot run.
func ErrorReport(address string, messages ...string) *AddressReport {
	return &AddressReport{
		Address:     address,
		Type:        TypeError,
		RiskScore:   0,
		RiskTier:    "Unknown",
		Explanation: messages,
	}
}
