package domain

// FeatureSet is the evidence collected about an address before scoring.
// Field defaults are the risk-neutral values used when a fetch degrades;
// FeatureAvailability on the report records which fields were actually
// observed.
type FeatureSet struct {
	IsContract        bool    `json:"is_contract"`
	VerifiedContract  bool    `json:"verified_contract"`
	OwnerAddress      string  `json:"owner_address,omitempty"`
	IsOwnerDeployer   bool    `json:"is_owner_deployer"`
	HasMintPrivileges bool    `json:"has_mint_privileges"`
	MintEventCount    int     `json:"mint_event_count"`
	HoneypotResult    bool    `json:"honeypot_result"`
	LPLocked          bool    `json:"lp_locked"`
	ContractAgeDays   int     `json:"contract_age_days"`
	BurnEventCount    int     `json:"burn_event_count"`
	TransferVolume24h float64 `json:"transfer_volume_24h"`
}

// RiskTier buckets a risk score for presentation.
type RiskTier int

const (
	TierSafe RiskTier = iota
	TierModerate
	TierHigh
)

// String returns the display name used in reports and explanations.
func (t RiskTier) String() string {
	switch t {
	case TierSafe:
		return "Safe"
	case TierModerate:
		return "Moderate Risk"
	default:
		return "High Risk"
	}
}

// RiskFactor is one detected risk signal with its base weight.
type RiskFactor struct {
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
}

// RiskAssessment is the outcome of scoring a FeatureSet.
type RiskAssessment struct {
	Score       float64      `json:"score"`
	Tier        RiskTier     `json:"tier"`
	Factors     []RiskFactor `json:"factors,omitempty"`
	Explanation []string     `json:"explanation"`
}
