package risk

import "ethyr-engine/internal/domain"

// TierForScore buckets a risk score: scores at or below 0.3 are safe,
// at or below 0.7 moderate, anything higher is high risk.
func TierForScore(score float64) domain.RiskTier {
	switch {
	case score <= 0.3:
		return domain.TierSafe
	case score <= 0.7:
		return domain.TierModerate
	default:
		return domain.TierHigh
	}
}
