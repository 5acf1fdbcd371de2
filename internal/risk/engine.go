package risk

import (
	"fmt"

	"ethyr-engine/internal/domain"
)

// Engine is the weighted risk scorer: qualifying factor weights are
// summed, each detected pair of correlated factors multiplies the total
// once, and the result is clamped to [0, 0.99].
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate scores features and builds the explanation. Non-contract
// addresses always score zero. The overview line is produced by the
// caller so wallet and contract reports share one scorer.
func (e *Engine) Evaluate(features domain.FeatureSet, isToken bool, overview string) domain.RiskAssessment {
	var factors []domain.RiskFactor
	score := 0.0

	if features.IsContract {
		factors = collectFactors(features)
		for _, f := range factors {
			score += f.Weight
		}

		applied := make(map[pair]bool)
		for i := range factors {
			for j := i + 1; j < len(factors); j++ {
				key := pairOf(factors[i].Kind, factors[j].Kind)
				if mult, ok := pairMultipliers[key]; ok && !applied[key] {
					score *= mult
					applied[key] = true
				}
			}
		}

		if score > maxScore {
			score = maxScore
		}
	}

	tier := TierForScore(score)
	return domain.RiskAssessment{
		Score:       score,
		Tier:        tier,
		Factors:     factors,
		Explanation: e.explain(factors, score, tier, overview),
	}
}

// collectFactors returns the qualifying factors in their fixed order.
func collectFactors(features domain.FeatureSet) []domain.RiskFactor {
	var factors []domain.RiskFactor
	add := func(kind string) {
		factors = append(factors, domain.RiskFactor{Kind: kind, Weight: factorWeights[kind]})
	}

	if !features.VerifiedContract {
		add(FactorUnverifiedContract)
	}
	if features.HasMintPrivileges {
		add(FactorMintPrivileges)
	}
	if features.MintEventCount > highMintThreshold {
		add(FactorHighMintCount)
	}
	if !features.LPLocked {
		add(FactorUnlockedLiquidity)
	}
	if features.HoneypotResult {
		add(FactorHoneypot)
	}
	if features.ContractAgeDays < newContractDays {
		add(FactorNewContract)
	}
	return factors
}

func (e *Engine) explain(factors []domain.RiskFactor, score float64, tier domain.RiskTier, overview string) []string {
	lines := []string{
		fmt.Sprintf("Analysis Overview: %s", overview),
		fmt.Sprintf("Risk Assessment: This address has been classified as %s with a risk score of %.2f", tier, score),
	}

	if len(factors) > 0 {
		lines = append(lines, "Detected Risk Factors:")
		for _, f := range factors {
			lines = append(lines, fmt.Sprintf("- %s (Impact: %.2f)", factorTexts[f.Kind], f.Weight))
		}

		var combos []string
		for i := range factors {
			for j := i + 1; j < len(factors); j++ {
				if mult, ok := pairMultipliers[pairOf(factors[i].Kind, factors[j].Kind)]; ok {
					combos = append(combos, fmt.Sprintf(
						"- Combined impact of %s and %s increases overall risk by %.0f%%",
						factors[i].Kind, factors[j].Kind, (mult-1)*100))
				}
			}
		}
		if len(combos) > 0 {
			lines = append(lines, "Risk Factor Combinations:")
			lines = append(lines, combos...)
		}
	} else {
		lines = append(lines, "No significant risk factors were detected.")
	}

	switch tier {
	case domain.TierHigh:
		lines = append(lines, "Recommendation: Exercise extreme caution when interacting with this address. Consider avoiding transactions unless you fully understand the risks.")
	case domain.TierModerate:
		lines = append(lines, "Recommendation: Proceed with caution and conduct thorough due diligence before any significant interactions.")
	default:
		lines = append(lines, "Recommendation: While no major risks were detected, always follow standard security practices when conducting transactions.")
	}
	return lines
}
