package risk

import (
	"fmt"

	"ethyr-engine/internal/domain"
)

// AdditiveStrategy is the flat-sum scorer: fixed increments per
// detected condition, one combination bonus, capped at 0.99. The
// unlocked-liquidity increment only applies to token contracts, and
// any contract younger than 30 days counts as new.
type AdditiveStrategy struct{}

// NewAdditiveStrategy creates an AdditiveStrategy.
func NewAdditiveStrategy() *AdditiveStrategy {
	return &AdditiveStrategy{}
}

const additiveNewContractDays = 30

// Evaluate scores features with the additive model. The overview
// argument is ignored: this strategy renders its own shorter overview.
func (s *AdditiveStrategy) Evaluate(features domain.FeatureSet, isToken bool, overview string) domain.RiskAssessment {
	var (
		score       float64
		factors     []domain.RiskFactor
		factorLines []string
	)
	add := func(kind string, weight float64, text string) {
		score += weight
		factors = append(factors, domain.RiskFactor{Kind: kind, Weight: weight})
		factorLines = append(factorLines, fmt.Sprintf("- %s (Impact: %.2f)", text, weight))
	}

	if features.IsContract {
		if !features.VerifiedContract {
			add(FactorUnverifiedContract, 0.35,
				"The contract source code is not verified on Etherscan, making it difficult to audit its functionality.")
		}
		if !features.LPLocked && isToken {
			add(FactorUnlockedLiquidity, 0.30,
				"The liquidity is not locked, allowing for potential rug pulls or token dumps.")
		}
		if features.ContractAgeDays < additiveNewContractDays {
			add(FactorNewContract, 0.20,
				"This is a newly deployed contract with limited history and community trust.")
		}
		if features.HasMintPrivileges {
			add(FactorMintPrivileges, 0.15,
				"The contract has minting privileges, which could be used to inflate the token supply.")
		}
		if features.HoneypotResult {
			add(FactorHoneypot, 0.25,
				"The contract shows patterns similar to known honeypot scams.")
		}

		if !features.VerifiedContract && features.ContractAgeDays < additiveNewContractDays {
			score += 0.15
			factorLines = append(factorLines,
				"Risk Factor Combinations:",
				"- Combined impact of unverified_contract and new_contract increases overall risk by 15%")
		}

		if score > maxScore {
			score = maxScore
		}
	}

	tier := TierForScore(score)

	lines := []string{
		fmt.Sprintf("Analysis Overview: %s", s.overview(features)),
		fmt.Sprintf("Risk Assessment: This address has been classified as %s with a risk score of %.2f", tier, score),
	}
	if len(factorLines) > 0 {
		lines = append(lines, "Detected Risk Factors:")
		lines = append(lines, factorLines...)
	} else {
		lines = append(lines, "No significant risk factors were detected.")
	}

	switch tier {
	case domain.TierHigh:
		lines = append(lines, "Recommendation: Exercise extreme caution when interacting with this address. Consider avoiding transactions unless you fully understand the risks.")
	case domain.TierModerate:
		lines = append(lines, "Recommendation: Proceed with caution and conduct thorough due diligence before any significant interactions.")
	default:
		lines = append(lines, "Recommendation: This address appears to be relatively safe based on our analysis, but always exercise normal caution.")
	}

	return domain.RiskAssessment{
		Score:       score,
		Tier:        tier,
		Factors:     factors,
		Explanation: lines,
	}
}

func (s *AdditiveStrategy) overview(features domain.FeatureSet) string {
	verified := "unverified"
	if features.VerifiedContract {
		verified = "verified"
	}
	locked := "not "
	if features.LPLocked {
		locked = ""
	}
	honeypot := "passed"
	if features.HoneypotResult {
		honeypot = "failed"
	}
	return fmt.Sprintf("This is an %s contract created %d days ago. Liquidity is %slocked. Honeypot test %s. There were %d burn events",
		verified, features.ContractAgeDays, locked, honeypot, features.BurnEventCount)
}
