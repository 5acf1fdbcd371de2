// Package risk turns a collected feature set into a bounded risk score,
// a tier and a human-readable explanation. Two scorers are provided:
// Engine, the weighted model with combination multipliers, and
// AdditiveStrategy, a simpler flat-sum heuristic.
package risk

// Factor kinds. These appear verbatim in combination explanations.
const (
	FactorUnverifiedContract = "unverified_contract"
	FactorMintPrivileges     = "mint_privileges"
	FactorHighMintCount      = "high_mint_count"
	FactorUnlockedLiquidity  = "unlocked_liquidity"
	FactorHoneypot           = "honeypot_result"
	FactorNewContract        = "new_contract"
)

// Base weights per factor.
var factorWeights = map[string]float64{
	FactorUnverifiedContract: 0.35,
	FactorMintPrivileges:     0.25,
	FactorHighMintCount:      0.20,
	FactorUnlockedLiquidity:  0.30,
	FactorHoneypot:           0.45,
	FactorNewContract:        0.20,
}

// Explanation texts per factor.
var factorTexts = map[string]string{
	FactorUnverifiedContract: "The contract source code is not verified on Etherscan, making it difficult to audit its functionality.",
	FactorMintPrivileges:     "The contract owner has the ability to mint new tokens, which could lead to token supply manipulation.",
	FactorHighMintCount:      "There have been multiple token minting events, indicating potential supply inflation.",
	FactorUnlockedLiquidity:  "The liquidity is not locked, allowing for potential rug pulls or token dumps.",
	FactorHoneypot:           "The contract exhibits characteristics of a honeypot, which may prevent token selling.",
	FactorNewContract:        "This is a newly deployed contract with limited history and community trust.",
}

// pair is an unordered factor pair, stored sorted.
type pair [2]string

func pairOf(a, b string) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Multipliers applied once per detected pair of correlated factors.
var pairMultipliers = map[pair]float64{
	pairOf(FactorUnverifiedContract, FactorMintPrivileges): 1.2,
	pairOf(FactorUnlockedLiquidity, FactorHoneypot):        1.3,
	pairOf(FactorNewContract, FactorUnverifiedContract):    1.15,
	pairOf(FactorMintPrivileges, FactorHighMintCount):      1.25,
}

const (
	// highMintThreshold is the mint event count above which supply
	// inflation is flagged.
	highMintThreshold = 10
	// newContractDays is the age below which a contract is flagged as new.
	newContractDays = 7
	// maxScore caps every published risk score.
	maxScore = 0.99
)
