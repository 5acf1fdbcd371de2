package risk

import (
	"fmt"
	"strings"

	"ethyr-engine/internal/domain"
)

// BuildContractOverview renders a contract's features as the one-line
// narrative used in explanations.
func BuildContractOverview(features domain.FeatureSet) string {
	var b strings.Builder

	article := "n unverified"
	if features.VerifiedContract {
		article = " verified"
	}
	fmt.Fprintf(&b, "This is a%s contract created %d days ago", article, features.ContractAgeDays)

	if features.OwnerAddress != "" {
		fmt.Fprintf(&b, " by %s", features.OwnerAddress)
		if features.IsOwnerDeployer {
			b.WriteString(" (who is also the deployer)")
		}
	}

	if features.HasMintPrivileges {
		fmt.Fprintf(&b, ". The owner has mint privileges and there have been %d mint events", features.MintEventCount)
	}

	locked := "not "
	if features.LPLocked {
		locked = ""
	}
	fmt.Fprintf(&b, ". Liquidity is %slocked", locked)

	honeypot := "passed"
	if features.HoneypotResult {
		honeypot = "failed"
	}
	fmt.Fprintf(&b, ". Honeypot test %s", honeypot)

	fmt.Fprintf(&b, ". There were %d burn events", features.BurnEventCount)
	if features.TransferVolume24h > 0 {
		fmt.Fprintf(&b, " and %.2f ETH in transfer volume in the last 24 hours", features.TransferVolume24h)
	}

	return b.String()
}

// BuildWalletOverview renders a wallet's activity as the one-line
// narrative used in explanations. Volume is the sum of sent and
// received ETH.
func BuildWalletOverview(metrics *domain.WalletMetrics) string {
	volume := 0.0
	if metrics != nil {
		volume = metrics.TotalSentETH + metrics.TotalReceivedETH
	}
	return fmt.Sprintf("This is a regular wallet address with %.2f ETH in transfer volume", volume)
}
