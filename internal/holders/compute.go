// Package holders analyzes a token's recent transfer activity: holder
// participation, whale movements, contract interactions and trading
// patterns.
package holders

import (
	"fmt"
	"math"
	"sort"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/registry"
)

// Whale threshold bounds: a transfer is "large" when it moves more than
// 0.1% of supply or more than $100k, whichever is smaller.
const (
	whaleSupplyFraction = 0.001
	whaleUSDBound       = 100000.0
)

// Compute aggregates a token's transfer batch into holder activity
// metrics. The batch is deduplicated by transaction id first; output is
// deterministic for a given input.
func Compute(transfers []domain.Transfer, token string, totalSupply, priceUSD float64, reg *registry.Registry) *domain.HolderActivity {
	report := &domain.HolderActivity{
		Activity: domain.HolderStats{BuySellRatio: "0:0"},
		Trading:  domain.TradingPatterns{AvgHoldingTime: "0s"},
	}

	transfers = domain.DedupTransfers(transfers)
	if len(transfers) == 0 {
		return report
	}

	tokenKey := domain.AddressKey(token)
	threshold := whaleThreshold(totalSupply, priceUSD)

	addresses := make(map[string]bool)
	contractCounts := make(map[string]int)
	firstReceived := make(map[string]int64)

	var (
		totalAmount   float64
		buys, sells   int
		large         int
		accumulations int
		disposals     int
		defiTouches   int
		holdSamples   []int64
	)

	for _, tr := range transfers {
		from := domain.AddressKey(tr.From)
		to := domain.AddressKey(tr.To)

		if from != tokenKey {
			addresses[from] = true
		}
		if to != tokenKey {
			addresses[to] = true
		}

		totalAmount += tr.Amount

		fromProtocol := reg.IsProtocol(from)
		toProtocol := reg.IsProtocol(to)

		if fromProtocol {
			buys++
		} else if toProtocol {
			sells++
		}

		if tr.Amount > threshold {
			large++
		}

		if !toProtocol && to != tokenKey {
			accumulations++
		}
		if !fromProtocol && from != tokenKey {
			disposals++
		}

		if toProtocol {
			defiTouches++
		}
		if to != tokenKey {
			contractCounts[to]++
		}

		// Holding time: elapsed between an address first receiving the
		// token and later sending it.
		if first, ok := firstReceived[from]; ok {
			if sample := tr.Timestamp - first; sample > 0 {
				holdSamples = append(holdSamples, sample)
			}
		}
		if !toProtocol {
			if _, ok := firstReceived[to]; !ok {
				firstReceived[to] = tr.Timestamp
			}
		}
	}

	activePairs := 0
	for addr := range addresses {
		if reg.IsProtocol(addr) {
			activePairs++
		}
	}

	report.Activity = domain.HolderStats{
		ActiveAddresses: len(addresses),
		BuySellRatio:    fmt.Sprintf("%d:%d", buys, sells),
		AvgTransaction:  totalAmount / float64(len(transfers)),
	}
	report.Whales = domain.WhaleStats{
		LargeTransactions:  large,
		AccumulationEvents: accumulations,
		DisposalEvents:     disposals,
	}
	report.Contracts = domain.ContractInteractions{
		DeFiInteractions: defiTouches,
		UniqueContracts:  len(contractCounts),
		TopContracts:     topContracts(contractCounts, 10),
	}
	report.Trading = domain.TradingPatterns{
		AvgHoldingTime: formatHoldingTime(avgInt64(holdSamples)),
		ActivePairs:    activePairs,
	}
	return report
}

// whaleThreshold returns the large-transfer cutoff in token units.
func whaleThreshold(totalSupply, priceUSD float64) float64 {
	supplyBound := totalSupply * whaleSupplyFraction
	usdBound := math.Inf(1)
	if priceUSD > 0 {
		usdBound = whaleUSDBound / priceUSD
	}
	return math.Min(supplyBound, usdBound)
}

// topContracts returns the n most-hit receivers, count descending with
// address as the tie-break so equal counts order deterministically.
func topContracts(counts map[string]int, n int) []domain.ContractCount {
	out := make([]domain.ContractCount, 0, len(counts))
	for addr, count := range counts {
		out = append(out, domain.ContractCount{Address: addr, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func avgInt64(samples []int64) int64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, s := range samples {
		sum += s
	}
	return sum / int64(len(samples))
}

// formatHoldingTime renders seconds at coarse resolution.
func formatHoldingTime(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}
