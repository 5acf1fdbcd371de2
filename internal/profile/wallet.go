package profile

import (
	"context"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/indexer"
	"ethyr-engine/internal/registry"
)

// WalletProfile is the collected activity evidence about a non-contract
// address.
type WalletProfile struct {
	Metrics      domain.WalletMetrics
	DeFi         domain.DeFiActivity
	Availability map[string]bool
}

// WalletProfiler aggregates a wallet's transaction history into activity
// metrics and a known-protocol interaction summary.
type WalletProfiler struct {
	chain    ethereum.Client
	source   HistorySource
	registry *registry.Registry
	verbose  bool
}

// WalletProfilerOptions configures WalletProfiler.
type WalletProfilerOptions struct {
	Chain    ethereum.Client
	Source   HistorySource
	Registry *registry.Registry
	Verbose  bool
}

// NewWalletProfiler creates a WalletProfiler.
func NewWalletProfiler(opts WalletProfilerOptions) *WalletProfiler {
	return &WalletProfiler{
		chain:    opts.Chain,
		source:   opts.Source,
		registry: opts.Registry,
		verbose:  opts.Verbose,
	}
}

// Profile collects wallet metrics and DeFi activity for address.
// Transactions stamped after the current chain head are dropped as
// indexer clock skew.
func (p *WalletProfiler) Profile(ctx context.Context, address string) (*WalletProfile, error) {
	now := headTime(ctx, p.chain)

	var (
		balance                float64
		normalTxs, internalTxs []indexer.Transaction
		tokenTxs               []indexer.TokenTransfer
		balErr, txErr, intErr  error
		tokErr                 error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wei, err := p.chain.BalanceAt(gctx, common.HexToAddress(address))
		balance, balErr = weiToEther(wei), err
		return nil
	})
	g.Go(func() error {
		normalTxs, txErr = p.source.TransactionList(gctx, address, indexer.ListOpts{Sort: "asc"})
		return nil
	})
	g.Go(func() error {
		internalTxs, intErr = p.source.InternalTransactionList(gctx, address, indexer.ListOpts{Sort: "asc"})
		return nil
	})
	g.Go(func() error {
		tokenTxs, tokErr = p.source.TokenTransferList(gctx, address, indexer.ListOpts{Sort: "desc"})
		return nil
	})
	g.Wait()

	profile := &WalletProfile{
		Availability: map[string]bool{
			FeatureBalance:      balErr == nil,
			FeatureTxHistory:    txErr == nil && intErr == nil,
			FeatureDeFiActivity: txErr == nil && tokErr == nil,
		},
	}
	if balErr == nil {
		profile.Metrics.Balance = balance
	} else {
		p.log("balance unavailable for %s: %v", address, balErr)
	}
	if txErr != nil {
		p.log("transaction history unavailable for %s: %v", address, txErr)
		normalTxs = nil
	}
	if intErr != nil {
		p.log("internal transactions unavailable for %s: %v", address, intErr)
		internalTxs = nil
	}
	if tokErr != nil {
		p.log("token transfers unavailable for %s: %v", address, tokErr)
		tokenTxs = nil
	}

	p.computeMetrics(profile, address, normalTxs, internalTxs, now)
	profile.DeFi = p.computeDeFi(address, normalTxs, tokenTxs)

	return profile, nil
}

// computeMetrics folds normal and internal transactions into the wallet
// metrics. Internal transactions contribute value flows and timestamps
// but not transaction counts.
func (p *WalletProfiler) computeMetrics(profile *WalletProfile, address string, normalTxs, internalTxs []indexer.Transaction, now int64) {
	addrKey := domain.AddressKey(address)
	counterparties := make(map[string]struct{})

	var firstTS, lastTS int64
	observe := func(ts int64) {
		if firstTS == 0 || ts < firstTS {
			firstTS = ts
		}
		if ts > lastTS {
			lastTS = ts
		}
	}

	var totalGasUnits float64
	validCount := 0
	for _, tx := range normalTxs {
		ts := tx.Timestamp()
		if ts > now {
			continue
		}
		observe(ts)

		if from := domain.AddressKey(tx.From); from != "" && from != addrKey {
			counterparties[from] = struct{}{}
		}
		if to := domain.AddressKey(tx.To); to != "" && to != addrKey {
			counterparties[to] = struct{}{}
		}

		if domain.AddressKey(tx.From) == addrKey {
			profile.Metrics.OutgoingTxCount++
			profile.Metrics.TotalSentETH += tx.ValueETH()
		} else if domain.AddressKey(tx.To) == addrKey {
			profile.Metrics.IncomingTxCount++
			profile.Metrics.TotalReceivedETH += tx.ValueETH()
		}

		if tx.Failed() {
			profile.Metrics.FailedTxCount++
		}

		totalGasUnits += tx.GasUsedUnits()
		profile.Metrics.TotalGasSpentETH += tx.GasSpentETH()
		validCount++
	}

	for _, tx := range internalTxs {
		ts := tx.Timestamp()
		if ts > now {
			continue
		}
		observe(ts)

		if from := domain.AddressKey(tx.From); from != "" && from != addrKey {
			counterparties[from] = struct{}{}
		}
		if to := domain.AddressKey(tx.To); to != "" && to != addrKey {
			counterparties[to] = struct{}{}
		}

		if domain.AddressKey(tx.From) == addrKey {
			profile.Metrics.TotalSentETH += tx.ValueETH()
		} else if domain.AddressKey(tx.To) == addrKey {
			profile.Metrics.TotalReceivedETH += tx.ValueETH()
		}
	}

	profile.Metrics.TotalTransactions = validCount
	profile.Metrics.UniqueInteractedAddrs = len(counterparties)
	if validCount > 0 {
		profile.Metrics.AvgGasUsed = totalGasUnits / float64(validCount)
	}

	if firstTS > 0 {
		profile.Metrics.WalletAgeDays = int((now - firstTS) / 86400)
		profile.Metrics.FirstTxTimestamp = time.Unix(firstTS, 0).UTC().Format(dateFormat)
	}
	if lastTS > 0 {
		profile.Metrics.LastTxTimestamp = time.Unix(lastTS, 0).UTC().Format(dateFormat)
	}
}

// computeDeFi summarizes interactions with registered protocol
// contracts across ETH transactions and token transfers.
func (p *WalletProfiler) computeDeFi(address string, normalTxs []indexer.Transaction, tokenTxs []indexer.TokenTransfer) domain.DeFiActivity {
	activity := domain.DeFiActivity{
		Protocols: make(map[string]*domain.DeFiProtocolActivity),
	}

	record := func(to string, value float64, ts int64) {
		label, ok := p.registry.ProtocolLabel(to)
		if !ok {
			return
		}
		entry := activity.Protocols[label]
		if entry == nil {
			entry = &domain.DeFiProtocolActivity{}
			activity.Protocols[label] = entry
		}

		entry.InteractionCount++
		entry.TotalValue += value
		activity.TotalInteractions++
		activity.TotalValueLocked += value

		stamp := time.Unix(ts, 0).UTC().Format(time.RFC3339)
		if stamp > entry.LastInteraction {
			entry.LastInteraction = stamp
		}
		if stamp > activity.LastInteraction {
			activity.LastInteraction = stamp
		}
	}

	for _, tx := range normalTxs {
		record(tx.To, tx.ValueETH(), tx.Timestamp())
	}
	for _, tx := range tokenTxs {
		record(tx.To, tx.Amount(), tx.Timestamp())
	}
	return activity
}

func (p *WalletProfiler) log(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[profile] "+format, args...)
	}
}
