// Package orchestrator coordinates a full address analysis.
// Flow: classification → evidence collection → scoring → report assembly
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/profile"
	"ethyr-engine/internal/risk"
)

// DefaultTimeout bounds one full analysis.
const DefaultTimeout = 60 * time.Second

// ContractProfiler collects contract evidence.
type ContractProfiler interface {
	Profile(ctx context.Context, address string) (*profile.ContractProfile, error)
}

// WalletProfiler collects wallet activity.
type WalletProfiler interface {
	Profile(ctx context.Context, address string) (*profile.WalletProfile, error)
}

// MarketOracle assembles a token's market snapshot.
type MarketOracle interface {
	Snapshot(ctx context.Context, token common.Address) (*domain.TokenMarketSnapshot, error)
}

// HolderAnalyzer aggregates a token's recent holder activity.
type HolderAnalyzer interface {
	Analyze(ctx context.Context, token string, totalSupply, priceUSD float64) (*domain.HolderActivity, error)
}

// Scorer turns a feature set into a risk assessment.
type Scorer interface {
	Evaluate(features domain.FeatureSet, isToken bool, overview string) domain.RiskAssessment
}

// Orchestrator runs the analysis phases for one address at a time.
type Orchestrator struct {
	chain     ethereum.Client
	contracts ContractProfiler
	wallets   WalletProfiler
	oracle    MarketOracle
	holders   HolderAnalyzer
	scorer    Scorer

	timeout time.Duration
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required components
	Chain     ethereum.Client
	Contracts ContractProfiler
	Wallets   WalletProfiler
	Oracle    MarketOracle
	Holders   HolderAnalyzer
	Scorer    Scorer

	// Options
	Timeout time.Duration // defaults to DefaultTimeout
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		chain:     opts.Chain,
		contracts: opts.Contracts,
		wallets:   opts.Wallets,
		oracle:    opts.Oracle,
		holders:   opts.Holders,
		scorer:    opts.Scorer,
		timeout:   timeout,
		verbose:   opts.Verbose,
	}
}

// Analyze runs the full analysis for raw. The returned report is always
// renderable; a non-nil error additionally classifies the failure:
// domain.ErrInvalidInput for a malformed address, anything else for an
// analysis that could not complete.
func (o *Orchestrator) Analyze(ctx context.Context, raw string) (report *domain.AddressReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
			report = domain.ErrorReport(raw, fmt.Sprintf("Error analyzing address: %v", r))
		}
	}()

	address, aerr := domain.NormalizeAddress(raw)
	if aerr != nil {
		return domain.ErrorReport(raw, "Invalid Ethereum address format"), aerr
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	o.log("Phase 1: Classifying %s...", address)
	code, cerr := o.chain.CodeAt(ctx, common.HexToAddress(address))
	if cerr != nil {
		o.log("  classification failed, treating as wallet: %v", cerr)
	}

	if cerr != nil || len(code) == 0 {
		return o.analyzeWallet(ctx, address, cerr == nil)
	}
	return o.analyzeContract(ctx, address)
}

// analyzeWallet profiles a non-contract address and scores it. Wallets
// always score zero; the assessment supplies the explanation shape.
func (o *Orchestrator) analyzeWallet(ctx context.Context, address string, classified bool) (*domain.AddressReport, error) {
	o.log("Phase 2: Profiling wallet...")
	wp, err := o.wallets.Profile(ctx, address)
	if err != nil {
		return domain.ErrorReport(address, fmt.Sprintf("Error analyzing address: %v", err)), err
	}

	o.log("Phase 3: Scoring...")
	overview := risk.BuildWalletOverview(&wp.Metrics)
	assessment := o.scorer.Evaluate(domain.FeatureSet{}, false, overview)

	o.log("Phase 4: Assembling report...")
	availability := wp.Availability
	if availability == nil {
		availability = make(map[string]bool)
	}
	if !classified {
		availability["classification"] = false
	}

	return &domain.AddressReport{
		Address:             address,
		Type:                domain.TypeWallet,
		RiskScore:           assessment.Score,
		RiskTier:            assessment.Tier.String(),
		Explanation:         assessment.Explanation,
		Summary:             walletSummary(wp),
		Features:            &domain.FeatureSet{},
		WalletMetrics:       &wp.Metrics,
		DeFiActivity:        &wp.DeFi,
		FeatureAvailability: availability,
	}, nil
}

// analyzeContract profiles a contract, gathers market and holder data
// when it is a token, and scores the combined evidence.
func (o *Orchestrator) analyzeContract(ctx context.Context, address string) (*domain.AddressReport, error) {
	tokenAddr := common.HexToAddress(address)

	o.log("Phase 2: Collecting evidence...")
	meta, merr := ethereum.FetchTokenMetadata(ctx, o.chain, tokenAddr)
	isToken := merr == nil

	var (
		cp       *profile.ContractProfile
		snapshot *domain.TokenMarketSnapshot
		activity *domain.HolderActivity

		cpErr, snapErr, holdErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cp, cpErr = o.contracts.Profile(gctx, address)
		return nil
	})
	if isToken {
		g.Go(func() error {
			snapshot, snapErr = o.oracle.Snapshot(gctx, tokenAddr)

			// Holder thresholds need the price, so this waits for the snapshot
			price := 0.0
			if snapErr == nil {
				price = snapshot.PriceUSD
			}
			activity, holdErr = o.holders.Analyze(gctx, address, meta.TotalSupply, price)
			return nil
		})
	}
	g.Wait()

	if cpErr != nil {
		return domain.ErrorReport(address, fmt.Sprintf("Error analyzing address: %v", cpErr)), cpErr
	}

	o.log("Phase 3: Scoring...")
	overview := risk.BuildContractOverview(cp.Features)
	assessment := o.scorer.Evaluate(cp.Features, isToken, overview)

	o.log("Phase 4: Assembling report...")
	availability := cp.Availability
	if isToken {
		availability["market_data"] = snapErr == nil
		availability["holder_activity"] = holdErr == nil
		if snapErr != nil {
			o.log("  market data unavailable: %v", snapErr)
		}
		if holdErr != nil {
			o.log("  holder activity unavailable: %v", holdErr)
		}
	}

	addressType := domain.TypeContract
	var tokenInfo *domain.TokenDetails
	if isToken {
		addressType = domain.TypeToken
		tokenInfo = &domain.TokenDetails{
			TokenMetadata:       *meta,
			TokenMarketSnapshot: snapshot,
			HolderActivity:      activity,
		}
	}

	features := cp.Features
	return &domain.AddressReport{
		Address:             address,
		Type:                addressType,
		RiskScore:           assessment.Score,
		RiskTier:            assessment.Tier.String(),
		Explanation:         assessment.Explanation,
		Summary:             contractSummary(cp, meta, snapshot, activity, isToken),
		Features:            &features,
		IsContract:          true,
		IsToken:             isToken,
		TokenInfo:           tokenInfo,
		FeatureAvailability: availability,
	}, nil
}

// contractSummary flattens the headline numbers for a contract report.
// Token contracts carry the additional market fields.
func contractSummary(cp *profile.ContractProfile, meta *domain.TokenMetadata, snapshot *domain.TokenMarketSnapshot, activity *domain.HolderActivity, isToken bool) map[string]interface{} {
	summary := map[string]interface{}{
		"verified":            cp.Features.VerifiedContract,
		"creator_address":     cp.CreatorAddress,
		"total_transactions":  cp.TotalTransactions,
		"unique_interactions": cp.UniqueInteractions,
		"total_value":         cp.Features.TransferVolume24h,
		"is_contract":         true,
		"contract_age_days":   cp.Features.ContractAgeDays,
		"mint_events":         cp.Features.MintEventCount,
		"burn_events":         cp.Features.BurnEventCount,
		"lp_locked":           cp.Features.LPLocked,
	}
	if !isToken {
		return summary
	}

	summary["creation_date"] = cp.CreationDate
	summary["contract_name"] = cp.ContractName
	summary["total_supply"] = meta.TotalSupply
	if activity != nil {
		summary["total_holders"] = activity.Activity.ActiveAddresses
	}
	if snapshot != nil {
		summary["market_cap"] = snapshot.MarketCap
		summary["price_usd"] = snapshot.PriceUSD
		summary["total_liquidity_eth"] = snapshot.TotalLiquidityETH
		summary["volume_24h"] = snapshot.Volume24h
	}
	return summary
}

// walletSummary flattens the wallet metrics and protocol activity into
// one report section.
func walletSummary(wp *profile.WalletProfile) map[string]interface{} {
	m := wp.Metrics
	return map[string]interface{}{
		"balance":                     m.Balance,
		"total_transactions":          m.TotalTransactions,
		"first_tx_timestamp":          m.FirstTxTimestamp,
		"last_tx_timestamp":           m.LastTxTimestamp,
		"unique_interacted_addresses": m.UniqueInteractedAddrs,
		"incoming_tx_count":           m.IncomingTxCount,
		"outgoing_tx_count":           m.OutgoingTxCount,
		"failed_tx_count":             m.FailedTxCount,
		"total_received_eth":          m.TotalReceivedETH,
		"total_sent_eth":              m.TotalSentETH,
		"avg_gas_used":                m.AvgGasUsed,
		"total_gas_spent_eth":         m.TotalGasSpentETH,
		"wallet_age_days":             m.WalletAgeDays,
		"total_interactions":          wp.DeFi.TotalInteractions,
		"total_value_locked":          wp.DeFi.TotalValueLocked,
		"last_interaction":            wp.DeFi.LastInteraction,
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
