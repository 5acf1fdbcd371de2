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

// ContractProfile is the collected evidence about a contract address.
type ContractProfile struct {
	Features           domain.FeatureSet
	Availability       map[string]bool
	ContractName       string
	CreationDate       string
	CreatorAddress     string
	TotalTransactions  int
	UniqueInteractions int
}

// ContractProfiler gathers contract evidence from the chain and the
// indexer. Individual fetch failures degrade the affected fields to
// their neutral defaults instead of failing the profile.
type ContractProfiler struct {
	chain    ethereum.Client
	source   HistorySource
	registry *registry.Registry
	verbose  bool
}

// ContractProfilerOptions configures ContractProfiler.
type ContractProfilerOptions struct {
	Chain    ethereum.Client
	Source   HistorySource
	Registry *registry.Registry
	Verbose  bool
}

// NewContractProfiler creates a ContractProfiler.
func NewContractProfiler(opts ContractProfilerOptions) *ContractProfiler {
	return &ContractProfiler{
		chain:    opts.Chain,
		source:   opts.Source,
		registry: opts.Registry,
		verbose:  opts.Verbose,
	}
}

// Profile collects the contract evidence for address. The five upstream
// fetches run concurrently; each failure is recorded in Availability and
// leaves its fields zeroed.
func (p *ContractProfiler) Profile(ctx context.Context, address string) (*ContractProfile, error) {
	now := headTime(ctx, p.chain)

	var (
		source    *indexer.ContractSource
		creations []indexer.ContractCreation
		code      []byte
		tokenTxs  []indexer.TokenTransfer
		normalTxs []indexer.Transaction

		srcErr, creatErr, codeErr, tokErr, txErr error
	)

	// Errors degrade fields rather than abort, so every fetch runs to
	// completion.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		source, srcErr = p.source.ContractSource(gctx, address)
		return nil
	})
	g.Go(func() error {
		creations, creatErr = p.source.ContractCreation(gctx, address)
		return nil
	})
	g.Go(func() error {
		code, codeErr = p.chain.CodeAt(gctx, common.HexToAddress(address))
		return nil
	})
	g.Go(func() error {
		tokenTxs, tokErr = p.source.TokenTransferList(gctx, address, indexer.ListOpts{Sort: "desc"})
		return nil
	})
	g.Go(func() error {
		normalTxs, txErr = p.source.TransactionList(gctx, address, indexer.ListOpts{Sort: "asc"})
		return nil
	})
	g.Wait()

	profile := &ContractProfile{
		Features:     domain.FeatureSet{IsContract: true},
		Availability: make(map[string]bool, 8),
	}

	profile.Availability[FeatureContractSource] = srcErr == nil
	if srcErr == nil {
		profile.Features.VerifiedContract = source.Verified()
		profile.ContractName = source.ContractName
	} else {
		p.log("contract source unavailable for %s: %v", address, srcErr)
	}

	profile.Availability[FeatureBytecode] = codeErr == nil
	if codeErr == nil {
		profile.Features.HasMintPrivileges = codeContainsAny(code, mintSelectors)
		profile.Features.HoneypotResult = codeContainsAny(code, honeypotSelectors)
	} else {
		p.log("bytecode unavailable for %s: %v", address, codeErr)
	}

	p.applyTokenTransfers(profile, address, tokenTxs, tokErr, now)
	p.applyTransactions(profile, address, normalTxs, txErr, now)

	// The registered deployer wins; the first transaction sender is the
	// fallback and the comparison source.
	var creator string
	if creatErr == nil && len(creations) > 0 {
		creator = creations[0].ContractCreator
	}
	var firstFrom string
	if txErr == nil && len(normalTxs) > 0 {
		firstFrom = normalTxs[0].From
	}
	profile.Availability[FeatureCreator] = creatErr == nil || txErr == nil
	switch {
	case creator != "":
		profile.CreatorAddress = creator
	case firstFrom != "":
		profile.CreatorAddress = firstFrom
	}
	profile.Features.OwnerAddress = profile.CreatorAddress
	profile.Features.IsOwnerDeployer = creator != "" && firstFrom != "" &&
		domain.AddressKey(creator) == domain.AddressKey(firstFrom)
	if creatErr != nil {
		p.log("creation record unavailable for %s: %v", address, creatErr)
	}

	return profile, nil
}

// applyTokenTransfers derives mint and burn counts and the 24h transfer
// volume from the contract's token transfer history.
func (p *ContractProfiler) applyTokenTransfers(profile *ContractProfile, address string, tokenTxs []indexer.TokenTransfer, tokErr error, now int64) {
	ok := tokErr == nil
	profile.Availability[FeatureMintActivity] = ok
	profile.Availability[FeatureBurnEvents] = ok
	profile.Availability[FeatureTransferVolume] = ok
	if !ok {
		p.log("token transfers unavailable for %s: %v", address, tokErr)
		return
	}

	addrKey := domain.AddressKey(address)
	cutoff := now - 24*3600
	for _, tx := range tokenTxs {
		if domain.IsZeroAddress(tx.From) {
			profile.Features.MintEventCount++
		}
		if domain.IsZeroAddress(tx.To) {
			profile.Features.BurnEventCount++
		}
		if domain.AddressKey(tx.ContractAddress) == addrKey && tx.Timestamp() >= cutoff {
			profile.Features.TransferVolume24h += tx.Amount()
		}
	}
}

// applyTransactions derives age, interaction counts and the liquidity
// lock flag from the contract's transaction history, oldest first.
func (p *ContractProfiler) applyTransactions(profile *ContractProfile, address string, normalTxs []indexer.Transaction, txErr error, now int64) {
	ok := txErr == nil
	profile.Availability[FeatureContractAge] = ok
	profile.Availability[FeatureLiquidityLock] = ok
	if !ok {
		p.log("transaction history unavailable for %s: %v", address, txErr)
		return
	}

	addrKey := domain.AddressKey(address)
	counterparties := make(map[string]struct{})
	for _, tx := range normalTxs {
		if from := domain.AddressKey(tx.From); from != "" && from != addrKey {
			counterparties[from] = struct{}{}
		}
		if to := domain.AddressKey(tx.To); to != "" && to != addrKey {
			counterparties[to] = struct{}{}
		}
		if p.registry.IsLocker(tx.To) {
			profile.Features.LPLocked = true
		}
	}
	profile.TotalTransactions = len(normalTxs)
	profile.UniqueInteractions = len(counterparties)

	if len(normalTxs) > 0 {
		created := normalTxs[0].Timestamp()
		if created > 0 && created <= now {
			profile.Features.ContractAgeDays = int((now - created) / 86400)
			profile.CreationDate = time.Unix(created, 0).UTC().Format(time.RFC3339)
		}
	}
}

func (p *ContractProfiler) log(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[profile] "+format, args...)
	}
}
