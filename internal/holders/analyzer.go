package holders

import (
	"context"
	"errors"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/indexer"
	"ethyr-engine/internal/registry"
)

// TransferSource lists token transfers. Satisfied by *indexer.Client.
type TransferSource interface {
	TokenTransferList(ctx context.Context, address string, opts indexer.ListOpts) ([]indexer.TokenTransfer, error)
}

// BlockSource resolves the block one day back. Satisfied by
// *blocktime.Index.
type BlockSource interface {
	BlockDayAgo(ctx context.Context) (int64, error)
}

// Analyzer fetches a token's recent transfers and computes holder
// activity over them.
type Analyzer struct {
	transfers TransferSource
	blocks    BlockSource
	registry  *registry.Registry
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(transfers TransferSource, blocks BlockSource, reg *registry.Registry) *Analyzer {
	return &Analyzer{
		transfers: transfers,
		blocks:    blocks,
		registry:  reg,
	}
}

// Analyze fetches transfers for token since roughly one day ago and
// aggregates them. A token with no recent transfers yields the empty
// report, not an error.
func (a *Analyzer) Analyze(ctx context.Context, token string, totalSupply, priceUSD float64) (*domain.HolderActivity, error) {
	// A failed window lookup degrades to a full-history scan
	fromBlock, err := a.blocks.BlockDayAgo(ctx)
	if err != nil {
		fromBlock = 0
	}

	rows, err := a.transfers.TokenTransferList(ctx, token, indexer.ListOpts{
		StartBlock: fromBlock,
		Sort:       "desc",
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			rows = nil
		} else {
			return nil, err
		}
	}

	transfers := make([]domain.Transfer, len(rows))
	for i, row := range rows {
		transfers[i] = domain.Transfer{
			TxID:      row.Hash,
			From:      domain.AddressKey(row.From),
			To:        domain.AddressKey(row.To),
			Amount:    row.Amount(),
			Timestamp: row.Timestamp(),
		}
	}

	return Compute(transfers, token, totalSupply, priceUSD, a.registry), nil
}
