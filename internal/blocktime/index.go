// Package blocktime maps timestamps to block numbers without an index
// service, using binary search over block headers.
package blocktime

import (
	"context"
	"time"

	"ethyr-engine/internal/ethereum"
)

// Default search parameters for ~12s block times.
const (
	DefaultBlocksPerDay = 7200
	DefaultTolerance    = 5 * time.Minute
)

// Options configures Index.
type Options struct {
	// BlocksPerDay bounds the search window below the chain head.
	BlocksPerDay int64
	// Tolerance is how close a block's timestamp must be to the target
	// to stop the search early.
	Tolerance time.Duration
}

// Index resolves block numbers near target timestamps.
type Index struct {
	chain        ethereum.Client
	blocksPerDay int64
	tolerance    int64
}

// New creates an Index over chain.
func New(chain ethereum.Client, opts Options) *Index {
	if opts.BlocksPerDay <= 0 {
		opts.BlocksPerDay = DefaultBlocksPerDay
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return &Index{
		chain:        chain,
		blocksPerDay: opts.BlocksPerDay,
		tolerance:    int64(opts.Tolerance / time.Second),
	}
}

// BlockDayAgo returns the number of a block mined near 24 hours before
// the current head.
func (i *Index) BlockDayAgo(ctx context.Context) (int64, error) {
	head, err := i.chain.LatestBlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	current, err := i.chain.BlockByNumber(ctx, head)
	if err != nil {
		return 0, err
	}

	return i.blockNear(ctx, head, current.Timestamp-86400)
}

// BlockNear returns the number of a block mined near target, searched
// within one day's worth of blocks below the chain head.
func (i *Index) BlockNear(ctx context.Context, target int64) (int64, error) {
	head, err := i.chain.LatestBlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return i.blockNear(ctx, head, target)
}

// blockNear binary searches [head-blocksPerDay, head] for a block whose
// timestamp is within tolerance of target. When the search window closes
// without a match, the lower bound is returned: overshooting backwards
// only widens the scanned range, never truncates it.
func (i *Index) blockNear(ctx context.Context, head, target int64) (int64, error) {
	left := head - i.blocksPerDay
	if left < 0 {
		left = 0
	}
	right := head

	for left < right {
		mid := (left + right) / 2

		block, err := i.chain.BlockByNumber(ctx, mid)
		if err != nil {
			return 0, err
		}

		diff := block.Timestamp - target
		if diff < 0 {
			diff = -diff
		}
		if diff < i.tolerance {
			return mid, nil
		}

		if block.Timestamp < target {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}

	return left, nil
}
