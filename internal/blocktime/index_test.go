package blocktime

import (
	"context"
	"testing"
	"time"

	"ethyr-engine/internal/ethereum"
	"ethyr-engine/internal/ethereum/stub"
)

// seedChain adds blocks [0, head] spaced 12 seconds apart starting at
// genesisTime.
func seedChain(head int64, genesisTime int64) *stub.Client {
	chain := stub.NewClient()
	for n := int64(0); n <= head; n++ {
		chain.AddBlock(&ethereum.Block{Number: n, Timestamp: genesisTime + n*12})
	}
	return chain
}

func TestBlockDayAgo(t *testing.T) {
	// 20000 blocks at 12s; head timestamp = 1700000000 + 20000*12
	chain := seedChain(20000, 1700000000)
	index := New(chain, Options{})
	ctx := context.Background()

	got, err := index.BlockDayAgo(ctx)
	if err != nil {
		t.Fatalf("BlockDayAgo: %v", err)
	}

	// 24h = 86400s = exactly 7200 blocks at 12s
	want := int64(20000 - 7200)
	target := int64(1700000000 + 20000*12 - 86400)

	block, err := chain.BlockByNumber(ctx, got)
	if err != nil {
		t.Fatalf("BlockByNumber: %v", err)
	}

	diff := block.Timestamp - target
	if diff < 0 {
		diff = -diff
	}
	if diff >= 300 {
		t.Errorf("block %d timestamp %d not within tolerance of %d", got, block.Timestamp, target)
	}

	// Should land very close to the exact block
	if got < want-30 || got > want+30 {
		t.Errorf("expected block near %d, got %d", want, got)
	}
}

func TestBlockNear_TargetBeforeWindow(t *testing.T) {
	// Target far older than the search window: search collapses to the
	// lower bound.
	chain := seedChain(10000, 1700000000)
	index := New(chain, Options{})
	ctx := context.Background()

	got, err := index.BlockNear(ctx, 1600000000)
	if err != nil {
		t.Fatalf("BlockNear: %v", err)
	}

	if got != 10000-7200 {
		t.Errorf("expected lower bound %d, got %d", 10000-7200, got)
	}
}

func TestBlockNear_ShortChain(t *testing.T) {
	// Chain younger than one day: lower bound clamps at genesis.
	chain := seedChain(100, 1700000000)
	index := New(chain, Options{})
	ctx := context.Background()

	got, err := index.BlockNear(ctx, 1600000000)
	if err != nil {
		t.Fatalf("BlockNear: %v", err)
	}

	if got != 0 {
		t.Errorf("expected genesis, got %d", got)
	}
}

func TestBlockNear_PlateauTimestamps(t *testing.T) {
	// Runs of blocks can share one timestamp; the search has to
	// converge on a plateau without oscillating.
	chain := stub.NewClient()
	for n := int64(0); n <= 10000; n++ {
		chain.AddBlock(&ethereum.Block{Number: n, Timestamp: 1700000000 + (n/50)*600})
	}

	index := New(chain, Options{})
	ctx := context.Background()

	// Blocks 9000-9049 all carry this timestamp
	target := int64(1700000000 + 180*600)
	got, err := index.BlockNear(ctx, target)
	if err != nil {
		t.Fatalf("BlockNear: %v", err)
	}

	block, err := chain.BlockByNumber(ctx, got)
	if err != nil {
		t.Fatalf("BlockByNumber: %v", err)
	}
	diff := block.Timestamp - target
	if diff < 0 {
		diff = -diff
	}
	if diff >= 300 {
		t.Errorf("block %d timestamp %d not within tolerance of %d", got, block.Timestamp, target)
	}

	// A target between plateau values never matches the tolerance; the
	// search still terminates on a neighboring plateau.
	between := target + 300
	got, err = index.BlockNear(ctx, between)
	if err != nil {
		t.Fatalf("BlockNear: %v", err)
	}
	block, err = chain.BlockByNumber(ctx, got)
	if err != nil {
		t.Fatalf("BlockByNumber: %v", err)
	}
	diff = block.Timestamp - between
	if diff < 0 {
		diff = -diff
	}
	if diff > 600 {
		t.Errorf("block %d timestamp %d more than one step from %d", got, block.Timestamp, between)
	}
}

func TestBlockNear_CustomOptions(t *testing.T) {
	// 2s blocks: a day is 43200 blocks, tight tolerance still converges.
	chain := stub.NewClient()
	for n := int64(0); n <= 50000; n++ {
		chain.AddBlock(&ethereum.Block{Number: n, Timestamp: 1700000000 + n*2})
	}

	index := New(chain, Options{BlocksPerDay: 43200, Tolerance: 30 * time.Second})
	ctx := context.Background()

	target := int64(1700000000 + 50000*2 - 86400)
	got, err := index.BlockNear(ctx, target)
	if err != nil {
		t.Fatalf("BlockNear: %v", err)
	}

	block, _ := chain.BlockByNumber(ctx, got)
	diff := block.Timestamp - target
	if diff < 0 {
		diff = -diff
	}
	if diff >= 30 {
		t.Errorf("block %d timestamp %d outside tolerance of %d", got, block.Timestamp, target)
	}
}
