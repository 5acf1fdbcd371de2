package profile

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
	"ethyr-engine/internal/indexer"
)

const testWallet = "0x9000000000000000000000000000000000000009"

func TestWalletProfiler_Metrics(t *testing.T) {
	chain := testChain()
	chain.AddBalance(common.HexToAddress(testWallet),
		new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)))

	src := &fakeSource{
		txs: []indexer.Transaction{
			// incoming 1.5 ETH
			{Hash: "0x1", From: testCaller, To: testWallet, Value: "1500000000000000000",
				GasUsed: "21000", GasPrice: "50000000000", IsError: "0", TimeStamp: ts(-100 * 86400)},
			// outgoing 0.5 ETH
			{Hash: "0x2", From: testWallet, To: testCaller, Value: "500000000000000000",
				GasUsed: "21000", GasPrice: "50000000000", IsError: "0", TimeStamp: ts(-50 * 86400)},
			// failed outgoing
			{Hash: "0x3", From: testWallet, To: testRouter, Value: "0",
				GasUsed: "21000", GasPrice: "50000000000", IsError: "1", TimeStamp: ts(-10 * 86400)},
		},
		internal: []indexer.Transaction{
			// internal credit adds value but no transaction count
			{Hash: "0x4", From: testRouter, To: testWallet, Value: "250000000000000000", TimeStamp: ts(-5 * 86400)},
		},
	}

	profiler := NewWalletProfiler(WalletProfilerOptions{
		Chain:    chain,
		Source:   src,
		Registry: testLockerRegistry(),
	})

	profile, err := profiler.Profile(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	m := profile.Metrics
	if math.Abs(m.Balance-2.0) > 1e-9 {
		t.Errorf("expected balance 2 ETH, got %v", m.Balance)
	}
	if m.TotalTransactions != 3 {
		t.Errorf("expected 3 transactions, got %d", m.TotalTransactions)
	}
	if m.IncomingTxCount != 1 || m.OutgoingTxCount != 2 {
		t.Errorf("expected 1 in / 2 out, got %d/%d", m.IncomingTxCount, m.OutgoingTxCount)
	}
	if m.FailedTxCount != 1 {
		t.Errorf("expected 1 failed, got %d", m.FailedTxCount)
	}
	if math.Abs(m.TotalReceivedETH-1.75) > 1e-9 {
		t.Errorf("expected received 1.75 ETH, got %v", m.TotalReceivedETH)
	}
	if math.Abs(m.TotalSentETH-0.5) > 1e-9 {
		t.Errorf("expected sent 0.5 ETH, got %v", m.TotalSentETH)
	}
	if math.Abs(m.AvgGasUsed-21000) > 1e-9 {
		t.Errorf("expected avg gas 21000, got %v", m.AvgGasUsed)
	}
	// 3 * 21000 * 50 gwei
	if math.Abs(m.TotalGasSpentETH-0.00315) > 1e-9 {
		t.Errorf("expected gas spend 0.00315 ETH, got %v", m.TotalGasSpentETH)
	}
	if m.WalletAgeDays != 100 {
		t.Errorf("expected wallet age 100 days, got %d", m.WalletAgeDays)
	}
	// caller and router; self excluded
	if m.UniqueInteractedAddrs != 2 {
		t.Errorf("expected 2 counterparties, got %d", m.UniqueInteractedAddrs)
	}
	if m.FirstTxTimestamp == "" || m.LastTxTimestamp == "" {
		t.Errorf("expected formatted timestamps, got %q / %q", m.FirstTxTimestamp, m.LastTxTimestamp)
	}
}

func TestWalletProfiler_TimestampFormat(t *testing.T) {
	src := &fakeSource{
		txs: []indexer.Transaction{
			// 2023-07-22 03:46:40 UTC
			{Hash: "0x1", From: testCaller, To: testWallet, Value: "0", TimeStamp: "1689997600"},
		},
	}

	profiler := NewWalletProfiler(WalletProfilerOptions{
		Chain:    testChain(),
		Source:   src,
		Registry: testLockerRegistry(),
	})

	profile, err := profiler.Profile(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if profile.Metrics.FirstTxTimestamp != "07/22/2023" {
		t.Errorf("expected 07/22/2023, got %s", profile.Metrics.FirstTxTimestamp)
	}
}

func TestWalletProfiler_ClockSkewExcluded(t *testing.T) {
	src := &fakeSource{
		txs: []indexer.Transaction{
			{Hash: "0x1", From: testCaller, To: testWallet, Value: "1000000000000000000", TimeStamp: ts(-86400)},
			// stamped after the chain head
			{Hash: "0x2", From: testCaller, To: testWallet, Value: "9000000000000000000", TimeStamp: ts(3600)},
		},
	}

	profiler := NewWalletProfiler(WalletProfilerOptions{
		Chain:    testChain(),
		Source:   src,
		Registry: testLockerRegistry(),
	})

	profile, err := profiler.Profile(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if profile.Metrics.TotalTransactions != 1 {
		t.Errorf("expected skewed transaction excluded, got %d", profile.Metrics.TotalTransactions)
	}
	if math.Abs(profile.Metrics.TotalReceivedETH-1.0) > 1e-9 {
		t.Errorf("expected received 1 ETH, got %v", profile.Metrics.TotalReceivedETH)
	}
}

func TestWalletProfiler_DeFiActivity(t *testing.T) {
	src := &fakeSource{
		txs: []indexer.Transaction{
			{Hash: "0x1", From: testWallet, To: testRouter, Value: "1000000000000000000", TimeStamp: ts(-7200)},
			{Hash: "0x2", From: testWallet, To: testCaller, Value: "1000000000000000000", TimeStamp: ts(-3600)},
		},
		tokens: []indexer.TokenTransfer{
			{Hash: "0x3", From: testWallet, To: testRouter, Value: "100000000000000000000",
				TokenDecimal: "18", TimeStamp: ts(-1800)},
		},
	}

	profiler := NewWalletProfiler(WalletProfilerOptions{
		Chain:    testChain(),
		Source:   src,
		Registry: testLockerRegistry(),
	})

	profile, err := profiler.Profile(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	defi := profile.DeFi
	if defi.TotalInteractions != 2 {
		t.Errorf("expected 2 protocol interactions, got %d", defi.TotalInteractions)
	}
	if math.Abs(defi.TotalValueLocked-101) > 1e-9 {
		t.Errorf("expected total value 101, got %v", defi.TotalValueLocked)
	}

	entry := defi.Protocols["Test Router"]
	if entry == nil {
		t.Fatal("expected Test Router entry")
	}
	if entry.InteractionCount != 2 {
		t.Errorf("expected 2 interactions, got %d", entry.InteractionCount)
	}
	if entry.LastInteraction != defi.LastInteraction || entry.LastInteraction == "" {
		t.Errorf("expected matching last interaction, got %q / %q", entry.LastInteraction, defi.LastInteraction)
	}
}

func TestWalletProfiler_DegradedHistory(t *testing.T) {
	src := &fakeSource{txErr: domain.ErrFetchFailed}

	profiler := NewWalletProfiler(WalletProfilerOptions{
		Chain:    testChain(),
		Source:   src,
		Registry: testLockerRegistry(),
	})

	profile, err := profiler.Profile(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if profile.Availability[FeatureTxHistory] {
		t.Error("expected tx_history unavailable")
	}
	if profile.Metrics.TotalTransactions != 0 {
		t.Errorf("expected no transactions, got %d", profile.Metrics.TotalTransactions)
	}
}
