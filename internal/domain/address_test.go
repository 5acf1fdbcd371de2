package domain

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0x7a250d5630b4cf539739df2c5dacb4c659f2488d")
	if err != nil {
		t.Fatalf("NormalizeAddress: %v", err)
	}

	// EIP-55 checksummed form
	if got != "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D" {
		t.Errorf("unexpected checksummed address: %s", got)
	}
}

func TestNormalizeAddress_Invalid(t *testing.T) {
	cases := []string{
		"",
		"0x123",
		"not-an-address",
		"0x7a250d5630b4cf539739df2c5dacb4c659f2488dzz",
	}

	for _, input := range cases {
		_, err := NormalizeAddress(input)
		if err == nil {
			t.Errorf("expected error for %q", input)
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %q, got %v", input, err)
		}
	}
}

func TestAddressKey(t *testing.T) {
	a := AddressKey("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	b := AddressKey("0x7a250d5630b4cf539739df2c5dacb4c659f2488d")
	if a != b {
		t.Errorf("keys should match: %s vs %s", a, b)
	}
}

func TestIsZeroAddress(t *testing.T) {
	if !IsZeroAddress("0x0000000000000000000000000000000000000000") {
		t.Error("zero address not recognized")
	}
	if IsZeroAddress("0x7a250d5630b4cf539739df2c5dacb4c659f2488d") {
		t.Error("non-zero address recognized as zero")
	}
}

func TestDedupTransfers(t *testing.T) {
	transfers := []Transfer{
		{TxID: "0xaa", Amount: 1},
		{TxID: "0xbb", Amount: 2},
		{TxID: "0xaa", Amount: 3},
	}

	out := DedupTransfers(transfers)
	if len(out) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(out))
	}
	if out[0].TxID != "0xaa" || out[0].Amount != 1 {
		t.Errorf("first occurrence should win, got %+v", out[0])
	}
}
