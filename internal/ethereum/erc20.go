package ethereum

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
)

// ERC-20 read selectors.
var (
	SelectorName        = [4]byte{0x06, 0xfd, 0xde, 0x03}
	SelectorSymbol      = [4]byte{0x95, 0xd8, 0x9b, 0x41}
	SelectorDecimals    = [4]byte{0x31, 0x3c, 0xe5, 0x67}
	SelectorTotalSupply = [4]byte{0x18, 0x16, 0x0d, 0xdd}
	SelectorBalanceOf   = [4]byte{0x70, 0xa0, 0x82, 0x31}
)

// TokenDecimals reads the decimals of token, defaulting to 18 when the
// contract does not answer.
func TokenDecimals(ctx context.Context, c Client, token common.Address) int {
	ret, err := c.CallContract(ctx, token, PackCall(SelectorDecimals))
	if err != nil || len(ret) < 32 {
		return 18
	}
	d, err := DecodeUint(ret, 0)
	if err != nil || !d.IsInt64() || d.Int64() > 77 {
		return 18
	}
	return int(d.Int64())
}

// FetchTokenMetadata probes token for its ERC-20 self-description.
// Returns domain.ErrNotFound when the contract answers none of the
// metadata calls, meaning it is not a token.
func FetchTokenMetadata(ctx context.Context, c Client, token common.Address) (*domain.TokenMetadata, error) {
	meta := &domain.TokenMetadata{Decimals: 18}
	answered := false

	if ret, err := c.CallContract(ctx, token, PackCall(SelectorName)); err == nil && len(ret) > 0 {
		if name, err := DecodeString(ret); err == nil && name != "" {
			meta.Name = name
			answered = true
		}
	}

	if ret, err := c.CallContract(ctx, token, PackCall(SelectorSymbol)); err == nil && len(ret) > 0 {
		if symbol, err := DecodeString(ret); err == nil && symbol != "" {
			meta.Symbol = symbol
			answered = true
		}
	}

	if ret, err := c.CallContract(ctx, token, PackCall(SelectorDecimals)); err == nil && len(ret) >= 32 {
		if d, err := DecodeUint(ret, 0); err == nil && d.IsInt64() && d.Int64() <= 77 {
			meta.Decimals = int(d.Int64())
			answered = true
		}
	}

	if ret, err := c.CallContract(ctx, token, PackCall(SelectorTotalSupply)); err == nil && len(ret) >= 32 {
		if supply, err := DecodeUint(ret, 0); err == nil {
			meta.TotalSupply = ScaleAmount(supply, meta.Decimals)
			answered = true
		}
	}

	if !answered {
		return nil, fmt.Errorf("%w: %s is not an ERC-20 token", domain.ErrNotFound, token.Hex())
	}
	return meta, nil
}

// ScaleAmount converts a raw integer amount to a float scaled by decimals.
func ScaleAmount(raw *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(raw)
	f.Quo(f, big.NewFloat(math.Pow10(decimals)))
	out, _ := f.Float64()
	return out
}
