package dex

import (
	"math/big"
)

// q192 = 2^192, the divisor for squared Q64.96 sqrt prices.
var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// pow10Float returns 10^n as a big.Float; n may be negative.
func pow10Float(n int) *big.Float {
	exp := n
	if exp < 0 {
		exp = -exp
	}
	v := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	if n < 0 {
		return new(big.Float).Quo(big.NewFloat(1), v)
	}
	return v
}

// v3PriceETH converts a V3 pool's sqrtPriceX96 into the token's price in
// the reference asset: sqrtPrice^2 * 10^(tokenDecimals-refDecimals) / 2^192.
func v3PriceETH(sqrtPriceX96 *big.Int, tokenDecimals int) float64 {
	if sqrtPriceX96.Sign() == 0 {
		return 0
	}

	num := new(big.Float).SetInt(new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96))
	num.Mul(num, pow10Float(tokenDecimals-refDecimals))
	num.Quo(num, new(big.Float).SetInt(q192))

	out, _ := num.Float64()
	return out
}

// scaleReserve converts a raw reserve word to token units.
func scaleReserve(raw *big.Int, decimals int) float64 {
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), pow10Float(decimals)).Float64()
	return out
}
