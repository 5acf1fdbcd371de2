package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the conventional mint/burn counterparty.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NormalizeAddress validates s as a 20-byte hex address and returns its
// EIP-55 checksummed form.
func NormalizeAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q is not a valid address", ErrInvalidInput, s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// AddressKey lowercases an address for map membership and equality checks.
// All registry and counterparty comparisons go through this.
func AddressKey(s string) string {
	return strings.ToLower(s)
}

// IsZeroAddress reports whether s is the zero address in any casing.
func IsZeroAddress(s string) bool {
	return AddressKey(s) == ZeroAddress
}
