package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"ethyr-engine/internal/domain"
)

// PackCall builds read-call input data: a 4-byte selector followed by
// 32-byte left-padded argument words.
func PackCall(selector [4]byte, words ...[]byte) []byte {
	data := make([]byte, 0, 4+32*len(words))
	data = append(data, selector[:]...)
	for _, w := range words {
		data = append(data, common.LeftPadBytes(w, 32)...)
	}
	return data
}

// AddressWord encodes an address argument.
func AddressWord(a common.Address) []byte {
	return a.Bytes()
}

// UintWord encodes an unsigned integer argument.
func UintWord(v uint64) []byte {
	return new(big.Int).SetUint64(v).Bytes()
}

// Word returns the i-th 32-byte word of return data.
func Word(data []byte, i int) ([]byte, error) {
	if len(data) < (i+1)*32 {
		return nil, fmt.Errorf("%w: return data too short for word %d", domain.ErrParseFailed, i)
	}
	return data[i*32 : (i+1)*32], nil
}

// DecodeUint decodes the i-th return word as an unsigned integer.
func DecodeUint(data []byte, i int) (*big.Int, error) {
	w, err := Word(data, i)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// DecodeInt decodes the i-th return word as a signed two's complement
// integer.
func DecodeInt(data []byte, i int) (*big.Int, error) {
	w, err := Word(data, i)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(w)
	if w[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return v, nil
}

// DecodeAddress decodes the i-th return word as an address.
func DecodeAddress(data []byte, i int) (common.Address, error) {
	w, err := Word(data, i)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(w), nil
}

// DecodeString decodes a dynamic string return value (offset, length,
// bytes). Falls back to a bytes32 read for contracts that return fixed
// strings.
func DecodeString(data []byte) (string, error) {
	if len(data) == 32 {
		return strings.TrimRight(string(data), "\x00"), nil
	}
	if len(data) < 64 {
		return "", fmt.Errorf("%w: string return too short", domain.ErrParseFailed)
	}

	offset, err := DecodeUint(data, 0)
	if err != nil {
		return "", err
	}
	if !offset.IsInt64() || offset.Int64()+32 > int64(len(data)) {
		return "", fmt.Errorf("%w: string offset out of range", domain.ErrParseFailed)
	}

	start := offset.Int64()
	length := new(big.Int).SetBytes(data[start : start+32])
	if !length.IsInt64() || start+32+length.Int64() > int64(len(data)) {
		return "", fmt.Errorf("%w: string length out of range", domain.ErrParseFailed)
	}

	return string(data[start+32 : start+32+length.Int64()]), nil
}
