package indexer

import (
	"math"
	"math/big"
	"strconv"
)

// weiPerEther as a float divisor for value conversions.
var weiPerEther = new(big.Float).SetFloat64(1e18)

// Transaction is one row from txlist or txlistinternal. The API returns
// every numeric field as a decimal string.
type Transaction struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
}

// Timestamp returns the block time as a Unix timestamp, 0 if unparseable.
func (t Transaction) Timestamp() int64 {
	ts, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	return ts
}

// Block returns the block number, 0 if unparseable.
func (t Transaction) Block() int64 {
	n, _ := strconv.ParseInt(t.BlockNumber, 10, 64)
	return n
}

// ValueETH returns the transferred value in ether.
func (t Transaction) ValueETH() float64 {
	wei, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return 0
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return out
}

// GasSpentETH returns gasUsed * gasPrice in ether.
func (t Transaction) GasSpentETH() float64 {
	used, ok := new(big.Int).SetString(t.GasUsed, 10)
	if !ok {
		return 0
	}
	price, ok := new(big.Int).SetString(t.GasPrice, 10)
	if !ok {
		return 0
	}
	wei := new(big.Int).Mul(used, price)
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return out
}

// GasUsedUnits returns gasUsed as a float, 0 if unparseable.
func (t Transaction) GasUsedUnits() float64 {
	used, err := strconv.ParseFloat(t.GasUsed, 64)
	if err != nil {
		return 0
	}
	return used
}

// Failed reports whether the transaction reverted.
func (t Transaction) Failed() bool {
	return t.IsError == "1"
}

// TokenTransfer is one row from tokentx.
type TokenTransfer struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TokenDecimal    string `json:"tokenDecimal"`
	ContractAddress string `json:"contractAddress"`
}

// Timestamp returns the block time as a Unix timestamp, 0 if unparseable.
func (t TokenTransfer) Timestamp() int64 {
	ts, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	return ts
}

// Amount returns the transferred amount scaled by the token's decimals.
func (t TokenTransfer) Amount() float64 {
	raw, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return 0
	}
	decimals, err := strconv.Atoi(t.TokenDecimal)
	if err != nil {
		decimals = 18
	}
	out, _ := new(big.Float).Quo(
		new(big.Float).SetInt(raw),
		new(big.Float).SetFloat64(math.Pow10(decimals)),
	).Float64()
	return out
}

// ContractSource is one row from getsourcecode.
type ContractSource struct {
	ContractAddress string `json:"ContractAddress"`
	ContractName    string `json:"ContractName"`
	SourceCode      string `json:"SourceCode"`
	CompilerVersion string `json:"CompilerVersion"`
}

// Verified reports whether source code is published for the contract.
func (s ContractSource) Verified() bool {
	return s.SourceCode != ""
}

// ContractCreation is one row from getcontractcreation.
type ContractCreation struct {
	ContractAddress string `json:"contractAddress"`
	ContractCreator string `json:"contractCreator"`
	TxHash          string `json:"txHash"`
}
