package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MintGasLimit is the gas attached to mint calls.
const MintGasLimit = 500000

const mintABI = `[{
	"type": "function",
	"name": "mintExperiment",
	"stateMutability": "nonpayable",
	"inputs": [{"name": "tokenURI", "type": "string"}],
	"outputs": [{"name": "", "type": "uint256"}]
}]`

var experimentABI = mustParseABI(mintABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// PackMint encodes a mintExperiment(tokenURI) call.
func PackMint(tokenURI string) ([]byte, error) {
	data, err := experimentABI.Pack("mintExperiment", tokenURI)
	if err != nil {
		return nil, fmt.Errorf("pack mint: %w", err)
	}
	return data, nil
}
