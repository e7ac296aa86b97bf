package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is a contract call handed to the wallet for signing and submission.
type TxRequest struct {
	// Method is the contract function name, used for approval prompts and logs.
	Method string
	From   common.Address
	To     common.Address
	Value  *big.Int
	Data   []byte
}

// ValueOrZero returns the attached value, never nil.
func (r TxRequest) ValueOrZero() *big.Int {
	if r.Value == nil {
		return new(big.Int)
	}
	return r.Value
}
