package domain

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of wei in one ether, as a power of ten.
const EtherDecimals = 18

// maxBaseUnitBits is the width of a uint256 contract argument.
const maxBaseUnitBits = 256

// maxUint256Digits is the decimal length of 2^256-1.
const maxUint256Digits = 78

var plainAmount = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// ToBaseUnits converts a decimal ether amount such as "0.5" into wei.
// Only plain decimal notation is accepted. Negative values, amounts finer
// than one wei and amounts that do not fit in a uint256 are rejected.
func ToBaseUnits(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidAmount, "amount is empty")
	}

	if strings.HasPrefix(s, "-") {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is negative", amount)
	}
	if !plainAmount.MatchString(s) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is not a number", amount)
	}
	whole, _, _ := strings.Cut(s, ".")
	if len(strings.TrimLeft(whole, "0")) > maxUint256Digits-EtherDecimals {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q exceeds uint256", amount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is not a number", amount)
	}

	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimal places", amount, EtherDecimals)
	}

	v := wei.BigInt()
	if v.BitLen() > maxBaseUnitBits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q exceeds uint256", amount)
	}
	return v, nil
}

// FromBaseUnits converts wei into a decimal ether string without trailing zeros.
func FromBaseUnits(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}
