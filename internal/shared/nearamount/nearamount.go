package nearamount

import (
	"errors"
	"strings"

	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
)

// Amounts are integer yocto quantities (10^-24 of one native unit). They do
// not fit in uint64, so all balance math runs on uint128.

const yoctoPerNear = 24

var (
	ErrInvalidAmount = errors.New("amount is not a valid decimal quantity")
	ErrNegative      = errors.New("amount must not be negative")
)

// OneYocto is the minimum deposit payable entry points require as a
// proof-of-intent from a full-access key holder.
var OneYocto = uint128.From64(1)

var yoctoScale = decimal.New(1, yoctoPerNear)

// Parse converts a decimal string denominated in whole native units
// (e.g. "0.1") into yocto. Fractions below one yocto are rejected.
func Parse(amount string) (uint128.Uint128, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return uint128.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return uint128.Zero, ErrNegative
	}
	scaled := d.Mul(yoctoScale)
	if !scaled.IsInteger() {
		return uint128.Zero, ErrInvalidAmount
	}
	v, err := uint128.FromBig(scaled.BigInt())
	if err != nil {
		return uint128.Zero, ErrInvalidAmount
	}
	return v, nil
}

// MustParse is for constants and tests.
func MustParse(amount string) uint128.Uint128 {
	v, err := Parse(amount)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseYocto converts a raw integer yocto string, the wire form used in DTOs.
func ParseYocto(amount string) (uint128.Uint128, error) {
	v, err := uint128.FromString(strings.TrimSpace(amount))
	if err != nil {
		return uint128.Zero, ErrInvalidAmount
	}
	return v, nil
}

// FormatYocto renders the raw integer yocto wire form.
func FormatYocto(amount uint128.Uint128) string {
	return amount.String()
}

// Format renders yocto back into a whole-unit decimal string.
func Format(amount uint128.Uint128) string {
	return decimal.NewFromBigInt(amount.Big(), -yoctoPerNear).String()
}
