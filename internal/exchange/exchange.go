// Package exchange converts amounts between the base currency and the pool token
// at a fixed rate.
//
// Rates are token units per base unit scaled by RateScale. Both directions
// multiply before dividing in 128 bits and floor the result, so a round trip
// never returns more than was put in.
package exchange

import (
	"lukechampine.com/uint128"

	swaperrors "github.com/lugondev/go-fixedswap/internal/errors"
)

// RateScale is the fixed-point factor of a rate.
const RateScale uint64 = 1_000_000_000

// ToToken returns floor(amountIn * rate / RateScale).
func ToToken(amountIn, rate uint64) (uint64, error) {
	if rate == 0 {
		return 0, swaperrors.ArithmeticOverflow("base to token: zero rate")
	}
	return mulDiv(amountIn, rate, RateScale, "base to token")
}

// ToBase returns floor(amountIn * RateScale / rate).
func ToBase(amountIn, rate uint64) (uint64, error) {
	if rate == 0 {
		return 0, swaperrors.ArithmeticOverflow("token to base: division by zero")
	}
	return mulDiv(amountIn, RateScale, rate, "token to base")
}

// CheckSlippage fails when out is below the caller's minimum.
func CheckSlippage(out, minOut uint64) error {
	if out < minOut {
		return swaperrors.SlippageExceeded(out, minOut)
	}
	return nil
}

func mulDiv(a, b, d uint64, op string) (uint64, error) {
	product, ok := checkedMul(uint128.From64(a), b)
	if !ok {
		return 0, swaperrors.ArithmeticOverflow(op)
	}
	q := product.Div64(d)
	if q.Hi != 0 {
		return 0, swaperrors.ArithmeticOverflow(op + ": result exceeds 64 bits")
	}
	return q.Lo, nil
}

// checkedMul multiplies without wrapping; ok is false when the product does not
// fit in 128 bits.
func checkedMul(a uint128.Uint128, b uint64) (uint128.Uint128, bool) {
	if b != 0 && a.Cmp(uint128.Max.Div64(b)) > 0 {
		return uint128.Zero, false
	}
	return a.Mul64(b), true
}
