package exchange

import (
	"fmt"
	"strings"

	cosmath "cosmossdk.io/math"
)

var rateScaleDec = cosmath.LegacyNewDecFromInt(cosmath.NewIntFromUint64(RateScale))

// ParseRate converts a decimal "tokens per base unit" string such as "2.5" into
// a fixed-point rate. Digits beyond the ninth decimal place are truncated.
func ParseRate(s string) (uint64, error) {
	dec, err := cosmath.LegacyNewDecFromStr(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	if dec.IsNegative() {
		return 0, fmt.Errorf("invalid rate %q: negative", s)
	}
	scaled := dec.Mul(rateScaleDec).TruncateInt()
	if !scaled.IsUint64() {
		return 0, fmt.Errorf("invalid rate %q: out of range", s)
	}
	return scaled.Uint64(), nil
}

// FormatRate renders a fixed-point rate as a decimal string with nine places.
func FormatRate(rate uint64) string {
	whole := rate / RateScale
	frac := rate % RateScale
	return fmt.Sprintf("%d.%09d", whole, frac)
}
