// Package money holds the fixed-point helpers every monetary figure goes through.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money rounds x to two decimal places, half away from zero.
func Money(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// NormalizeRateAsFraction reads a rate that may be stored either as a fraction
// (0.24) or as a percent (24). Anything above 1 is treated as a percent, so a
// genuine fractional rate above 100% cannot be expressed.
func NormalizeRateAsFraction(r decimal.Decimal) decimal.Decimal {
	if r.GreaterThan(decimal.NewFromInt(1)) {
		return r.Div(hundred)
	}
	return r
}

// PercentToFraction converts a value stored as a plain percent (0.10 means 0.10%).
func PercentToFraction(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// DisplayAsPercent is the presentation inverse of NormalizeRateAsFraction.
func DisplayAsPercent(r decimal.Decimal) decimal.Decimal {
	if r.LessThanOrEqual(decimal.NewFromInt(1)) {
		return r.Mul(hundred)
	}
	return r
}

// Parse reads user input that may use a comma as decimal separator.
// Empty or malformed input reports ok=false.
func Parse(raw string) (decimal.Decimal, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// ParseOr returns fallback when raw is empty or malformed.
func ParseOr(raw string, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := Parse(raw); ok {
		return v
	}
	return fallback
}

// Nullable converts an optional decimal into a pointer, nil when invalid.
func Nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

// OrZero dereferences v, treating nil as zero.
func OrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
