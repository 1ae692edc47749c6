package incometax

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

func parse(r Rule, in Input) (Rule, error) {
	errs := httpx.ValidationErrors{}
	r.Description = strings.TrimSpace(in.Description)
	if r.Description == "" {
		errs["description"] = "is required"
	}
	if strings.TrimSpace(in.RatePercent) == "" {
		errs["rate_percent"] = "is required"
	} else {
		r.RatePercent = nonNegative(errs, "rate_percent", in.RatePercent)
	}
	r.Threshold = decimal.Zero
	if strings.TrimSpace(in.Threshold) != "" {
		r.Threshold = money.Money(nonNegative(errs, "threshold_amount", in.Threshold))
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if len(errs) > 0 {
		return r, errs
	}
	return r, nil
}

func nonNegative(errs httpx.ValidationErrors, field, raw string) decimal.Decimal {
	d, ok := money.Parse(raw)
	switch {
	case !ok:
		errs[field] = "must be a number"
	case d.IsNegative():
		errs[field] = "must not be negative"
	default:
		return d
	}
	return decimal.Zero
}
