package withholding

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

// parse validates in and applies it onto p.
func parse(p Profile, in Input) (Profile, error) {
	errs := httpx.ValidationErrors{}
	p.Name = strings.TrimSpace(in.Name)
	if p.Name == "" {
		errs["name"] = "is required"
	}
	p.MtEloa = percent(errs, "mt_eloa", in.MtEloa)
	p.Eadhsy = percent(errs, "eadhsy", in.Eadhsy)
	p.K1 = percent(errs, "k1", in.K1)
	p.K2 = percent(errs, "k2", in.K2)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

func percent(errs httpx.ValidationErrors, field, raw string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}
	d, ok := money.Parse(raw)
	if !ok {
		errs[field] = "must be a number"
		return decimal.Zero
	}
	if d.IsNegative() {
		errs[field] = "must not be negative"
		return decimal.Zero
	}
	return d
}
