package costing

import (
	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
)

// IncomeTaxRule is a flat rate applied above a subtotal threshold.
type IncomeTaxRule struct {
	ID          int64
	Description string
	RatePercent decimal.Decimal
	Threshold   decimal.Decimal
	IsActive    bool
}

// IncomeTaxBreakdown reports the applied rule. The metadata fields are nil
// when no active rule applies.
type IncomeTaxBreakdown struct {
	Description *string
	RatePercent *decimal.Decimal
	Threshold   *decimal.Decimal
	Amount      decimal.Decimal
}

// IncomeTax taxes the after-withholding base when the raw subtotal is above
// the rule threshold. A subtotal equal to the threshold is not taxed.
func IncomeTax(subtotal, withholdingsTotal decimal.Decimal, rule Optional[IncomeTaxRule]) IncomeTaxBreakdown {
	r, ok := rule.Get()
	if !ok || !r.IsActive {
		return IncomeTaxBreakdown{Amount: decimal.Zero}
	}

	desc := r.Description
	rate := money.Money(r.RatePercent)
	threshold := money.Money(r.Threshold)
	out := IncomeTaxBreakdown{
		Description: &desc,
		RatePercent: &rate,
		Threshold:   &threshold,
		Amount:      decimal.Zero,
	}

	after := money.Money(subtotal.Sub(withholdingsTotal))
	if subtotal.LessThanOrEqual(r.Threshold) {
		return out
	}
	out.Amount = money.Money(after.Mul(money.PercentToFraction(r.RatePercent)))
	return out
}
