package costing

import (
	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
)

// Withholding component labels, in breakdown order.
const (
	LabelMtEloa = "ΜΤ-ΕΛΟΑ"
	LabelEadhsy = "ΕΑΔΗΣΥ"
	LabelK1     = "Κράτηση 3"
	LabelK2     = "Κράτηση 4"
)

// WithholdingProfile is a named set of up to four deductions. Each rate is a
// plain percent: 0.10 means 0.10%.
type WithholdingProfile struct {
	ID       int64
	Name     string
	MtEloa   decimal.Decimal
	Eadhsy   decimal.Decimal
	K1       decimal.Decimal
	K2       decimal.Decimal
	IsActive bool
}

type component struct {
	label   string
	percent decimal.Decimal
}

func (p WithholdingProfile) components() []component {
	return []component{
		{LabelMtEloa, p.MtEloa},
		{LabelEadhsy, p.Eadhsy},
		{LabelK1, p.K1},
		{LabelK2, p.K2},
	}
}

// WithholdingItem is one emitted deduction.
type WithholdingItem struct {
	Label   string
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// WithholdingBreakdown lists the applied deductions and their totals.
type WithholdingBreakdown struct {
	Items        []WithholdingItem
	TotalPercent decimal.Decimal
	TotalAmount  decimal.Decimal
}

// Withholding applies profile to subtotal. An absent or inactive profile
// contributes nothing. Components whose rounded percent is zero are omitted.
// The total is the sum of the already rounded item amounts.
func Withholding(subtotal decimal.Decimal, profile Optional[WithholdingProfile]) WithholdingBreakdown {
	out := WithholdingBreakdown{
		Items:        []WithholdingItem{},
		TotalPercent: decimal.Zero,
		TotalAmount:  decimal.Zero,
	}
	p, ok := profile.Get()
	if !ok || !p.IsActive {
		return out
	}

	totalPercent := decimal.Zero
	totalAmount := decimal.Zero
	for _, c := range p.components() {
		pct := money.Money(c.percent)
		if pct.IsZero() {
			continue
		}
		amount := money.Money(subtotal.Mul(money.PercentToFraction(c.percent)))
		out.Items = append(out.Items, WithholdingItem{Label: c.label, Percent: pct, Amount: amount})
		totalPercent = totalPercent.Add(c.percent)
		totalAmount = totalAmount.Add(amount)
	}
	out.TotalPercent = money.Money(totalPercent)
	out.TotalAmount = money.Money(totalAmount)
	return out
}
