package costing

import (
	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
)

// Line is the priced part of a material or service line.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total is the pre-VAT value of a single line.
func (l Line) Total() decimal.Decimal {
	return money.Money(l.Quantity.Mul(l.UnitPrice))
}

// Subtotal sums quantity × unit price across lines and rounds once at the end.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return money.Money(total)
}

// Totals are the derived figures shown on procurement lists.
type Totals struct {
	SumTotal   decimal.Decimal
	VATAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeTotals derives sum, VAT and grand total from the lines and a VAT rate
// stored in either fraction or percent form. A nil rate means no VAT.
func ComputeTotals(lines []Line, vatRate *decimal.Decimal) Totals {
	sum := Subtotal(lines)
	vat := money.Money(sum.Mul(money.NormalizeRateAsFraction(money.OrZero(vatRate))))
	return Totals{
		SumTotal:   sum,
		VATAmount:  vat,
		GrandTotal: money.Money(sum.Add(vat)),
	}
}
