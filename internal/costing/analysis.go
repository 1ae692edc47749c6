package costing

import (
	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
)

// AnalysisInput is the procurement state the payment analysis reads.
type AnalysisInput struct {
	SumTotal  decimal.Decimal
	VATRate   *decimal.Decimal
	Profile   Optional[WithholdingProfile]
	IncomeTax Optional[IncomeTaxRule]
}

// PaymentAnalysis is the full deduction cascade down to the payable amount.
type PaymentAnalysis struct {
	Subtotal     decimal.Decimal
	Withholdings WithholdingBreakdown
	IncomeTax    IncomeTaxBreakdown
	VATPercent   decimal.Decimal
	VATAmount    decimal.Decimal
	PayableTotal decimal.Decimal
}

// Analyze computes subtotal − withholdings − income tax + VAT. It reads only
// its input and can be called any number of times.
func Analyze(in AnalysisInput) PaymentAnalysis {
	subtotal := money.Money(in.SumTotal)
	withholdings := Withholding(subtotal, in.Profile)
	tax := IncomeTax(subtotal, withholdings.TotalAmount, in.IncomeTax)

	vatFraction := money.NormalizeRateAsFraction(money.OrZero(in.VATRate))
	vatAmount := money.Money(subtotal.Mul(vatFraction))

	payable := money.Money(subtotal.Sub(withholdings.TotalAmount).Sub(tax.Amount).Add(vatAmount))
	return PaymentAnalysis{
		Subtotal:     subtotal,
		Withholdings: withholdings,
		IncomeTax:    tax,
		VATPercent:   money.Money(money.DisplayAsPercent(vatFraction)),
		VATAmount:    vatAmount,
		PayableTotal: payable,
	}
}

// AnalyzeLines runs Analyze on the subtotal of lines.
func AnalyzeLines(lines []Line, vatRate *decimal.Decimal, profile Optional[WithholdingProfile], rule Optional[IncomeTaxRule]) PaymentAnalysis {
	return Analyze(AnalysisInput{
		SumTotal:  Subtotal(lines),
		VATRate:   vatRate,
		Profile:   profile,
		IncomeTax: rule,
	})
}
