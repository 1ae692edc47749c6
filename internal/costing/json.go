package costing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amounts and percents leave the service as fixed two-decimal strings so
// clients never see float artifacts.
func fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fixedPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := fixed(*d)
	return &s
}

type withholdingItemJSON struct {
	Label   string `json:"label"`
	Percent string `json:"percent"`
	Amount  string `json:"amount"`
}

type withholdingJSON struct {
	Items        []withholdingItemJSON `json:"items"`
	TotalPercent string                `json:"total_percent"`
	TotalAmount  string                `json:"total_amount"`
}

type incomeTaxJSON struct {
	Description *string `json:"description"`
	RatePercent *string `json:"rate_percent"`
	Threshold   *string `json:"threshold"`
	Amount      string  `json:"amount"`
}

// MarshalJSON implements json.Marshaler.
func (b WithholdingBreakdown) MarshalJSON() ([]byte, error) {
	out := withholdingJSON{
		Items:        make([]withholdingItemJSON, 0, len(b.Items)),
		TotalPercent: fixed(b.TotalPercent),
		TotalAmount:  fixed(b.TotalAmount),
	}
	for _, it := range b.Items {
		out.Items = append(out.Items, withholdingItemJSON{Label: it.Label, Percent: fixed(it.Percent), Amount: fixed(it.Amount)})
	}
	return json.Marshal(out)
}

// MarshalJSON implements json.Marshaler.
func (b IncomeTaxBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(incomeTaxJSON{
		Description: b.Description,
		RatePercent: fixedPtr(b.RatePercent),
		Threshold:   fixedPtr(b.Threshold),
		Amount:      fixed(b.Amount),
	})
}

// MarshalJSON implements json.Marshaler.
func (a PaymentAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal     string               `json:"subtotal"`
		Withholdings WithholdingBreakdown `json:"withholdings"`
		IncomeTax    IncomeTaxBreakdown   `json:"income_tax"`
		VATPercent   string               `json:"vat_percent"`
		VATAmount    string               `json:"vat_amount"`
		PayableTotal string               `json:"payable_total"`
	}{
		Subtotal:     fixed(a.Subtotal),
		Withholdings: a.Withholdings,
		IncomeTax:    a.IncomeTax,
		VATPercent:   fixed(a.VATPercent),
		VATAmount:    fixed(a.VATAmount),
		PayableTotal: fixed(a.PayableTotal),
	})
}

// MarshalJSON implements json.Marshaler.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SumTotal   string `json:"sum_total"`
		VATAmount  string `json:"vat_amount"`
		GrandTotal string `json:"grand_total"`
	}{fixed(t.SumTotal), fixed(t.VATAmount), fixed(t.GrandTotal)})
}
