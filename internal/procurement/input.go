package procurement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

// Input is the procurement form. Amounts and rates are free text so users may
// type a comma as decimal separator.
type Input struct {
	FiscalYear             *int   `json:"fiscal_year" validate:"omitempty,gte=2000,lte=2100"`
	ServiceUnitID          *int64 `json:"service_unit_id"`
	SerialNo               string `json:"serial_no" validate:"max=50"`
	Description            string `json:"description" validate:"required"`
	ALE                    string `json:"ale" validate:"max=50"`
	Allocation             string `json:"allocation" validate:"max=80"`
	Quarterly              string `json:"quarterly" validate:"max=80"`
	Status                 string `json:"status" validate:"max=80"`
	Stage                  string `json:"stage" validate:"max=80"`
	HandlerPersonnelID     *int64 `json:"handler_personnel_id"`
	RequestedAmount        string `json:"requested_amount"`
	ApprovedAmount         string `json:"approved_amount"`
	VATRate                string `json:"vat_rate"`
	WithholdingProfileID   *int64 `json:"withholding_profile_id"`
	IncomeTaxRuleID        *int64 `json:"income_tax_rule_id"`
	HopCommitment          string `json:"hop_commitment" validate:"max=50"`
	HopForward1Commitment  string `json:"hop_forward1_commitment" validate:"max=50"`
	HopForward2Commitment  string `json:"hop_forward2_commitment" validate:"max=50"`
	HopPreapproval         string `json:"hop_preapproval" validate:"max=50"`
	HopForward1Preapproval string `json:"hop_forward1_preapproval" validate:"max=50"`
	HopForward2Preapproval string `json:"hop_forward2_preapproval" validate:"max=50"`
	HopApproval            string `json:"hop_approval" validate:"max=50"`
	AAY                    string `json:"aay" validate:"max=50"`
	Notes                  string `json:"procurement_notes"`
	SendToExpenses         bool   `json:"send_to_expenses"`
}

// apply copies the form onto p, leaving identity, unit and totals alone.
func (in Input) apply(p Procurement) Procurement {
	p.FiscalYear = in.FiscalYear
	p.SerialNo = strings.TrimSpace(in.SerialNo)
	p.Description = strings.TrimSpace(in.Description)
	p.ALE = strings.TrimSpace(in.ALE)
	p.Allocation = strings.TrimSpace(in.Allocation)
	p.Quarterly = strings.TrimSpace(in.Quarterly)
	p.Status = strings.TrimSpace(in.Status)
	p.Stage = strings.TrimSpace(in.Stage)
	p.HandlerPersonnelID = in.HandlerPersonnelID
	p.RequestedAmount = optionalDecimal(in.RequestedAmount)
	p.ApprovedAmount = optionalDecimal(in.ApprovedAmount)
	p.VATRate = optionalDecimal(in.VATRate)
	p.WithholdingProfileID = in.WithholdingProfileID
	p.IncomeTaxRuleID = in.IncomeTaxRuleID
	p.HopCommitment = strings.TrimSpace(in.HopCommitment)
	p.HopForward1Commitment = strings.TrimSpace(in.HopForward1Commitment)
	p.HopForward2Commitment = strings.TrimSpace(in.HopForward2Commitment)
	p.HopPreapproval = strings.TrimSpace(in.HopPreapproval)
	p.HopForward1Preapproval = strings.TrimSpace(in.HopForward1Preapproval)
	p.HopForward2Preapproval = strings.TrimSpace(in.HopForward2Preapproval)
	p.HopApproval = strings.TrimSpace(in.HopApproval)
	p.AAY = strings.TrimSpace(in.AAY)
	p.Notes = strings.TrimSpace(in.Notes)
	p.SendToExpenses = in.SendToExpenses
	return p
}

// optionalDecimal parses raw; blank or malformed input yields nil.
func optionalDecimal(raw string) *decimal.Decimal {
	v, ok := money.Parse(raw)
	if !ok {
		return nil
	}
	return &v
}

func validate(p Procurement) httpx.ValidationErrors {
	errs := httpx.ValidationErrors{}
	if p.Description == "" {
		errs["description"] = "is required"
	}
	for field, v := range map[string]*decimal.Decimal{
		"requested_amount": p.RequestedAmount,
		"approved_amount":  p.ApprovedAmount,
		"vat_rate":         p.VATRate,
	} {
		if v != nil && v.IsNegative() {
			errs[field] = "must not be negative"
		}
	}
	return errs
}

// LineInput adds a material or service line.
type LineInput struct {
	Description string `json:"description" validate:"required"`
	IsService   bool   `json:"is_service"`
	CPV         string `json:"cpv" validate:"max=50"`
	NSN         string `json:"nsn" validate:"max=50"`
	Unit        string `json:"unit" validate:"max=50"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// line builds the line; unparsable quantity or price becomes zero.
func (in LineInput) line() MaterialLine {
	return MaterialLine{
		Description: strings.TrimSpace(in.Description),
		IsService:   in.IsService,
		CPV:         strings.TrimSpace(in.CPV),
		NSN:         strings.TrimSpace(in.NSN),
		Unit:        strings.TrimSpace(in.Unit),
		Quantity:    money.ParseOr(in.Quantity, decimal.Zero),
		UnitPrice:   money.ParseOr(in.UnitPrice, decimal.Zero),
	}
}

// SupplierInput links a supplier to a procurement.
type SupplierInput struct {
	SupplierID    int64  `json:"supplier_id" validate:"required,gt=0"`
	Result        string `json:"result" validate:"max=80"`
	IsWinner      bool   `json:"is_winner"`
	OfferedAmount string `json:"offered_amount"`
	Notes         string `json:"notes"`
}

func (in SupplierInput) link() SupplierLink {
	return SupplierLink{
		SupplierID:    in.SupplierID,
		Result:        strings.TrimSpace(in.Result),
		IsWinner:      in.IsWinner,
		OfferedAmount: optionalDecimal(in.OfferedAmount),
		Notes:         strings.TrimSpace(in.Notes),
	}
}
