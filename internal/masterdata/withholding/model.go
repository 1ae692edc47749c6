package withholding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

// Profile is a named set of withholding percents applied to a procurement's
// subtotal.
type Profile struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	MtEloa    decimal.Decimal `json:"mt_eloa"`
	Eadhsy    decimal.Decimal `json:"eadhsy"`
	K1        decimal.Decimal `json:"k1"`
	K2        decimal.Decimal `json:"k2"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TotalPercent is the sum of the four components.
func (p Profile) TotalPercent() decimal.Decimal {
	return p.MtEloa.Add(p.Eadhsy).Add(p.K1).Add(p.K2)
}

// Costing converts the profile for the payment calculators.
func (p Profile) Costing() costing.WithholdingProfile {
	return costing.WithholdingProfile{
		ID:       p.ID,
		Name:     p.Name,
		MtEloa:   p.MtEloa,
		Eadhsy:   p.Eadhsy,
		K1:       p.K1,
		K2:       p.K2,
		IsActive: p.IsActive,
	}
}

// Input is the writable part of a profile. Percents accept "0,10" or "0.10";
// blank means zero.
type Input struct {
	Name     string `json:"name" validate:"required,max=120"`
	MtEloa   string `json:"mt_eloa"`
	Eadhsy   string `json:"eadhsy"`
	K1       string `json:"k1"`
	K2       string `json:"k2"`
	IsActive *bool  `json:"is_active"`
}
