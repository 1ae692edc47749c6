package incometax

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

// Rule is a flat income tax rate applied above a subtotal threshold.
type Rule struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	Threshold   decimal.Decimal `json:"threshold_amount"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Costing converts the rule for the payment calculators.
func (r Rule) Costing() costing.IncomeTaxRule {
	return costing.IncomeTaxRule{
		ID:          r.ID,
		Description: r.Description,
		RatePercent: r.RatePercent,
		Threshold:   r.Threshold,
		IsActive:    r.IsActive,
	}
}

// Input is the writable part of a rule.
type Input struct {
	Description string `json:"description" validate:"required,max=255"`
	RatePercent string `json:"rate_percent" validate:"required"`
	Threshold   string `json:"threshold_amount"`
	IsActive    *bool  `json:"is_active"`
}
