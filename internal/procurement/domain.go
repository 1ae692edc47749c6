package procurement

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

var (
	// ErrNotFound indicates the procurement does not exist.
	ErrNotFound = fmt.Errorf("procurement: %w", httpx.ErrNotFound)
	// ErrLineNotFound indicates the line is missing or belongs to another procurement.
	ErrLineNotFound = fmt.Errorf("procurement: line %w", httpx.ErrNotFound)
	// ErrSupplierLinkNotFound indicates the supplier link is missing or belongs elsewhere.
	ErrSupplierLinkNotFound = fmt.Errorf("procurement: supplier link %w", httpx.ErrNotFound)
	// ErrDuplicateSupplier indicates the supplier already takes part in the procurement.
	ErrDuplicateSupplier = fmt.Errorf("procurement: supplier already linked: %w", httpx.ErrDuplicate)
	// ErrForbidden indicates the actor may not see or change the procurement.
	ErrForbidden = fmt.Errorf("procurement: %w", httpx.ErrForbidden)
	// ErrRendererUnavailable is returned when no PDF renderer is configured.
	ErrRendererUnavailable = errors.New("procurement: pdf renderer unavailable")
)

// Status and stage values with a meaning beyond display.
const (
	StatusCancelled = "Ακυρωμένη"
	StatusComplete  = "Πέρας"
	StageExpense    = "Αποστολή Δαπάνης"
	StageApproval   = "Έγκριση"
)

// Row classes used to highlight list entries.
const (
	RowCancelled = "cancelled"
	RowComplete  = "complete"
	RowExpense   = "expense"
	RowApproval  = "approval"
)

// Procurement is the aggregate root tracked through the approval workflow.
type Procurement struct {
	ID                     int64            `json:"id"`
	FiscalYear             *int             `json:"fiscal_year,omitempty"`
	ServiceUnitID          *int64           `json:"service_unit_id,omitempty"`
	SerialNo               string           `json:"serial_no"`
	Description            string           `json:"description"`
	ALE                    string           `json:"ale"`
	Allocation             string           `json:"allocation"`
	Quarterly              string           `json:"quarterly"`
	Status                 string           `json:"status"`
	Stage                  string           `json:"stage"`
	HandlerPersonnelID     *int64           `json:"handler_personnel_id,omitempty"`
	RequestedAmount        *decimal.Decimal `json:"requested_amount,omitempty"`
	ApprovedAmount         *decimal.Decimal `json:"approved_amount,omitempty"`
	VATRate                *decimal.Decimal `json:"vat_rate,omitempty"`
	WithholdingProfileID   *int64           `json:"withholding_profile_id,omitempty"`
	IncomeTaxRuleID        *int64           `json:"income_tax_rule_id,omitempty"`
	SumTotal               decimal.Decimal  `json:"sum_total"`
	VATAmount              decimal.Decimal  `json:"vat_amount"`
	GrandTotal             decimal.Decimal  `json:"grand_total"`
	PayableTotal           decimal.Decimal  `json:"payable_total"`
	HopCommitment          string           `json:"hop_commitment"`
	HopForward1Commitment  string           `json:"hop_forward1_commitment"`
	HopForward2Commitment  string           `json:"hop_forward2_commitment"`
	HopPreapproval         string           `json:"hop_preapproval"`
	HopForward1Preapproval string           `json:"hop_forward1_preapproval"`
	HopForward2Preapproval string           `json:"hop_forward2_preapproval"`
	HopApproval            string           `json:"hop_approval"`
	AAY                    string           `json:"aay"`
	Notes                  string           `json:"procurement_notes"`
	SendToExpenses         bool             `json:"send_to_expenses"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// OwningUnitID implements rbac.Scoped.
func (p Procurement) OwningUnitID() *int64 { return p.ServiceUnitID }

// Markers returns the ΗΩΠ decision markers keyed by stage.
func (p Procurement) Markers() map[shared.ApprovalStage]string {
	return map[shared.ApprovalStage]string{
		shared.StageCommitment:          p.HopCommitment,
		shared.StageForward1Commitment:  p.HopForward1Commitment,
		shared.StageForward2Commitment:  p.HopForward2Commitment,
		shared.StagePreapproval:         p.HopPreapproval,
		shared.StageForward1Preapproval: p.HopForward1Preapproval,
		shared.StageForward2Preapproval: p.HopForward2Preapproval,
		shared.StageApproval:            p.HopApproval,
	}
}

// ApplyTotals stores the derived figures on the aggregate.
func (p *Procurement) ApplyTotals(t costing.Totals, payable decimal.Decimal) {
	p.SumTotal = t.SumTotal
	p.VATAmount = t.VATAmount
	p.GrandTotal = t.GrandTotal
	p.PayableTotal = payable
}

// RowClass picks the list highlight for p. Status wins over stage.
func RowClass(p Procurement) string {
	switch {
	case p.Status == StatusCancelled:
		return RowCancelled
	case p.Status == StatusComplete:
		return RowComplete
	case p.Stage == StageExpense:
		return RowExpense
	case p.Stage == StageApproval:
		return RowApproval
	default:
		return ""
	}
}

// MaterialLine is a priced material or service entry.
type MaterialLine struct {
	ID            int64           `json:"id"`
	ProcurementID int64           `json:"procurement_id"`
	LineNo        int             `json:"line_no"`
	IsService     bool            `json:"is_service"`
	Description   string          `json:"description"`
	CPV           string          `json:"cpv"`
	NSN           string          `json:"nsn"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Total is the pre-VAT value of the line.
func (l MaterialLine) Total() decimal.Decimal {
	return l.costing().Total()
}

func (l MaterialLine) costing() costing.Line {
	return costing.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice}
}

func costingLines(lines []MaterialLine) []costing.Line {
	out := make([]costing.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.costing())
	}
	return out
}

// SupplierLink is a supplier taking part in a procurement.
type SupplierLink struct {
	ID            int64            `json:"id"`
	ProcurementID int64            `json:"procurement_id"`
	SupplierID    int64            `json:"supplier_id"`
	SupplierName  string           `json:"supplier_name"`
	SupplierAFM   string           `json:"supplier_afm"`
	Result        string           `json:"result"`
	IsWinner      bool             `json:"is_winner"`
	OfferedAmount *decimal.Decimal `json:"offered_amount,omitempty"`
	Notes         string           `json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
}

// View selects one of the procurement lists.
type View string

const (
	// ViewInbox lists live procurements not yet sent to expenses.
	ViewInbox View = "inbox"
	// ViewPending lists approved procurements sent to expenses.
	ViewPending View = "pending"
	// ViewAll lists everything.
	ViewAll View = "all"
)

// ListFilter narrows a list query. A nil UnitID means every unit.
type ListFilter struct {
	View   View
	UnitID *int64
	Search string
}

// Matches reports whether p belongs to the view.
func (v View) Matches(p Procurement) bool {
	switch v {
	case ViewInbox:
		return p.Status != StatusCancelled && !p.SendToExpenses
	case ViewPending:
		return p.Status != StatusCancelled && p.HopApproval != "" && p.SendToExpenses
	default:
		return true
	}
}

// ListItem is a list row with its highlight class.
type ListItem struct {
	Procurement
	RowClass string `json:"row_class"`
}

// Detail is the full aggregate returned by Get.
type Detail struct {
	Procurement Procurement    `json:"procurement"`
	Lines       []MaterialLine `json:"lines"`
	Suppliers   []SupplierLink `json:"suppliers"`
	Totals      costing.Totals `json:"totals"`
	RowClass    string         `json:"row_class"`
}

// SaveResult reports a stored procurement and any input the service overrode.
type SaveResult struct {
	Procurement   Procurement `json:"procurement"`
	ExpensesReset bool        `json:"expenses_reset"`
}
