package procurement

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/money"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/db"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const foreignKeyViolation = "23503"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool      *pgxpool.Pool
	approvals *shared.ApprovalRecorder
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, approvals: shared.NewApprovalRecorder(pool)}
}

// Approvals lists the recorded marker changes of a procurement.
func (r *Repository) Approvals(ctx context.Context, procurementID int64) ([]shared.ApprovalLog, error) {
	return r.approvals.List(ctx, procurementID)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	Lock(ctx context.Context, id int64) (Procurement, error)
	Create(ctx context.Context, p Procurement) (Procurement, error)
	Update(ctx context.Context, p Procurement) error
	Delete(ctx context.Context, id int64) error
	SaveTotals(ctx context.Context, id int64, totals costing.Totals, payable decimal.Decimal) error
	Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error)
	NextLineNo(ctx context.Context, procurementID int64) (int, error)
	InsertLine(ctx context.Context, line MaterialLine) (MaterialLine, error)
	GetLine(ctx context.Context, id int64) (MaterialLine, error)
	DeleteLine(ctx context.Context, id int64) error
	SupplierLink(ctx context.Context, id int64) (SupplierLink, error)
	InsertSupplierLink(ctx context.Context, link SupplierLink) (SupplierLink, error)
	DeleteSupplierLink(ctx context.Context, id int64) error
	ClearWinners(ctx context.Context, procurementID, keepLinkID int64) error
	MarkWinner(ctx context.Context, linkID int64) error
	RecordAudit(ctx context.Context, log shared.AuditLog) error
	RecordApprovals(ctx context.Context, procurementID, actorID int64, changes []shared.MarkerChange) error
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const procurementColumns = `id, fiscal_year, service_unit_id, COALESCE(serial_no, ''), description,
COALESCE(ale, ''), COALESCE(allocation, ''), COALESCE(quarterly, ''), COALESCE(status, ''), COALESCE(stage, ''),
handler_personnel_id, requested_amount, approved_amount, vat_rate, withholding_profile_id, income_tax_rule_id,
sum_total, vat_amount, grand_total, payable_total,
COALESCE(hop_commitment, ''), COALESCE(hop_forward1_commitment, ''), COALESCE(hop_forward2_commitment, ''),
COALESCE(hop_preapproval, ''), COALESCE(hop_forward1_preapproval, ''), COALESCE(hop_forward2_preapproval, ''),
COALESCE(hop_approval, ''), COALESCE(aay, ''), COALESCE(procurement_notes, ''), send_to_expenses, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcurement(row rowScanner) (Procurement, error) {
	var (
		p                            Procurement
		fiscalYear                   *int32
		requested, approved, vatRate decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &fiscalYear, &p.ServiceUnitID, &p.SerialNo, &p.Description,
		&p.ALE, &p.Allocation, &p.Quarterly, &p.Status, &p.Stage,
		&p.HandlerPersonnelID, &requested, &approved, &vatRate, &p.WithholdingProfileID, &p.IncomeTaxRuleID,
		&p.SumTotal, &p.VATAmount, &p.GrandTotal, &p.PayableTotal,
		&p.HopCommitment, &p.HopForward1Commitment, &p.HopForward2Commitment,
		&p.HopPreapproval, &p.HopForward1Preapproval, &p.HopForward2Preapproval,
		&p.HopApproval, &p.AAY, &p.Notes, &p.SendToExpenses, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Procurement{}, ErrNotFound
		}
		return Procurement{}, err
	}
	if fiscalYear != nil {
		y := int(*fiscalYear)
		p.FiscalYear = &y
	}
	p.RequestedAmount = money.Nullable(requested)
	p.ApprovedAmount = money.Nullable(approved)
	p.VATRate = money.Nullable(vatRate)
	return p, nil
}

// Get returns a procurement by id.
func (r *Repository) Get(ctx context.Context, id int64) (Procurement, error) {
	return scanProcurement(r.pool.QueryRow(ctx, `SELECT `+procurementColumns+` FROM procurements WHERE id = $1`, id))
}

// Lines returns the lines of a procurement in line order.
func (r *Repository) Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error) {
	return listLines(ctx, r.pool, procurementID)
}

// Suppliers returns the supplier links of a procurement.
func (r *Repository) Suppliers(ctx context.Context, procurementID int64) ([]SupplierLink, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+linkColumns+linkFrom+` WHERE ps.procurement_id = $1 ORDER BY ps.id`, procurementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := []SupplierLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// List returns procurements matching filter. Callers apply the serial ordering.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Procurement, error) {
	where := ` WHERE 1=1`
	args := []any{}
	switch filter.View {
	case ViewInbox:
		args = append(args, StatusCancelled)
		where += ` AND (status IS NULL OR status <> $` + strconv.Itoa(len(args)) + `) AND send_to_expenses = FALSE`
	case ViewPending:
		args = append(args, StatusCancelled)
		where += ` AND (status IS NULL OR status <> $` + strconv.Itoa(len(args)) + `) AND hop_approval IS NOT NULL AND hop_approval <> '' AND send_to_expenses = TRUE`
	}
	if filter.UnitID != nil {
		args = append(args, *filter.UnitID)
		where += ` AND service_unit_id = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (serial_no ILIKE $` + n + ` OR description ILIKE $` + n + ` OR aay ILIKE $` + n + `)`
	}
	rows, err := r.pool.Query(ctx, `SELECT `+procurementColumns+` FROM procurements`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Procurement{}
	for rows.Next() {
		p, err := scanProcurement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// IDsReferencing lists procurements using the profile or the rule. With both
// nil every procurement is returned.
func (r *Repository) IDsReferencing(ctx context.Context, profileID, ruleID *int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM procurements
WHERE ($1::bigint IS NULL AND $2::bigint IS NULL)
   OR withholding_profile_id = $1
   OR income_tax_rule_id = $2
ORDER BY id`, profileID, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *txRepo) Lock(ctx context.Context, id int64) (Procurement, error) {
	return scanProcurement(t.tx.QueryRow(ctx, `SELECT `+procurementColumns+` FROM procurements WHERE id = $1 FOR UPDATE`, id))
}

func fiscalYearArg(p Procurement) any {
	if p.FiscalYear == nil {
		return nil
	}
	return int32(*p.FiscalYear)
}

func (t *txRepo) Create(ctx context.Context, p Procurement) (Procurement, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO procurements (
    fiscal_year, service_unit_id, serial_no, description, ale, allocation, quarterly, status, stage,
    handler_personnel_id, requested_amount, approved_amount, vat_rate, withholding_profile_id, income_tax_rule_id,
    hop_commitment, hop_forward1_commitment, hop_forward2_commitment,
    hop_preapproval, hop_forward1_preapproval, hop_forward2_preapproval, hop_approval,
    aay, procurement_notes, send_to_expenses)
VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
    $10, $11, $12, $13, $14, $15,
    NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, ''),
    NULLIF($19, ''), NULLIF($20, ''), NULLIF($21, ''), NULLIF($22, ''),
    NULLIF($23, ''), NULLIF($24, ''), $25)
RETURNING id, created_at, updated_at`,
		fiscalYearArg(p), p.ServiceUnitID, p.SerialNo, p.Description, p.ALE, p.Allocation, p.Quarterly, p.Status, p.Stage,
		p.HandlerPersonnelID, p.RequestedAmount, p.ApprovedAmount, p.VATRate, p.WithholdingProfileID, p.IncomeTaxRuleID,
		p.HopCommitment, p.HopForward1Commitment, p.HopForward2Commitment,
		p.HopPreapproval, p.HopForward1Preapproval, p.HopForward2Preapproval, p.HopApproval,
		p.AAY, p.Notes, p.SendToExpenses,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Procurement{}, mapWriteError(err)
	}
	return p, nil
}

func (t *txRepo) Update(ctx context.Context, p Procurement) error {
	tag, err := t.tx.Exec(ctx, `UPDATE procurements SET
    fiscal_year = $2, service_unit_id = $3, serial_no = NULLIF($4, ''), description = $5,
    ale = NULLIF($6, ''), allocation = NULLIF($7, ''), quarterly = NULLIF($8, ''),
    status = NULLIF($9, ''), stage = NULLIF($10, ''), handler_personnel_id = $11,
    requested_amount = $12, approved_amount = $13, vat_rate = $14,
    withholding_profile_id = $15, income_tax_rule_id = $16,
    hop_commitment = NULLIF($17, ''), hop_forward1_commitment = NULLIF($18, ''), hop_forward2_commitment = NULLIF($19, ''),
    hop_preapproval = NULLIF($20, ''), hop_forward1_preapproval = NULLIF($21, ''), hop_forward2_preapproval = NULLIF($22, ''),
    hop_approval = NULLIF($23, ''), aay = NULLIF($24, ''), procurement_notes = NULLIF($25, ''),
    send_to_expenses = $26, updated_at = NOW()
WHERE id = $1`,
		p.ID, fiscalYearArg(p), p.ServiceUnitID, p.SerialNo, p.Description,
		p.ALE, p.Allocation, p.Quarterly,
		p.Status, p.Stage, p.HandlerPersonnelID,
		p.RequestedAmount, p.ApprovedAmount, p.VATRate,
		p.WithholdingProfileID, p.IncomeTaxRuleID,
		p.HopCommitment, p.HopForward1Commitment, p.HopForward2Commitment,
		p.HopPreapproval, p.HopForward1Preapproval, p.HopForward2Preapproval,
		p.HopApproval, p.AAY, p.Notes,
		p.SendToExpenses,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM procurements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) SaveTotals(ctx context.Context, id int64, totals costing.Totals, payable decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE procurements
SET sum_total = $2, vat_amount = $3, grand_total = $4, payable_total = $5
WHERE id = $1`, id, totals.SumTotal, totals.VATAmount, totals.GrandTotal, payable)
	return err
}

const lineColumns = `id, procurement_id, line_no, is_service, description, COALESCE(cpv, ''), COALESCE(nsn, ''),
COALESCE(unit, ''), quantity, unit_price, created_at`

func scanLine(row rowScanner) (MaterialLine, error) {
	var l MaterialLine
	err := row.Scan(&l.ID, &l.ProcurementID, &l.LineNo, &l.IsService, &l.Description, &l.CPV, &l.NSN,
		&l.Unit, &l.Quantity, &l.UnitPrice, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return MaterialLine{}, ErrLineNotFound
	}
	return l, err
}

func listLines(ctx context.Context, q querier, procurementID int64) ([]MaterialLine, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM material_lines WHERE procurement_id = $1 ORDER BY line_no, id`, procurementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := []MaterialLine{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (t *txRepo) Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error) {
	return listLines(ctx, t.tx, procurementID)
}

func (t *txRepo) NextLineNo(ctx context.Context, procurementID int64) (int, error) {
	var next int
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(MAX(line_no), 0) + 1 FROM material_lines WHERE procurement_id = $1`, procurementID).Scan(&next)
	return next, err
}

func (t *txRepo) InsertLine(ctx context.Context, l MaterialLine) (MaterialLine, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO material_lines
    (procurement_id, line_no, is_service, description, cpv, nsn, unit, quantity, unit_price)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
RETURNING id, created_at`,
		l.ProcurementID, l.LineNo, l.IsService, l.Description, l.CPV, l.NSN, l.Unit, l.Quantity, l.UnitPrice,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return MaterialLine{}, err
	}
	return l, nil
}

func (t *txRepo) GetLine(ctx context.Context, id int64) (MaterialLine, error) {
	return scanLine(t.tx.QueryRow(ctx, `SELECT `+lineColumns+` FROM material_lines WHERE id = $1`, id))
}

func (t *txRepo) DeleteLine(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM material_lines WHERE id = $1`, id)
	return err
}

const (
	linkColumns = `ps.id, ps.procurement_id, ps.supplier_id, s.name, s.afm, COALESCE(ps.result, ''), ps.is_winner,
ps.offered_amount, COALESCE(ps.notes, ''), ps.created_at`
	linkFrom = ` FROM procurement_suppliers ps JOIN suppliers s ON s.id = ps.supplier_id`
)

func scanLink(row rowScanner) (SupplierLink, error) {
	var (
		l       SupplierLink
		offered decimal.NullDecimal
	)
	err := row.Scan(&l.ID, &l.ProcurementID, &l.SupplierID, &l.SupplierName, &l.SupplierAFM, &l.Result, &l.IsWinner,
		&offered, &l.Notes, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SupplierLink{}, ErrSupplierLinkNotFound
		}
		return SupplierLink{}, err
	}
	l.OfferedAmount = money.Nullable(offered)
	return l, nil
}

func (t *txRepo) SupplierLink(ctx context.Context, id int64) (SupplierLink, error) {
	return scanLink(t.tx.QueryRow(ctx, `SELECT `+linkColumns+linkFrom+` WHERE ps.id = $1`, id))
}

func (t *txRepo) InsertSupplierLink(ctx context.Context, l SupplierLink) (SupplierLink, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO procurement_suppliers
    (procurement_id, supplier_id, result, is_winner, offered_amount, notes)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''))
RETURNING id`,
		l.ProcurementID, l.SupplierID, l.Result, l.IsWinner, l.OfferedAmount, l.Notes,
	).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return SupplierLink{}, ErrDuplicateSupplier
		}
		if shared.PgCode(err) == foreignKeyViolation {
			return SupplierLink{}, httpx.ValidationErrors{"supplier_id": "does not exist"}
		}
		return SupplierLink{}, err
	}
	return t.SupplierLink(ctx, id)
}

func (t *txRepo) DeleteSupplierLink(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM procurement_suppliers WHERE id = $1`, id)
	return err
}

func (t *txRepo) ClearWinners(ctx context.Context, procurementID, keepLinkID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE procurement_suppliers SET is_winner = FALSE
WHERE procurement_id = $1 AND id <> $2 AND is_winner`, procurementID, keepLinkID)
	return err
}

func (t *txRepo) MarkWinner(ctx context.Context, linkID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE procurement_suppliers SET is_winner = TRUE WHERE id = $1`, linkID)
	return err
}

func (t *txRepo) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	return shared.WriteAudit(ctx, t.tx, log)
}

func (t *txRepo) RecordApprovals(ctx context.Context, procurementID, actorID int64, changes []shared.MarkerChange) error {
	return shared.WriteApprovals(ctx, t.tx, procurementID, actorID, changes)
}

// mapWriteError turns dangling references into field errors.
func mapWriteError(err error) error {
	if shared.PgCode(err) != foreignKeyViolation {
		return err
	}
	switch shared.ConstraintName(err) {
	case "procurements_service_unit_id_fkey":
		return httpx.ValidationErrors{"service_unit_id": "does not exist"}
	case "procurements_handler_personnel_id_fkey":
		return httpx.ValidationErrors{"handler_personnel_id": "does not exist"}
	default:
		return httpx.ValidationErrors{"reference": "does not exist"}
	}
}
