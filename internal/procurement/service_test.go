package procurement

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type memoryProcRepo struct {
	procs     map[int64]Procurement
	lines     map[int64]MaterialLine
	links     map[int64]SupplierLink
	audits    []shared.AuditLog
	approvals []shared.MarkerChange
	nextID    int64
}

type memoryProcTx struct {
	repo *memoryProcRepo
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		procs: make(map[int64]Procurement),
		lines: make(map[int64]MaterialLine),
		links: make(map[int64]SupplierLink),
	}
}

// WithTx discards every write of a failed callback.
func (r *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := r.clone()
	if err := fn(ctx, &memoryProcTx{repo: r}); err != nil {
		*r = *snapshot
		return err
	}
	return nil
}

func (r *memoryProcRepo) clone() *memoryProcRepo {
	c := newMemoryProcRepo()
	for k, v := range r.procs {
		c.procs[k] = v
	}
	for k, v := range r.lines {
		c.lines[k] = v
	}
	for k, v := range r.links {
		c.links[k] = v
	}
	c.audits = append([]shared.AuditLog(nil), r.audits...)
	c.approvals = append([]shared.MarkerChange(nil), r.approvals...)
	c.nextID = r.nextID
	return c
}

func (r *memoryProcRepo) Get(ctx context.Context, id int64) (Procurement, error) {
	p, ok := r.procs[id]
	if !ok {
		return Procurement{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryProcRepo) Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error) {
	out := []MaterialLine{}
	for _, l := range r.lines {
		if l.ProcurementID == procurementID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (r *memoryProcRepo) Suppliers(ctx context.Context, procurementID int64) ([]SupplierLink, error) {
	out := []SupplierLink{}
	for _, l := range r.links {
		if l.ProcurementID == procurementID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryProcRepo) List(ctx context.Context, filter ListFilter) ([]Procurement, error) {
	out := []Procurement{}
	for _, p := range r.procs {
		if !filter.View.Matches(p) {
			continue
		}
		if filter.UnitID != nil && !sameID(filter.UnitID, p.ServiceUnitID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(p.Description, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryProcRepo) IDsReferencing(ctx context.Context, profileID, ruleID *int64) ([]int64, error) {
	var ids []int64
	for id, p := range r.procs {
		if (profileID == nil && ruleID == nil) || sameID(profileID, p.WithholdingProfileID) || sameID(ruleID, p.IncomeTaxRuleID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memoryProcRepo) Approvals(ctx context.Context, procurementID int64) ([]shared.ApprovalLog, error) {
	var logs []shared.ApprovalLog
	for i, c := range r.approvals {
		logs = append(logs, shared.ApprovalLog{ID: int64(i + 1), ProcurementID: procurementID, Stage: c.Stage, Value: c.To})
	}
	return logs, nil
}

func (tx *memoryProcTx) nextID() int64 {
	tx.repo.nextID++
	return tx.repo.nextID
}

func (tx *memoryProcTx) Lock(ctx context.Context, id int64) (Procurement, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryProcTx) Create(ctx context.Context, p Procurement) (Procurement, error) {
	p.ID = tx.nextID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	tx.repo.procs[p.ID] = p
	return p, nil
}

func (tx *memoryProcTx) Update(ctx context.Context, p Procurement) error {
	stored, ok := tx.repo.procs[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.SumTotal, p.VATAmount, p.GrandTotal, p.PayableTotal = stored.SumTotal, stored.VATAmount, stored.GrandTotal, stored.PayableTotal
	tx.repo.procs[p.ID] = p
	return nil
}

func (tx *memoryProcTx) Delete(ctx context.Context, id int64) error {
	delete(tx.repo.procs, id)
	for lid, l := range tx.repo.lines {
		if l.ProcurementID == id {
			delete(tx.repo.lines, lid)
		}
	}
	for lid, l := range tx.repo.links {
		if l.ProcurementID == id {
			delete(tx.repo.links, lid)
		}
	}
	return nil
}

func (tx *memoryProcTx) SaveTotals(ctx context.Context, id int64, totals costing.Totals, payable decimal.Decimal) error {
	p := tx.repo.procs[id]
	p.ApplyTotals(totals, payable)
	tx.repo.procs[id] = p
	return nil
}

func (tx *memoryProcTx) Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error) {
	return tx.repo.Lines(ctx, procurementID)
}

func (tx *memoryProcTx) NextLineNo(ctx context.Context, procurementID int64) (int, error) {
	max := 0
	for _, l := range tx.repo.lines {
		if l.ProcurementID == procurementID && l.LineNo > max {
			max = l.LineNo
		}
	}
	return max + 1, nil
}

func (tx *memoryProcTx) InsertLine(ctx context.Context, line MaterialLine) (MaterialLine, error) {
	line.ID = tx.nextID()
	tx.repo.lines[line.ID] = line
	return line, nil
}

func (tx *memoryProcTx) GetLine(ctx context.Context, id int64) (MaterialLine, error) {
	l, ok := tx.repo.lines[id]
	if !ok {
		return MaterialLine{}, ErrLineNotFound
	}
	return l, nil
}

func (tx *memoryProcTx) DeleteLine(ctx context.Context, id int64) error {
	delete(tx.repo.lines, id)
	return nil
}

func (tx *memoryProcTx) SupplierLink(ctx context.Context, id int64) (SupplierLink, error) {
	l, ok := tx.repo.links[id]
	if !ok {
		return SupplierLink{}, ErrSupplierLinkNotFound
	}
	return l, nil
}

func (tx *memoryProcTx) InsertSupplierLink(ctx context.Context, link SupplierLink) (SupplierLink, error) {
	for _, l := range tx.repo.links {
		if l.ProcurementID == link.ProcurementID && l.SupplierID == link.SupplierID {
			return SupplierLink{}, ErrDuplicateSupplier
		}
	}
	link.ID = tx.nextID()
	tx.repo.links[link.ID] = link
	return link, nil
}

func (tx *memoryProcTx) DeleteSupplierLink(ctx context.Context, id int64) error {
	delete(tx.repo.links, id)
	return nil
}

func (tx *memoryProcTx) ClearWinners(ctx context.Context, procurementID, keepLinkID int64) error {
	for id, l := range tx.repo.links {
		if l.ProcurementID == procurementID && id != keepLinkID {
			l.IsWinner = false
			tx.repo.links[id] = l
		}
	}
	return nil
}

func (tx *memoryProcTx) MarkWinner(ctx context.Context, linkID int64) error {
	l := tx.repo.links[linkID]
	l.IsWinner = true
	tx.repo.links[linkID] = l
	return nil
}

func (tx *memoryProcTx) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	tx.repo.audits = append(tx.repo.audits, log)
	return nil
}

func (tx *memoryProcTx) RecordApprovals(ctx context.Context, procurementID, actorID int64, changes []shared.MarkerChange) error {
	tx.repo.approvals = append(tx.repo.approvals, changes...)
	return nil
}

type stubPersonnel map[int64]int64

func (s stubPersonnel) IsActiveInUnit(ctx context.Context, id, unitID int64) (bool, error) {
	unit, ok := s[id]
	return ok && unit == unitID, nil
}

type stubRefs struct {
	profiles map[int64]costing.WithholdingProfile
	rules    map[int64]costing.IncomeTaxRule
}

func (s stubRefs) Profile(ctx context.Context, id *int64) (costing.Optional[costing.WithholdingProfile], error) {
	if id == nil {
		return costing.None[costing.WithholdingProfile](), nil
	}
	p, ok := s.profiles[*id]
	if !ok {
		return costing.None[costing.WithholdingProfile](), nil
	}
	return costing.Some(p), nil
}

func (s stubRefs) Rule(ctx context.Context, id *int64) (costing.Optional[costing.IncomeTaxRule], error) {
	if id == nil {
		return costing.None[costing.IncomeTaxRule](), nil
	}
	r, ok := s.rules[*id]
	if !ok {
		return costing.None[costing.IncomeTaxRule](), nil
	}
	return costing.Some(r), nil
}

type stubRenderer struct{ html string }

func (s *stubRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.html = html
	return []byte("%PDF-1.4"), nil
}

type countingObserver struct{ n int }

func (c *countingObserver) AnalysisComputed() { c.n++ }

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	admin   = rbac.Actor{UserID: 1, Username: "admin", IsAdmin: true}
	manager = rbac.NewActor(2, "manager", false, ptr(int64(20)), &rbac.UnitRoles{UnitID: 7, ManagerPersonnelID: ptr(int64(20))})
	member  = rbac.NewActor(3, "member", false, ptr(int64(21)), &rbac.UnitRoles{UnitID: 7, ManagerPersonnelID: ptr(int64(20))})
	other   = rbac.NewActor(4, "other", false, ptr(int64(30)), &rbac.UnitRoles{UnitID: 8, ManagerPersonnelID: ptr(int64(30))})
)

type fixture struct {
	repo     *memoryProcRepo
	svc      *Service
	renderer *stubRenderer
	observer *countingObserver
}

func newFixture() fixture {
	repo := newMemoryProcRepo()
	refs := stubRefs{
		profiles: map[int64]costing.WithholdingProfile{
			1: {ID: 1, Name: "standard", MtEloa: dec("0.10"), Eadhsy: dec("0.02"), K1: dec("0.06"), K2: dec("0.06"), IsActive: true},
			2: {ID: 2, Name: "retired", MtEloa: dec("1"), IsActive: false},
		},
		rules: map[int64]costing.IncomeTaxRule{
			1: {ID: 1, Description: "supplies 4%", RatePercent: dec("4"), Threshold: dec("150"), IsActive: true},
		},
	}
	renderer := &stubRenderer{}
	observer := &countingObserver{}
	svc := NewService(repo, stubPersonnel{20: 7, 21: 7, 30: 8}, refs, renderer, observer)
	return fixture{repo: repo, svc: svc, renderer: renderer, observer: observer}
}

func TestCreateForcesOwnUnitForManagers(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), manager, Input{Description: "Toner", ServiceUnitID: ptr(int64(8))})
	require.NoError(t, err)
	require.Equal(t, int64(7), *res.Procurement.ServiceUnitID)
	require.Len(t, f.repo.audits, 1)
	require.Equal(t, shared.AuditCreate, f.repo.audits[0].Action)
	require.Equal(t, "manager", f.repo.audits[0].Username)

	res, err = f.svc.Create(context.Background(), admin, Input{Description: "Paper", ServiceUnitID: ptr(int64(8))})
	require.NoError(t, err)
	require.Equal(t, int64(8), *res.Procurement.ServiceUnitID)
}

func TestCreateRequiresManagement(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), member, Input{Description: "Toner"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, f.repo.procs)
}

func TestCreateValidatesFields(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), manager, Input{
		Description:          "  ",
		HandlerPersonnelID:   ptr(int64(30)),
		WithholdingProfileID: ptr(int64(2)),
		IncomeTaxRuleID:      ptr(int64(99)),
	})
	var verr httpx.ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "is required", verr["description"])
	require.Equal(t, "must be active personnel of the service unit", verr["handler_personnel_id"])
	require.Equal(t, "is inactive", verr["withholding_profile_id"])
	require.Equal(t, "does not exist", verr["income_tax_rule_id"])
}

func TestSendToExpensesNeedsApproval(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), manager, Input{Description: "Toner", SendToExpenses: true})
	require.NoError(t, err)
	require.True(t, res.ExpensesReset)
	require.False(t, res.Procurement.SendToExpenses)

	res, err = f.svc.Create(context.Background(), manager, Input{Description: "Toner", SendToExpenses: true, HopApproval: "123/2024"})
	require.NoError(t, err)
	require.False(t, res.ExpensesReset)
	require.True(t, res.Procurement.SendToExpenses)
	require.Equal(t, []shared.MarkerChange{{Stage: shared.StageApproval, From: "", To: "123/2024"}}, f.repo.approvals)

	logs, err := f.svc.Approvals(context.Background(), member, res.Procurement.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "123/2024", logs[0].Value)
	_, err = f.svc.Approvals(context.Background(), other, res.Procurement.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateKeepsInactiveReferenceAlreadyAssigned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, admin, Input{Description: "Toner", ServiceUnitID: ptr(int64(7))})
	require.NoError(t, err)
	id := created.Procurement.ID

	f.repo.procs[id] = func() Procurement {
		p := f.repo.procs[id]
		p.WithholdingProfileID = ptr(int64(2))
		return p
	}()

	_, err = f.svc.Update(ctx, manager, id, Input{Description: "Toner v2", WithholdingProfileID: ptr(int64(2))})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, manager, id, Input{Description: "Toner v3", WithholdingProfileID: ptr(int64(1))})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, manager, id, Input{Description: "Toner v4", WithholdingProfileID: ptr(int64(2))})
	var verr httpx.ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "is inactive", verr["withholding_profile_id"])
}

func TestUpdatePermissions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{Description: "Toner", HandlerPersonnelID: ptr(int64(21))})
	require.NoError(t, err)
	id := created.Procurement.ID

	_, err = f.svc.Update(ctx, member, id, Input{Description: "x"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = f.svc.Update(ctx, other, id, Input{Description: "x"})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	res, err := f.svc.Update(ctx, manager, id, Input{Description: "Toner", VATRate: "24,0"})
	require.NoError(t, err)
	require.Nil(t, res.Procurement.HandlerPersonnelID)
	require.True(t, dec("24").Equal(*res.Procurement.VATRate))
	require.Equal(t, int64(7), *res.Procurement.ServiceUnitID)
}

func TestGetRespectsUnitVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{Description: "Toner"})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, member, created.Procurement.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, other, created.Procurement.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = f.svc.Get(ctx, admin, 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestLinesRefreshStoredTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{
		Description:          "Toner",
		VATRate:              "24",
		WithholdingProfileID: ptr(int64(1)),
		IncomeTaxRuleID:      ptr(int64(1)),
	})
	require.NoError(t, err)
	id := created.Procurement.ID

	first, err := f.svc.AddLine(ctx, manager, id, LineInput{Description: "Cartridge", Quantity: "2", UnitPrice: "250,00"})
	require.NoError(t, err)
	require.Equal(t, 1, first.LineNo)
	second, err := f.svc.AddLine(ctx, manager, id, LineInput{Description: "Drum", Quantity: "abc", UnitPrice: "10"})
	require.NoError(t, err)
	require.Equal(t, 2, second.LineNo)
	require.True(t, second.Quantity.IsZero())

	stored := f.repo.procs[id]
	require.Equal(t, "500.00", stored.SumTotal.StringFixed(2))
	require.Equal(t, "120.00", stored.VATAmount.StringFixed(2))
	require.Equal(t, "620.00", stored.GrandTotal.StringFixed(2))
	// 500 - 1.20 withholdings - 19.95 income tax + 120 VAT
	require.Equal(t, "598.85", stored.PayableTotal.StringFixed(2))

	require.ErrorIs(t, f.svc.RemoveLine(ctx, member, id, first.ID), httpx.ErrForbidden)
	require.NoError(t, f.svc.RemoveLine(ctx, manager, id, first.ID))
	require.True(t, f.repo.procs[id].SumTotal.IsZero())
}

func TestAddLineRequiresDescription(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), manager, Input{Description: "Toner"})
	require.NoError(t, err)
	_, err = f.svc.AddLine(context.Background(), manager, created.Procurement.ID, LineInput{Quantity: "1"})
	var verr httpx.ValidationErrors
	require.ErrorAs(t, err, &verr)
}

func TestRemoveLineOfAnotherProcurement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, err := f.svc.Create(ctx, manager, Input{Description: "A"})
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, manager, Input{Description: "B"})
	require.NoError(t, err)
	line, err := f.svc.AddLine(ctx, manager, b.Procurement.ID, LineInput{Description: "x", Quantity: "1", UnitPrice: "1"})
	require.NoError(t, err)

	err = f.svc.RemoveLine(ctx, manager, a.Procurement.ID, line.ID)
	require.ErrorIs(t, err, ErrLineNotFound)
	require.Contains(t, f.repo.lines, line.ID)
}

func TestSupplierWinnerIsExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{Description: "Toner"})
	require.NoError(t, err)
	id := created.Procurement.ID

	first, err := f.svc.AddSupplier(ctx, manager, id, SupplierInput{SupplierID: 100, IsWinner: true, OfferedAmount: "99,50"})
	require.NoError(t, err)
	require.True(t, dec("99.5").Equal(*first.OfferedAmount))
	second, err := f.svc.AddSupplier(ctx, manager, id, SupplierInput{SupplierID: 101, IsWinner: true})
	require.NoError(t, err)
	require.False(t, f.repo.links[first.ID].IsWinner)
	require.True(t, f.repo.links[second.ID].IsWinner)

	_, err = f.svc.AddSupplier(ctx, manager, id, SupplierInput{SupplierID: 100})
	require.ErrorIs(t, err, ErrDuplicateSupplier)
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	won, err := f.svc.SetWinner(ctx, manager, id, first.ID)
	require.NoError(t, err)
	require.True(t, won.IsWinner)
	require.False(t, f.repo.links[second.ID].IsWinner)

	require.NoError(t, f.svc.RemoveSupplier(ctx, manager, id, second.ID))
	require.NotContains(t, f.repo.links, second.ID)
}

func TestListsAreScopedAndOrdered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, in := range []Input{
		{Description: "b", SerialNo: "10"},
		{Description: "a", SerialNo: "9"},
		{Description: "c", SerialNo: "A-1"},
		{Description: "d", Status: StatusCancelled},
		{Description: "e", SendToExpenses: true, HopApproval: "55"},
	} {
		_, err := f.svc.Create(ctx, manager, in)
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, other, Input{Description: "foreign"})
	require.NoError(t, err)

	inbox, err := f.svc.Inbox(ctx, member, "")
	require.NoError(t, err)
	var serials []string
	for _, it := range inbox {
		serials = append(serials, it.SerialNo)
	}
	require.Equal(t, []string{"9", "10", "A-1"}, serials)

	pending, err := f.svc.PendingExpenses(ctx, member, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "e", pending[0].Description)

	all, err := f.svc.All(ctx, member, "")
	require.NoError(t, err)
	require.Len(t, all, 5)

	everything, err := f.svc.All(ctx, admin, "")
	require.NoError(t, err)
	require.Len(t, everything, 6)

	none, err := f.svc.All(ctx, rbac.Actor{UserID: 9}, "")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSortBySerialFallsBackToID(t *testing.T) {
	items := []Procurement{
		{ID: 4, SerialNo: ""},
		{ID: 3, SerialNo: "B"},
		{ID: 2, SerialNo: "7"},
		{ID: 1, SerialNo: ""},
		{ID: 5, SerialNo: "7"},
	}
	SortBySerial(items)
	var ids []int64
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []int64{2, 5, 1, 4, 3}, ids)
}

func TestRowClass(t *testing.T) {
	require.Equal(t, RowCancelled, RowClass(Procurement{Status: StatusCancelled, Stage: StageApproval}))
	require.Equal(t, RowComplete, RowClass(Procurement{Status: StatusComplete}))
	require.Equal(t, RowExpense, RowClass(Procurement{Stage: StageExpense}))
	require.Equal(t, RowApproval, RowClass(Procurement{Stage: StageApproval}))
	require.Equal(t, "", RowClass(Procurement{}))
}

func TestPaymentAnalysisAndPDF(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{
		Description:          "Toner",
		SerialNo:             "42",
		VATRate:              "0.24",
		WithholdingProfileID: ptr(int64(1)),
		IncomeTaxRuleID:      ptr(int64(1)),
	})
	require.NoError(t, err)
	id := created.Procurement.ID
	_, err = f.svc.AddLine(ctx, manager, id, LineInput{Description: "Cartridge", Quantity: "1", UnitPrice: "1000"})
	require.NoError(t, err)

	analysis, err := f.svc.PaymentAnalysis(ctx, member, id)
	require.NoError(t, err)
	require.Equal(t, "1000.00", analysis.Subtotal.StringFixed(2))
	require.Equal(t, "2.40", analysis.Withholdings.TotalAmount.StringFixed(2))
	require.Equal(t, "39.90", analysis.IncomeTax.Amount.StringFixed(2))
	require.Equal(t, "24.00", analysis.VATPercent.StringFixed(2))
	require.Equal(t, "1197.70", analysis.PayableTotal.StringFixed(2))
	require.Equal(t, 1, f.observer.n)

	_, err = f.svc.PaymentAnalysis(ctx, other, id)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	pdf, err := f.svc.PaymentAnalysisPDF(ctx, member, id)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(pdf))
	require.Contains(t, f.renderer.html, "1197.70")
	require.Contains(t, f.renderer.html, "ΜΤ-ΕΛΟΑ")
}

func TestPDFWithoutRenderer(t *testing.T) {
	f := newFixture()
	f.svc.renderer = nil
	_, err := f.svc.PaymentAnalysisPDF(context.Background(), admin, 1)
	require.True(t, errors.Is(err, ErrRendererUnavailable))
}

func TestRefreshReferencingRecomputesSnapshots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{Description: "Toner", WithholdingProfileID: ptr(int64(1))})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, manager, Input{Description: "Paper"})
	require.NoError(t, err)
	id := created.Procurement.ID
	_, err = f.svc.AddLine(ctx, manager, id, LineInput{Description: "Cartridge", Quantity: "1", UnitPrice: "100"})
	require.NoError(t, err)
	require.Equal(t, "99.76", f.repo.procs[id].PayableTotal.StringFixed(2))

	refs := f.svc.refs.(stubRefs)
	p := refs.profiles[1]
	p.IsActive = false
	refs.profiles[1] = p

	n, err := f.svc.RefreshReferencing(ctx, ptr(int64(1)), nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "100.00", f.repo.procs[id].PayableTotal.StringFixed(2))
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, manager, Input{Description: "Toner"})
	require.NoError(t, err)
	id := created.Procurement.ID
	_, err = f.svc.AddLine(ctx, manager, id, LineInput{Description: "x", Quantity: "1", UnitPrice: "1"})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, member, id), httpx.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, manager, id))
	require.Empty(t, f.repo.procs)
	require.Empty(t, f.repo.lines)
	last := f.repo.audits[len(f.repo.audits)-1]
	require.Equal(t, shared.AuditDelete, last.Action)
	require.Equal(t, "Toner", last.Before["description"])
}
