package procurement

import (
	"context"
	"strings"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Procurement, error)
	Lines(ctx context.Context, procurementID int64) ([]MaterialLine, error)
	Suppliers(ctx context.Context, procurementID int64) ([]SupplierLink, error)
	List(ctx context.Context, filter ListFilter) ([]Procurement, error)
	IDsReferencing(ctx context.Context, profileID, ruleID *int64) ([]int64, error)
	Approvals(ctx context.Context, procurementID int64) ([]shared.ApprovalLog, error)
}

// PersonnelPort checks handler eligibility.
type PersonnelPort interface {
	IsActiveInUnit(ctx context.Context, id, unitID int64) (bool, error)
}

// ReferencePort resolves withholding profiles and income tax rules.
type ReferencePort interface {
	Profile(ctx context.Context, id *int64) (costing.Optional[costing.WithholdingProfile], error)
	Rule(ctx context.Context, id *int64) (costing.Optional[costing.IncomeTaxRule], error)
}

// Renderer turns HTML into PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Observer counts computed analyses.
type Observer interface {
	AnalysisComputed()
}

// Service orchestrates the procurement aggregate.
type Service struct {
	repo      RepositoryPort
	personnel PersonnelPort
	refs      ReferencePort
	renderer  Renderer
	observer  Observer
}

// NewService constructs the procurement service. renderer and observer may be nil.
func NewService(repo RepositoryPort, personnel PersonnelPort, refs ReferencePort, renderer Renderer, observer Observer) *Service {
	return &Service{repo: repo, personnel: personnel, refs: refs, renderer: renderer, observer: observer}
}

// Create stores a new procurement. Non-admin actors always create in their
// own unit.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, in Input) (SaveResult, error) {
	if !actor.CanManage() {
		return SaveResult{}, ErrForbidden
	}
	p := in.apply(Procurement{})
	if actor.IsAdmin {
		p.ServiceUnitID = in.ServiceUnitID
	} else {
		if actor.ServiceUnitID == nil {
			return SaveResult{}, ErrForbidden
		}
		unit := *actor.ServiceUnitID
		p.ServiceUnitID = &unit
	}
	if err := s.check(ctx, p, nil); err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{ExpensesReset: enforceExpenses(&p)}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.Create(ctx, p)
		if err != nil {
			return err
		}
		changes := shared.DiffMarkers(nil, created.Markers())
		if err := tx.RecordApprovals(ctx, created.ID, actor.UserID, changes); err != nil {
			return err
		}
		result.Procurement = created
		return tx.RecordAudit(ctx, auditEntry(actor, entityProcurement, created.ID, shared.AuditCreate, nil, created))
	})
	if err != nil {
		return SaveResult{}, err
	}
	return result, nil
}

// Update replaces the editable fields of a procurement. A nil handler clears it.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, id int64, in Input) (SaveResult, error) {
	var result SaveResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		before, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanEdit(actor, before) {
			return ErrForbidden
		}
		p := in.apply(before)
		if actor.IsAdmin {
			p.ServiceUnitID = in.ServiceUnitID
		}
		if err := s.check(ctx, p, &before); err != nil {
			return err
		}
		result.ExpensesReset = enforceExpenses(&p)
		if err := s.refresh(ctx, tx, &p); err != nil {
			return err
		}
		if err := tx.Update(ctx, p); err != nil {
			return err
		}
		changes := shared.DiffMarkers(before.Markers(), p.Markers())
		if err := tx.RecordApprovals(ctx, id, actor.UserID, changes); err != nil {
			return err
		}
		result.Procurement = p
		return tx.RecordAudit(ctx, auditEntry(actor, entityProcurement, id, shared.AuditUpdate, before, p))
	})
	if err != nil {
		return SaveResult{}, err
	}
	return result, nil
}

// Get returns the procurement with its lines, suppliers and live totals.
func (s *Service) Get(ctx context.Context, actor rbac.Actor, id int64) (Detail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if !rbac.CanView(actor, p) {
		return Detail{}, ErrForbidden
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	suppliers, err := s.repo.Suppliers(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Procurement: p,
		Lines:       lines,
		Suppliers:   suppliers,
		Totals:      costing.ComputeTotals(costingLines(lines), p.VATRate),
		RowClass:    RowClass(p),
	}, nil
}

// Approvals returns the marker history of a procurement the actor can view.
func (s *Service) Approvals(ctx context.Context, actor rbac.Actor, id int64) ([]shared.ApprovalLog, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanView(actor, p) {
		return nil, ErrForbidden
	}
	return s.repo.Approvals(ctx, id)
}

// Delete removes the procurement together with its lines and supplier links.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		before, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanEdit(actor, before) {
			return ErrForbidden
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, auditEntry(actor, entityProcurement, id, shared.AuditDelete, before, nil))
	})
}

// AddLine appends a line and refreshes the stored totals.
func (s *Service) AddLine(ctx context.Context, actor rbac.Actor, procurementID int64, in LineInput) (MaterialLine, error) {
	line := in.line()
	if line.Description == "" {
		return MaterialLine{}, httpx.ValidationErrors{"description": "is required"}
	}
	var created MaterialLine
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := s.editable(ctx, tx, actor, procurementID)
		if err != nil {
			return err
		}
		no, err := tx.NextLineNo(ctx, procurementID)
		if err != nil {
			return err
		}
		line.ProcurementID = procurementID
		line.LineNo = no
		if created, err = tx.InsertLine(ctx, line); err != nil {
			return err
		}
		if err := s.refresh(ctx, tx, &p); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, auditEntry(actor, entityLine, created.ID, shared.AuditCreate, nil, created))
	})
	if err != nil {
		return MaterialLine{}, err
	}
	return created, nil
}

// RemoveLine deletes a line of the procurement and refreshes the stored totals.
func (s *Service) RemoveLine(ctx context.Context, actor rbac.Actor, procurementID, lineID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := s.editable(ctx, tx, actor, procurementID)
		if err != nil {
			return err
		}
		line, err := tx.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.ProcurementID != procurementID {
			return ErrLineNotFound
		}
		if err := tx.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		if err := s.refresh(ctx, tx, &p); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, auditEntry(actor, entityLine, lineID, shared.AuditDelete, line, nil))
	})
}

// AddSupplier links a supplier. A winning link clears every other winner.
func (s *Service) AddSupplier(ctx context.Context, actor rbac.Actor, procurementID int64, in SupplierInput) (SupplierLink, error) {
	if in.SupplierID <= 0 {
		return SupplierLink{}, httpx.ValidationErrors{"supplier_id": "is required"}
	}
	var created SupplierLink
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.editable(ctx, tx, actor, procurementID); err != nil {
			return err
		}
		link := in.link()
		link.ProcurementID = procurementID
		var err error
		if created, err = tx.InsertSupplierLink(ctx, link); err != nil {
			return err
		}
		if created.IsWinner {
			if err := tx.ClearWinners(ctx, procurementID, created.ID); err != nil {
				return err
			}
		}
		return tx.RecordAudit(ctx, auditEntry(actor, entitySupplierLink, created.ID, shared.AuditCreate, nil, created))
	})
	if err != nil {
		return SupplierLink{}, err
	}
	return created, nil
}

// RemoveSupplier unlinks a supplier from the procurement.
func (s *Service) RemoveSupplier(ctx context.Context, actor rbac.Actor, procurementID, linkID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.editable(ctx, tx, actor, procurementID); err != nil {
			return err
		}
		link, err := ownedLink(ctx, tx, procurementID, linkID)
		if err != nil {
			return err
		}
		if err := tx.DeleteSupplierLink(ctx, linkID); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, auditEntry(actor, entitySupplierLink, linkID, shared.AuditDelete, link, nil))
	})
}

// SetWinner makes linkID the only winning supplier of the procurement.
func (s *Service) SetWinner(ctx context.Context, actor rbac.Actor, procurementID, linkID int64) (SupplierLink, error) {
	var after SupplierLink
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.editable(ctx, tx, actor, procurementID); err != nil {
			return err
		}
		before, err := ownedLink(ctx, tx, procurementID, linkID)
		if err != nil {
			return err
		}
		if err := tx.ClearWinners(ctx, procurementID, linkID); err != nil {
			return err
		}
		if err := tx.MarkWinner(ctx, linkID); err != nil {
			return err
		}
		after = before
		after.IsWinner = true
		return tx.RecordAudit(ctx, auditEntry(actor, entitySupplierLink, linkID, shared.AuditUpdate, before, after))
	})
	if err != nil {
		return SupplierLink{}, err
	}
	return after, nil
}

// Inbox lists live procurements that have not been sent to expenses.
func (s *Service) Inbox(ctx context.Context, actor rbac.Actor, search string) ([]ListItem, error) {
	return s.List(ctx, actor, ViewInbox, search)
}

// PendingExpenses lists approved procurements sent to expenses.
func (s *Service) PendingExpenses(ctx context.Context, actor rbac.Actor, search string) ([]ListItem, error) {
	return s.List(ctx, actor, ViewPending, search)
}

// All lists every procurement the actor may see.
func (s *Service) All(ctx context.Context, actor rbac.Actor, search string) ([]ListItem, error) {
	return s.List(ctx, actor, ViewAll, search)
}

// List returns view scoped to the actor's unit unless the actor is an admin.
func (s *Service) List(ctx context.Context, actor rbac.Actor, view View, search string) ([]ListItem, error) {
	filter := ListFilter{View: view, Search: strings.TrimSpace(search)}
	if !actor.IsAdmin {
		if actor.ServiceUnitID == nil {
			return []ListItem{}, nil
		}
		unit := *actor.ServiceUnitID
		filter.UnitID = &unit
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortBySerial(rows)
	items := make([]ListItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, ListItem{Procurement: p, RowClass: RowClass(p)})
	}
	return items, nil
}

// PaymentAnalysis computes the deduction cascade for the procurement.
func (s *Service) PaymentAnalysis(ctx context.Context, actor rbac.Actor, id int64) (costing.PaymentAnalysis, error) {
	_, analysis, err := s.analysisFor(ctx, actor, id)
	return analysis, err
}

// PaymentAnalysisPDF renders the payment analysis as a PDF document.
func (s *Service) PaymentAnalysisPDF(ctx context.Context, actor rbac.Actor, id int64) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}
	p, analysis, err := s.analysisFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	html, err := renderAnalysisHTML(p, analysis)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html)
}

func (s *Service) analysisFor(ctx context.Context, actor rbac.Actor, id int64) (Procurement, costing.PaymentAnalysis, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Procurement{}, costing.PaymentAnalysis{}, err
	}
	if !rbac.CanView(actor, p) {
		return Procurement{}, costing.PaymentAnalysis{}, ErrForbidden
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return Procurement{}, costing.PaymentAnalysis{}, err
	}
	analysis, err := s.analyze(ctx, p, lines)
	if err != nil {
		return Procurement{}, costing.PaymentAnalysis{}, err
	}
	if s.observer != nil {
		s.observer.AnalysisComputed()
	}
	return p, analysis, nil
}

// RecomputeTotals refreshes the stored totals of one procurement.
func (s *Service) RecomputeTotals(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		return s.refresh(ctx, tx, &p)
	})
}

// RefreshReferencing recomputes every procurement that uses the given profile
// or rule and returns how many were refreshed.
func (s *Service) RefreshReferencing(ctx context.Context, profileID, ruleID *int64) (int, error) {
	ids, err := s.repo.IDsReferencing(ctx, profileID, ruleID)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := s.RecomputeTotals(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

func (s *Service) editable(ctx context.Context, tx TxRepository, actor rbac.Actor, id int64) (Procurement, error) {
	p, err := tx.Lock(ctx, id)
	if err != nil {
		return Procurement{}, err
	}
	if !rbac.CanEdit(actor, p) {
		return Procurement{}, ErrForbidden
	}
	return p, nil
}

func ownedLink(ctx context.Context, tx TxRepository, procurementID, linkID int64) (SupplierLink, error) {
	link, err := tx.SupplierLink(ctx, linkID)
	if err != nil {
		return SupplierLink{}, err
	}
	if link.ProcurementID != procurementID {
		return SupplierLink{}, ErrSupplierLinkNotFound
	}
	return link, nil
}

// refresh recomputes and stores the totals snapshot of p from its current lines.
func (s *Service) refresh(ctx context.Context, tx TxRepository, p *Procurement) error {
	lines, err := tx.Lines(ctx, p.ID)
	if err != nil {
		return err
	}
	analysis, err := s.analyze(ctx, *p, lines)
	if err != nil {
		return err
	}
	totals := costing.ComputeTotals(costingLines(lines), p.VATRate)
	p.ApplyTotals(totals, analysis.PayableTotal)
	return tx.SaveTotals(ctx, p.ID, totals, analysis.PayableTotal)
}

func (s *Service) analyze(ctx context.Context, p Procurement, lines []MaterialLine) (costing.PaymentAnalysis, error) {
	profile, err := s.refs.Profile(ctx, p.WithholdingProfileID)
	if err != nil {
		return costing.PaymentAnalysis{}, err
	}
	rule, err := s.refs.Rule(ctx, p.IncomeTaxRuleID)
	if err != nil {
		return costing.PaymentAnalysis{}, err
	}
	return costing.AnalyzeLines(costingLines(lines), p.VATRate, profile, rule), nil
}

// check validates p and its references. before is nil on create.
func (s *Service) check(ctx context.Context, p Procurement, before *Procurement) error {
	errs := validate(p)
	if p.HandlerPersonnelID != nil {
		ok := false
		if p.ServiceUnitID != nil {
			var err error
			ok, err = s.personnel.IsActiveInUnit(ctx, *p.HandlerPersonnelID, *p.ServiceUnitID)
			if err != nil {
				return err
			}
		}
		if !ok {
			errs["handler_personnel_id"] = "must be active personnel of the service unit"
		}
	}
	if p.WithholdingProfileID != nil {
		profile, err := s.refs.Profile(ctx, p.WithholdingProfileID)
		if err != nil {
			return err
		}
		v, ok := profile.Get()
		kept := before != nil && sameID(before.WithholdingProfileID, p.WithholdingProfileID)
		if msg := referenceProblem(ok, v.IsActive, kept); msg != "" {
			errs["withholding_profile_id"] = msg
		}
	}
	if p.IncomeTaxRuleID != nil {
		rule, err := s.refs.Rule(ctx, p.IncomeTaxRuleID)
		if err != nil {
			return err
		}
		v, ok := rule.Get()
		kept := before != nil && sameID(before.IncomeTaxRuleID, p.IncomeTaxRuleID)
		if msg := referenceProblem(ok, v.IsActive, kept); msg != "" {
			errs["income_tax_rule_id"] = msg
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// referenceProblem accepts an inactive reference only when the procurement
// already pointed at it.
func referenceProblem(exists, active, kept bool) string {
	switch {
	case !exists:
		return "does not exist"
	case !active && !kept:
		return "is inactive"
	default:
		return ""
	}
}

// enforceExpenses clears send_to_expenses when there is no approval marker and
// reports whether it did.
func enforceExpenses(p *Procurement) bool {
	if p.SendToExpenses && p.HopApproval == "" {
		p.SendToExpenses = false
		return true
	}
	return false
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

const (
	entityProcurement  = "Procurement"
	entityLine         = "MaterialLine"
	entitySupplierLink = "ProcurementSupplier"
)

func auditEntry(actor rbac.Actor, entity string, id int64, action shared.AuditAction, before, after any) shared.AuditLog {
	log := shared.AuditLog{EntityType: entity, EntityID: id, Action: action, Username: actor.Username}
	if actor.UserID != 0 {
		uid := actor.UserID
		log.UserID = &uid
	}
	if before != nil {
		log.Before = shared.Snapshot(before)
	}
	if after != nil {
		log.After = shared.Snapshot(after)
	}
	return log
}
