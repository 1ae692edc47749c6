package incometax

import (
	"context"
	"errors"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "IncomeTaxRule"

type Service struct {
	repo  Repository
	audit shared.AuditPort
	hooks shared.ReferenceHooks
}

func NewService(repo Repository, audit shared.AuditPort, hooks shared.ReferenceHooks) *Service {
	return &Service{repo: repo, audit: audit, hooks: hooks}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Rule, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Rule, error) {
	if id <= 0 {
		return Rule{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Rule, error) {
	rule, err := parse(Rule{IsActive: true}, in)
	if err != nil {
		return Rule{}, err
	}
	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return Rule{}, duplicateDescription(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, created.ID, internalShared.AuditCreate, nil, created)
	return created, nil
}

// Update changes a rule and schedules a totals refresh for procurements
// that reference it.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Rule, error) {
	if id <= 0 {
		return Rule{}, shared.ErrInvalidID
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	rule, err := parse(before, in)
	if err != nil {
		return Rule{}, err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return Rule{}, duplicateDescription(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, rule)
	s.hooks.Changed(ctx, nil, &id)
	return rule, nil
}

// Delete removes a rule. Procurements referencing it fall back to no
// income tax.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditDelete, before, nil)
	s.hooks.Changed(ctx, nil, &id)
	return nil
}

func duplicateDescription(err error) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.ValidationErrors{"description": "already exists"}
	}
	return err
}
