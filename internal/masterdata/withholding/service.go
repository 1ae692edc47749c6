package withholding

import (
	"context"
	"errors"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "WithholdingProfile"

type Service struct {
	repo  Repository
	audit shared.AuditPort
	hooks shared.ReferenceHooks
}

func NewService(repo Repository, audit shared.AuditPort, hooks shared.ReferenceHooks) *Service {
	return &Service{repo: repo, audit: audit, hooks: hooks}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Profile, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Profile, error) {
	if id <= 0 {
		return Profile{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Profile, error) {
	p, err := parse(Profile{IsActive: true}, in)
	if err != nil {
		return Profile{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Profile{}, duplicateName(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, created.ID, internalShared.AuditCreate, nil, created)
	return created, nil
}

// Update changes a profile and schedules a totals refresh for procurements
// that reference it.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Profile, error) {
	if id <= 0 {
		return Profile{}, shared.ErrInvalidID
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p, err := parse(before, in)
	if err != nil {
		return Profile{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, duplicateName(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, p)
	s.hooks.Changed(ctx, &id, nil)
	return p, nil
}

// Delete removes a profile. Procurements referencing it fall back to no
// withholding.
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
	s.hooks.Changed(ctx, &id, nil)
	return nil
}

func duplicateName(err error) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.ValidationErrors{"name": "already exists"}
	}
	return err
}
