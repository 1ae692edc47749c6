package suppliers

import (
	"context"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type Service struct {
	repo  Repository
	audit shared.AuditPort
}

func NewService(repo Repository, audit shared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Supplier, error) {
	sup := normalize(in.supplier())
	if err := s.validate(sup); err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, sup)
	if err != nil {
		return Supplier{}, err
	}
	s.recordAudit(ctx, internalShared.AuditCreate, created.ID, nil, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	sup := normalize(in.supplier())
	if err := s.validate(sup); err != nil {
		return Supplier{}, err
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	sup.ID = id
	sup.CreatedAt = before.CreatedAt
	if err := s.repo.Update(ctx, sup); err != nil {
		return Supplier{}, err
	}
	s.recordAudit(ctx, internalShared.AuditUpdate, id, before, sup)
	return sup, nil
}

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
	s.recordAudit(ctx, internalShared.AuditDelete, id, before, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action internalShared.AuditAction, id int64, before, after any) {
	shared.RecordAudit(ctx, s.audit, "Supplier", id, action, before, after)
}
