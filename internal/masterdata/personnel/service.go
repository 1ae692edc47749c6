package personnel

import (
	"context"
	"errors"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "Personnel"

type Service struct {
	repo  Repository
	audit shared.AuditPort
}

func NewService(repo Repository, audit shared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Personnel, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Personnel, error) {
	if id <= 0 {
		return Personnel{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// ListActiveByUnit returns the active members of a unit in Greek name order.
func (s *Service) ListActiveByUnit(ctx context.Context, unitID int64) ([]Personnel, error) {
	people, err := s.repo.ListActive(ctx, &unitID)
	if err != nil {
		return nil, err
	}
	SortByName(people)
	return people, nil
}

// ListActive returns every active person in Greek name order.
func (s *Service) ListActive(ctx context.Context) ([]Personnel, error) {
	people, err := s.repo.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	SortByName(people)
	return people, nil
}

// IsActive reports whether id names an active person.
func (s *Service) IsActive(ctx context.Context, id int64) (bool, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsActive, nil
}

// IsActiveInUnit reports whether id names an active member of unitID.
func (s *Service) IsActiveInUnit(ctx context.Context, id, unitID int64) (bool, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsActive && p.ServiceUnitID != nil && *p.ServiceUnitID == unitID, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Personnel, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Personnel{}, err
	}
	if err := s.checkUnit(ctx, in.ServiceUnitID); err != nil {
		return Personnel{}, err
	}
	p := apply(Personnel{IsActive: true}, in)
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Personnel{}, duplicateAGM(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, created.ID, internalShared.AuditCreate, nil, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Personnel, error) {
	if id <= 0 {
		return Personnel{}, shared.ErrInvalidID
	}
	in = normalize(in)
	if err := validate(in); err != nil {
		return Personnel{}, err
	}
	if err := s.checkUnit(ctx, in.ServiceUnitID); err != nil {
		return Personnel{}, err
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return Personnel{}, err
	}
	p := apply(before, in)
	if err := s.repo.Update(ctx, p); err != nil {
		return Personnel{}, duplicateAGM(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, p)
	return p, nil
}

func (s *Service) checkUnit(ctx context.Context, unitID *int64) error {
	if unitID == nil {
		return nil
	}
	ok, err := s.repo.UnitExists(ctx, *unitID)
	if err != nil {
		return err
	}
	if !ok {
		return httpx.ValidationErrors{"service_unit_id": "unknown service unit"}
	}
	return nil
}

func apply(p Personnel, in Input) Personnel {
	p.AGM = in.AGM
	p.AEM = in.AEM
	p.Rank = in.Rank
	p.Specialty = in.Specialty
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.ServiceUnitID = in.ServiceUnitID
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}

func duplicateAGM(err error) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.ValidationErrors{"agm": "already registered"}
	}
	return err
}
