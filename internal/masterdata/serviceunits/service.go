package serviceunits

import (
	"context"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "ServiceUnit"

// PersonnelChecker reports whether a personnel id is active.
type PersonnelChecker interface {
	IsActive(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo      Repository
	personnel PersonnelChecker
	audit     shared.AuditPort
}

func NewService(repo Repository, personnel PersonnelChecker, audit shared.AuditPort) *Service {
	return &Service{repo: repo, personnel: personnel, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]ServiceUnit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (ServiceUnit, error) {
	if id <= 0 {
		return ServiceUnit{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (ServiceUnit, error) {
	in = normalize(in)
	if err := s.validate(ctx, in); err != nil {
		return ServiceUnit{}, err
	}
	created, err := s.repo.Create(ctx, apply(ServiceUnit{}, in))
	if err != nil {
		return ServiceUnit{}, err
	}
	shared.RecordAudit(ctx, s.audit, entityType, created.ID, internalShared.AuditCreate, nil, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (ServiceUnit, error) {
	if id <= 0 {
		return ServiceUnit{}, shared.ErrInvalidID
	}
	in = normalize(in)
	if err := s.validate(ctx, in); err != nil {
		return ServiceUnit{}, err
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return ServiceUnit{}, err
	}
	unit := apply(before, in)
	if err := s.repo.Update(ctx, unit); err != nil {
		return ServiceUnit{}, err
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, unit)
	return unit, nil
}

// AssignRoles replaces only the manager and deputy of a unit.
func (s *Service) AssignRoles(ctx context.Context, id int64, roles Roles) (ServiceUnit, error) {
	if id <= 0 {
		return ServiceUnit{}, shared.ErrInvalidID
	}
	errs := httpx.ValidationErrors{}
	if err := s.validateRoles(ctx, roles, errs); err != nil {
		return ServiceUnit{}, err
	}
	if len(errs) > 0 {
		return ServiceUnit{}, errs
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return ServiceUnit{}, err
	}
	unit := before
	unit.ManagerPersonnelID = roles.ManagerPersonnelID
	unit.DeputyPersonnelID = roles.DeputyPersonnelID
	if err := s.repo.Update(ctx, unit); err != nil {
		return ServiceUnit{}, err
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, unit)
	return unit, nil
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
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditDelete, before, nil)
	return nil
}

func apply(u ServiceUnit, in Input) ServiceUnit {
	u.Code = in.Code
	u.Description = in.Description
	u.ShortName = in.ShortName
	u.AAHIT = in.AAHIT
	u.Commander = in.Commander
	u.Curator = in.Curator
	u.SupplyOfficer = in.SupplyOfficer
	u.ManagerPersonnelID = in.ManagerPersonnelID
	u.DeputyPersonnelID = in.DeputyPersonnelID
	return u
}
