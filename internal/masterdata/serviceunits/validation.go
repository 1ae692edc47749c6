package serviceunits

import (
	"context"
	"strings"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

func normalize(in Input) Input {
	in.Code = strings.TrimSpace(in.Code)
	in.Description = strings.TrimSpace(in.Description)
	in.ShortName = strings.TrimSpace(in.ShortName)
	in.AAHIT = strings.TrimSpace(in.AAHIT)
	in.Commander = strings.TrimSpace(in.Commander)
	in.Curator = strings.TrimSpace(in.Curator)
	in.SupplyOfficer = strings.TrimSpace(in.SupplyOfficer)
	return in
}

func (s *Service) validate(ctx context.Context, in Input) error {
	errs := httpx.ValidationErrors{}
	if in.Description == "" {
		errs["description"] = "is required"
	}
	if err := s.validateRoles(ctx, Roles{ManagerPersonnelID: in.ManagerPersonnelID, DeputyPersonnelID: in.DeputyPersonnelID}, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRoles requires distinct, active personnel for manager and deputy.
func (s *Service) validateRoles(ctx context.Context, roles Roles, errs httpx.ValidationErrors) error {
	if roles.ManagerPersonnelID != nil && roles.DeputyPersonnelID != nil &&
		*roles.ManagerPersonnelID == *roles.DeputyPersonnelID {
		errs["deputy_personnel_id"] = "must differ from the manager"
		return nil
	}
	for field, id := range map[string]*int64{
		"manager_personnel_id": roles.ManagerPersonnelID,
		"deputy_personnel_id":  roles.DeputyPersonnelID,
	} {
		if id == nil {
			continue
		}
		ok, err := s.personnel.IsActive(ctx, *id)
		if err != nil {
			return err
		}
		if !ok {
			errs[field] = "must be active personnel"
		}
	}
	return nil
}
