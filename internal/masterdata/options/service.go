package options

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "OptionValue"

var (
	ErrUnknownCategory = fmt.Errorf("options: unknown category: %w", httpx.ErrNotFound)
	ErrForbidden       = fmt.Errorf("options: %w", httpx.ErrForbidden)
)

type Service struct {
	repo  Repository
	audit shared.AuditPort
}

func NewService(repo Repository, audit shared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Values lists every value of a category the actor may manage. Unit
// managers only see the committees of their own unit.
func (s *Service) Values(ctx context.Context, actor rbac.Actor, key string) ([]Value, error) {
	def, cat, err := s.category(ctx, key)
	if err != nil {
		return nil, err
	}
	var unitID *int64
	switch {
	case actor.IsAdmin:
	case def.UnitScoped && actor.CanManage() && actor.ServiceUnitID != nil:
		unitID = actor.ServiceUnitID
	default:
		return nil, ErrForbidden
	}
	values, err := s.repo.ListValues(ctx, cat.ID, unitID, false)
	if err != nil {
		return nil, err
	}
	sortValues(values)
	return values, nil
}

// ActiveValues returns the active texts of a category in display order.
func (s *Service) ActiveValues(ctx context.Context, key string) ([]string, error) {
	_, cat, err := s.category(ctx, key)
	if err != nil {
		return nil, err
	}
	values, err := s.repo.ListValues(ctx, cat.ID, nil, true)
	if err != nil {
		return nil, err
	}
	sortValues(values)
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.Value)
	}
	return out, nil
}

// AddValue appends a value. Non-admin committee values are pinned to the
// actor's unit.
func (s *Service) AddValue(ctx context.Context, actor rbac.Actor, key string, in ValueInput) (Value, error) {
	def, cat, err := s.category(ctx, key)
	if err != nil {
		return Value{}, err
	}
	in.Value = strings.TrimSpace(in.Value)
	if in.Value == "" {
		return Value{}, httpx.ValidationErrors{"value": "is required"}
	}

	v := Value{CategoryID: cat.ID, Value: in.Value, SortOrder: in.SortOrder, IsActive: true}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if def.UnitScoped {
		v.ServiceUnitID = in.ServiceUnitID
		if !actor.IsAdmin {
			v.ServiceUnitID = actor.ServiceUnitID
		}
	}
	if !allowed(actor, def, v.ServiceUnitID) {
		return Value{}, ErrForbidden
	}

	created, err := s.repo.CreateValue(ctx, v)
	if err != nil {
		return Value{}, duplicateValue(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, created.ID, internalShared.AuditCreate, nil, created)
	return created, nil
}

// UpdateValue edits text, order and active flag of a value in key.
func (s *Service) UpdateValue(ctx context.Context, actor rbac.Actor, key string, id int64, in ValueInput) (Value, error) {
	def, cat, err := s.category(ctx, key)
	if err != nil {
		return Value{}, err
	}
	before, err := s.repo.GetValue(ctx, id)
	if err != nil {
		return Value{}, err
	}
	if before.CategoryID != cat.ID || !allowed(actor, def, before.ServiceUnitID) {
		return Value{}, ErrForbidden
	}
	in.Value = strings.TrimSpace(in.Value)
	if in.Value == "" {
		return Value{}, httpx.ValidationErrors{"value": "is required"}
	}

	v := before
	v.Value = in.Value
	v.SortOrder = in.SortOrder
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if def.UnitScoped && actor.IsAdmin {
		v.ServiceUnitID = in.ServiceUnitID
	}
	if err := s.repo.UpdateValue(ctx, v); err != nil {
		return Value{}, duplicateValue(err)
	}
	shared.RecordAudit(ctx, s.audit, entityType, id, internalShared.AuditUpdate, before, v)
	return v, nil
}

// Seed creates the known categories and their default values. Existing rows
// are left untouched.
func (s *Service) Seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, def := range definitions {
		cat, err := s.repo.EnsureCategory(ctx, def.Key, def.Label)
		if err != nil {
			return inserted, err
		}
		for i, text := range def.Defaults {
			ok, err := s.repo.InsertValueIfMissing(ctx, Value{CategoryID: cat.ID, Value: text, SortOrder: i, IsActive: true})
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
			}
		}
	}
	return inserted, nil
}

func (s *Service) category(ctx context.Context, key string) (Definition, Category, error) {
	def, ok := Lookup(key)
	if !ok {
		return Definition{}, Category{}, ErrUnknownCategory
	}
	cat, err := s.repo.EnsureCategory(ctx, def.Key, def.Label)
	return def, cat, err
}

func allowed(actor rbac.Actor, def Definition, unitID *int64) bool {
	if actor.IsAdmin {
		return true
	}
	if !def.UnitScoped || unitID == nil {
		return false
	}
	return rbac.CanManageCommittee(actor, *unitID)
}

func duplicateValue(err error) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.ValidationErrors{"value": "already exists"}
	}
	return err
}
