package feedback

import (
	"context"
	"strings"

	mdshared "github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const entityType = "Feedback"

// Repository persists feedback entries.
type Repository interface {
	Create(ctx context.Context, f Feedback) (Feedback, error)
	Get(ctx context.Context, id int64) (Feedback, error)
	List(ctx context.Context, filter Filter) ([]Feedback, int, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

// Service implements submission and triage of feedback.
type Service struct {
	repo  Repository
	audit mdshared.AuditPort
}

// NewService builds Service instance.
func NewService(repo Repository, audit mdshared.AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Submit stores a new entry owned by actor with status new.
func (s *Service) Submit(ctx context.Context, actor rbac.Actor, in SubmitInput) (Feedback, error) {
	f := Feedback{
		Category:             strings.TrimSpace(in.Category),
		Subject:              strings.TrimSpace(in.Subject),
		Message:              strings.TrimSpace(in.Message),
		RelatedProcurementID: in.RelatedProcurementID,
		Status:               StatusNew,
		Username:             actor.Username,
	}
	if actor.UserID > 0 {
		uid := actor.UserID
		f.UserID = &uid
	}
	errs := httpx.ValidationErrors{}
	if !validCategory(f.Category) {
		errs["category"] = "must be one of: complaint, suggestion, bug, other"
	}
	if f.Subject == "" {
		errs["subject"] = "is required"
	}
	if f.Message == "" {
		errs["message"] = "is required"
	}
	if len(errs) > 0 {
		return Feedback{}, errs
	}
	return s.repo.Create(ctx, f)
}

// Mine lists the actor's own submissions, newest first.
func (s *Service) Mine(ctx context.Context, actor rbac.Actor) ([]Feedback, error) {
	uid := actor.UserID
	items, _, err := s.repo.List(ctx, Filter{UserID: &uid})
	return items, err
}

// List returns entries for administrators.
func (s *Service) List(ctx context.Context, filter Filter) ([]Feedback, int, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, httpx.ValidationErrors{"status": "must be one of: new, in_progress, resolved, closed"}
	}
	if filter.Category != "" && !validCategory(filter.Category) {
		return nil, 0, httpx.ValidationErrors{"category": "must be one of: complaint, suggestion, bug, other"}
	}
	return s.repo.List(ctx, filter)
}

// SetStatus moves an entry to status and records the change.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (Feedback, error) {
	if id <= 0 {
		return Feedback{}, mdshared.ErrInvalidID
	}
	if !validStatus(status) {
		return Feedback{}, httpx.ValidationErrors{"status": "must be one of: new, in_progress, resolved, closed"}
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	if before.Status == status {
		return before, nil
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return Feedback{}, err
	}
	after := before
	after.Status = status
	mdshared.RecordAudit(ctx, s.audit, entityType, id, shared.AuditUpdate, before, after)
	return after, nil
}
