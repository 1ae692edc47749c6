package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type memoryRepo struct {
	items  []Feedback
	nextID int64
}

func (m *memoryRepo) Create(ctx context.Context, f Feedback) (Feedback, error) {
	m.nextID++
	f.ID = m.nextID
	m.items = append(m.items, f)
	return f, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Feedback, error) {
	for _, f := range m.items {
		if f.ID == id {
			return f, nil
		}
	}
	return Feedback{}, ErrNotFound
}

func (m *memoryRepo) List(ctx context.Context, filter Filter) ([]Feedback, int, error) {
	out := []Feedback{}
	for _, f := range m.items {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && (f.UserID == nil || *f.UserID != *filter.UserID) {
			continue
		}
		out = append(out, f)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SetStatus(ctx context.Context, id int64, status string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

type recordingAudit struct{ logs []shared.AuditLog }

func (r *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestSubmitDefaultsAndOwnership(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, &recordingAudit{})
	ctx := context.Background()
	maria := rbac.Actor{UserID: 3, Username: "maria"}
	procID := int64(12)

	f, err := svc.Submit(ctx, maria, SubmitInput{Category: CategoryBug, Subject: " Broken PDF ", Message: "blank page", RelatedProcurementID: &procID})
	require.NoError(t, err)
	require.Equal(t, StatusNew, f.Status)
	require.Equal(t, "Broken PDF", f.Subject)
	require.Equal(t, int64(3), *f.UserID)
	require.Equal(t, int64(12), *f.RelatedProcurementID)

	_, err = svc.Submit(ctx, rbac.Actor{UserID: 4}, SubmitInput{Category: CategoryOther, Subject: "s", Message: "m"})
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, maria)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)
	_, err := svc.Submit(context.Background(), rbac.Actor{UserID: 1}, SubmitInput{Category: "rant", Subject: "  "})
	var verr httpx.ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr, "category")
	require.Equal(t, "is required", verr["subject"])
	require.Equal(t, "is required", verr["message"])
}

func TestSetStatusAudits(t *testing.T) {
	repo := &memoryRepo{}
	audit := &recordingAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()
	f, err := svc.Submit(ctx, rbac.Actor{UserID: 1}, SubmitInput{Category: CategorySuggestion, Subject: "s", Message: "m"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, f.ID, StatusResolved)
	require.NoError(t, err)
	require.Equal(t, StatusResolved, updated.Status)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "Feedback", audit.logs[0].EntityType)
	require.Equal(t, shared.AuditUpdate, audit.logs[0].Action)

	_, err = svc.SetStatus(ctx, f.ID, StatusResolved)
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)

	_, err = svc.SetStatus(ctx, f.ID, "archived")
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.SetStatus(ctx, 99, StatusClosed)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	open, _, err := svc.List(ctx, Filter{Status: StatusNew})
	require.NoError(t, err)
	require.Empty(t, open)
	_, _, err = svc.List(ctx, Filter{Status: "bogus"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
