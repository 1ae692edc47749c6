package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type stubRepo struct {
	rows       []shared.AuditLog
	lastFilter TimelineFilters
	lastOffset int
	lastLimit  int
	cutoff     time.Time
}

func (s *stubRepo) Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]shared.AuditLog, error) {
	s.lastFilter, s.lastOffset, s.lastLimit = f, offset, limit
	end := offset + limit
	if offset > len(s.rows) {
		return nil, nil
	}
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func (s *stubRepo) All(ctx context.Context, f TimelineFilters) ([]shared.AuditLog, error) {
	s.lastFilter = f
	return s.rows, nil
}

func (s *stubRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return 4, nil
}

func entries(n int) []shared.AuditLog {
	out := make([]shared.AuditLog, n)
	for i := range out {
		out[i] = shared.AuditLog{ID: int64(i + 1), EntityType: "Procurement", EntityID: 1, Action: shared.AuditUpdate}
	}
	return out
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{rows: entries(3)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2, Action: " update "})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 2, result.Paging.NextPage)
	require.Equal(t, 3, repo.lastLimit)
	require.Equal(t, 0, repo.lastOffset)
	require.Equal(t, "UPDATE", repo.lastFilter.Action)

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.False(t, result.Paging.HasNext)
	require.Equal(t, 1, result.Paging.PrevPage)
	require.Equal(t, 2, repo.lastOffset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	result, err := NewService(repo).Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, maxPageSize, result.Paging.PageSize)
	require.Equal(t, maxPageSize+1, repo.lastLimit)
	require.NotNil(t, result.Rows)
}

func TestPruneUsesRetentionWindow(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.Prune(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), repo.cutoff)

	_, err = svc.Prune(context.Background(), 0)
	require.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	uid := int64(9)
	rows := []shared.AuditLog{{
		ID:         1,
		EntityType: "Supplier",
		EntityID:   5,
		Action:     shared.AuditUpdate,
		Before:     map[string]any{"name": "Old, SA"},
		After:      map[string]any{"name": "New SA"},
		UserID:     &uid,
		Username:   "admin",
		IP:         "10.0.0.1",
		At:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	out, err := WriteCSV(rows)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "id,at,user_id,username,ip,entity_type,entity_id,action,before,after", lines[0])
	require.Equal(t, `1,2025-01-02T03:04:05Z,9,admin,10.0.0.1,Supplier,5,UPDATE,"{""name"":""Old, SA""}","{""name"":""New SA""}"`, lines[1])
}
