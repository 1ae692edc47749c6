package withholding

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

type memoryRepo struct {
	nextID int64
	rows   map[int64]Profile
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Profile, int, error) {
	out := make([]Profile, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, p Profile) (Profile, error) {
	for _, existing := range m.rows {
		if existing.Name == p.Name {
			return Profile{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(_ context.Context, p Profile) error {
	m.rows[p.ID] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type hookRecorder struct {
	bumps    int
	profiles []int64
}

func (h *hookRecorder) Bump(context.Context) error {
	h.bumps++
	return nil
}

func (h *hookRecorder) EnqueueTotalsRefresh(_ context.Context, profileID, ruleID *int64) error {
	if profileID != nil {
		h.profiles = append(h.profiles, *profileID)
	}
	return nil
}

func newService() (*Service, *hookRecorder) {
	rec := &hookRecorder{}
	svc := NewService(&memoryRepo{rows: map[int64]Profile{}}, nil, shared.ReferenceHooks{Cache: rec, Queue: rec})
	return svc, rec
}

func TestCreateParsesPercents(t *testing.T) {
	svc, rec := newService()

	p, err := svc.Create(context.Background(), Input{Name: " Standard ", MtEloa: "0,10", Eadhsy: "0.10", K1: "", K2: "0.02"})
	require.NoError(t, err)
	require.Equal(t, "Standard", p.Name)
	require.True(t, p.IsActive)
	require.True(t, p.MtEloa.Equal(decimal.RequireFromString("0.10")))
	require.True(t, p.K1.IsZero())
	require.True(t, p.TotalPercent().Equal(decimal.RequireFromString("0.22")))
	require.Zero(t, rec.bumps)
}

func TestCreateRejectsNegativeAndGarbage(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), Input{Name: "Bad", MtEloa: "-1", K2: "abc"})
	var verrs httpx.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "must not be negative", verrs["mt_eloa"])
	require.Equal(t, "must be a number", verrs["k2"])
}

func TestUpdateAndDeleteTriggerRefresh(t *testing.T) {
	svc, rec := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Standard", MtEloa: "0.10"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, p.ID, Input{Name: "Standard", MtEloa: "0.20", IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Equal(t, 1, rec.bumps)
	require.Equal(t, []int64{p.ID}, rec.profiles)

	require.NoError(t, svc.Delete(ctx, p.ID))
	require.Equal(t, 2, rec.bumps)

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDuplicateName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Standard"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Standard"})
	var verrs httpx.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, "name")
}

func TestCostingConversionFeedsCalculator(t *testing.T) {
	p := Profile{ID: 1, Name: "Std", MtEloa: decimal.RequireFromString("0.10"), Eadhsy: decimal.RequireFromString("0.10"), IsActive: true}

	b := costing.Withholding(decimal.NewFromInt(1000), costing.Some(p.Costing()))
	require.Len(t, b.Items, 2)
	require.Equal(t, "2.00", b.TotalAmount.StringFixed(2))
}
