package incometax

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
	rows   map[int64]Rule
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Rule, int, error) {
	out := make([]Rule, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Rule, error) {
	r, ok := m.rows[id]
	if !ok {
		return Rule{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) Create(_ context.Context, r Rule) (Rule, error) {
	for _, existing := range m.rows {
		if existing.Description == r.Description {
			return Rule{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	r.ID = m.nextID
	m.rows[r.ID] = r
	return r, nil
}

func (m *memoryRepo) Update(_ context.Context, r Rule) error {
	m.rows[r.ID] = r
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type queueRecorder struct {
	rules []int64
}

func (q *queueRecorder) EnqueueTotalsRefresh(_ context.Context, profileID, ruleID *int64) error {
	if ruleID != nil {
		q.rules = append(q.rules, *ruleID)
	}
	return nil
}

func TestCreateRequiresRate(t *testing.T) {
	svc := NewService(&memoryRepo{rows: map[int64]Rule{}}, nil, shared.ReferenceHooks{})

	_, err := svc.Create(context.Background(), Input{Description: "Goods"})
	var verrs httpx.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "is required", verrs["rate_percent"])

	_, err = svc.Create(context.Background(), Input{Description: "Goods", RatePercent: "4", Threshold: "-1"})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "must not be negative", verrs["threshold_amount"])
}

func TestCreateDefaultsThresholdToZero(t *testing.T) {
	svc := NewService(&memoryRepo{rows: map[int64]Rule{}}, nil, shared.ReferenceHooks{})

	r, err := svc.Create(context.Background(), Input{Description: "Services 8%", RatePercent: "8"})
	require.NoError(t, err)
	require.True(t, r.IsActive)
	require.True(t, r.Threshold.IsZero())

	r, err = svc.Create(context.Background(), Input{Description: "Goods 4%", RatePercent: "4", Threshold: "150,005"})
	require.NoError(t, err)
	require.Equal(t, "150.01", r.Threshold.StringFixed(2))
}

func TestUpdateEnqueuesRefresh(t *testing.T) {
	q := &queueRecorder{}
	svc := NewService(&memoryRepo{rows: map[int64]Rule{}}, nil, shared.ReferenceHooks{Queue: q})
	ctx := context.Background()

	r, err := svc.Create(ctx, Input{Description: "Goods 4%", RatePercent: "4", Threshold: "150"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, r.ID, Input{Description: "Goods 4%", RatePercent: "4", Threshold: "200"})
	require.NoError(t, err)
	require.Equal(t, []int64{r.ID}, q.rules)

	_, err = svc.Update(ctx, 99, Input{Description: "x", RatePercent: "1"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCostingConversionFeedsCalculator(t *testing.T) {
	r := Rule{Description: "Goods 4%", RatePercent: decimal.NewFromInt(4), Threshold: decimal.NewFromInt(150), IsActive: true}

	out := costing.IncomeTax(decimal.NewFromInt(1000), decimal.RequireFromString("2.00"), costing.Some(r.Costing()))
	require.Equal(t, "39.92", out.Amount.StringFixed(2))
	require.Equal(t, "Goods 4%", *out.Description)
}
