package refdata

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

type countingLoader struct {
	profiles map[int64]costing.WithholdingProfile
	rules    map[int64]costing.IncomeTaxRule
	calls    atomic.Int64
}

func (l *countingLoader) Profile(_ context.Context, id int64) (costing.WithholdingProfile, error) {
	l.calls.Add(1)
	p, ok := l.profiles[id]
	if !ok {
		return p, ErrNotFound
	}
	return p, nil
}

func (l *countingLoader) Rule(_ context.Context, id int64) (costing.IncomeTaxRule, error) {
	l.calls.Add(1)
	r, ok := l.rules[id]
	if !ok {
		return r, ErrNotFound
	}
	return r, nil
}

func setup(t *testing.T) (*Cache, *countingLoader) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	loader := &countingLoader{
		profiles: map[int64]costing.WithholdingProfile{
			1: {ID: 1, Name: "Standard", MtEloa: decimal.RequireFromString("0.10"), Eadhsy: decimal.RequireFromString("0.10"), IsActive: true},
		},
		rules: map[int64]costing.IncomeTaxRule{
			2: {ID: 2, Description: "Goods 4%", RatePercent: decimal.NewFromInt(4), Threshold: decimal.NewFromInt(150), IsActive: true},
		},
	}
	return NewCache(client, loader, time.Minute), loader
}

func ptr(v int64) *int64 { return &v }

func TestProfileIsCached(t *testing.T) {
	cache, loader := setup(t)
	ctx := context.Background()

	first, err := cache.Profile(ctx, ptr(1))
	require.NoError(t, err)
	p, ok := first.Get()
	require.True(t, ok)
	require.Equal(t, "Standard", p.Name)
	require.True(t, p.MtEloa.Equal(decimal.RequireFromString("0.10")))

	_, err = cache.Profile(ctx, ptr(1))
	require.NoError(t, err)
	require.EqualValues(t, 1, loader.calls.Load())
}

func TestBumpForcesReload(t *testing.T) {
	cache, loader := setup(t)
	ctx := context.Background()

	_, err := cache.Rule(ctx, ptr(2))
	require.NoError(t, err)

	before, err := cache.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, before+1, after)

	rule, err := cache.Rule(ctx, ptr(2))
	require.NoError(t, err)
	r, ok := rule.Get()
	require.True(t, ok)
	require.True(t, r.Threshold.Equal(decimal.NewFromInt(150)))
	require.EqualValues(t, 2, loader.calls.Load())
}

func TestMissingAndNilReferencesAreNone(t *testing.T) {
	cache, loader := setup(t)
	ctx := context.Background()

	p, err := cache.Profile(ctx, nil)
	require.NoError(t, err)
	require.False(t, p.Present())
	require.Zero(t, loader.calls.Load())

	p, err = cache.Profile(ctx, ptr(404))
	require.NoError(t, err)
	require.False(t, p.Present())

	r, err := cache.Rule(ctx, ptr(404))
	require.NoError(t, err)
	require.False(t, r.Present())
}

func TestConcurrentReadsAgree(t *testing.T) {
	cache, _ := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cache.Profile(ctx, ptr(1))
			results <- err == nil && p.Present()
		}()
	}
	wg.Wait()
	close(results)
	for ok := range results {
		require.True(t, ok)
	}
}

func TestNilClientLoadsDirectly(t *testing.T) {
	loader := &countingLoader{profiles: map[int64]costing.WithholdingProfile{1: {ID: 1, Name: "Direct", IsActive: true}}}
	cache := NewCache(nil, loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := cache.Profile(ctx, ptr(1))
		require.NoError(t, err)
		require.True(t, p.Present())
	}
	require.EqualValues(t, 2, loader.calls.Load())
	require.NoError(t, cache.Bump(ctx))
}
