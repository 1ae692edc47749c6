package shared

import (
	"context"
	"log/slog"
)

// CacheInvalidator drops cached reference data.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// TotalsQueue schedules recomputation of stored procurement totals.
type TotalsQueue interface {
	EnqueueTotalsRefresh(ctx context.Context, profileID, ruleID *int64) error
}

// ReferenceHooks runs the side effects of a withholding profile or income
// tax rule change. Failures are logged; the change itself is committed.
type ReferenceHooks struct {
	Cache  CacheInvalidator
	Queue  TotalsQueue
	Logger *slog.Logger
}

// Changed bumps the reference cache and enqueues a totals refresh.
func (h ReferenceHooks) Changed(ctx context.Context, profileID, ruleID *int64) {
	if h.Cache != nil {
		if err := h.Cache.Bump(ctx); err != nil && h.Logger != nil {
			h.Logger.Warn("refdata bump failed", slog.Any("error", err))
		}
	}
	if h.Queue != nil {
		if err := h.Queue.EnqueueTotalsRefresh(ctx, profileID, ruleID); err != nil && h.Logger != nil {
			h.Logger.Warn("enqueue totals refresh failed", slog.Any("error", err))
		}
	}
}
