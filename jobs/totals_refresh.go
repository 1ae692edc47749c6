package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/XristosAndreopo/invoice-procurement-management/internal/jobs"
)

// TotalsRefresher recomputes the stored totals of procurements that reference
// the given profile or rule and reports how many it touched.
type TotalsRefresher interface {
	RefreshReferencing(ctx context.Context, profileID, ruleID *int64) (int, error)
}

// TotalsRefreshJob handles TaskTotalsRefresh.
type TotalsRefreshJob struct {
	Refresher TotalsRefresher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewTotalsRefreshJob constructs the job handler.
func NewTotalsRefreshJob(refresher TotalsRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *TotalsRefreshJob {
	return &TotalsRefreshJob{Refresher: refresher, Logger: logger, Metrics: metrics}
}

// Handle executes the refresh.
func (j *TotalsRefreshJob) Handle(ctx context.Context, task *asynq.Task) (resultErr error) {
	if j == nil || j.Refresher == nil {
		return errors.New("totals refresh: dependencies not configured")
	}
	var payload TotalsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	run := j.Metrics.Start(TaskTotalsRefresh)
	defer func() {
		resultErr = run.Finish(resultErr)
	}()

	start := time.Now()
	n, err := j.Refresher.RefreshReferencing(ctx, payload.ProfileID, payload.RuleID)
	if err != nil {
		loggerOr(j.Logger).Error("refresh procurement totals", slog.Any("error", err))
		return err
	}
	run.Rows(int64(n))
	loggerOr(j.Logger).Info("refreshed procurement totals",
		slog.Any("profile_id", payload.ProfileID),
		slog.Any("rule_id", payload.RuleID),
		slog.Int("procurements", n),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
