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

// AuditPruner deletes audit entries older than retention.
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditPruneJob handles TaskAuditPrune.
type AuditPruneJob struct {
	Pruner  AuditPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditPruneJob constructs the job handler.
func NewAuditPruneJob(pruner AuditPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPruneJob {
	return &AuditPruneJob{Pruner: pruner, Logger: logger, Metrics: metrics}
}

// Handle executes the prune.
func (j *AuditPruneJob) Handle(ctx context.Context, task *asynq.Task) (resultErr error) {
	if j == nil || j.Pruner == nil {
		return errors.New("audit prune: dependencies not configured")
	}
	var payload AuditPrunePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.RetentionDays <= 0 {
		return asynq.SkipRetry
	}

	run := j.Metrics.Start(TaskAuditPrune)
	defer func() {
		resultErr = run.Finish(resultErr)
	}()

	n, err := j.Pruner.Prune(ctx, time.Duration(payload.RetentionDays)*24*time.Hour)
	if err != nil {
		loggerOr(j.Logger).Error("prune audit log", slog.Any("error", err))
		return err
	}
	run.Rows(n)
	loggerOr(j.Logger).Info("pruned audit log", slog.Int("retention_days", payload.RetentionDays), slog.Int64("deleted", n))
	return nil
}
