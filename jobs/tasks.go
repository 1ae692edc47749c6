package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTotalsRefresh recomputes stored procurement totals after a
	// withholding profile or income tax rule change.
	TaskTotalsRefresh = "totals:refresh"
	// TaskAuditPrune removes audit entries older than the retention window.
	TaskAuditPrune = "audit:prune"

	totalsRefreshUniqueFor = time.Minute
)

// TotalsRefreshPayload names the changed reference data. Both nil means
// every procurement.
type TotalsRefreshPayload struct {
	ProfileID *int64 `json:"profile_id,omitempty"`
	RuleID    *int64 `json:"rule_id,omitempty"`
}

// AuditPrunePayload carries the retention window in days.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewTotalsRefreshTask builds a refresh task. Identical payloads enqueued
// within a minute collapse into one run.
func NewTotalsRefreshTask(profileID, ruleID *int64) (*asynq.Task, error) {
	body, err := json.Marshal(TotalsRefreshPayload{ProfileID: profileID, RuleID: ruleID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTotalsRefresh, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Unique(totalsRefreshUniqueFor),
	), nil
}

// NewAuditPruneTask builds a prune task for the given retention.
func NewAuditPruneTask(retentionDays int) (*asynq.Task, error) {
	body, err := json.Marshal(AuditPrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

func newTaskID() asynq.Option {
	return asynq.TaskID(uuid.NewString())
}
