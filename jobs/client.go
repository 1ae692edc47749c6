package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues procman tasks.
type Client struct {
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewClient dials Redis with redisOpts.
func NewClient(redisOpts asynq.RedisClientOpt, logger *slog.Logger) *Client {
	return NewClientWith(asynq.NewClient(redisOpts), logger)
}

// NewClientWith wraps an existing enqueuer.
func NewClientWith(enqueuer Enqueuer, logger *slog.Logger) *Client {
	return &Client{enqueuer: enqueuer, logger: loggerOr(logger)}
}

// EnqueueTotalsRefresh asks the worker to recompute stored totals of the
// procurements referencing the profile or rule. A duplicate inside the
// uniqueness window is not an error.
func (c *Client) EnqueueTotalsRefresh(ctx context.Context, profileID, ruleID *int64) error {
	task, err := NewTotalsRefreshTask(profileID, ruleID)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// EnqueueAuditPrune asks for an immediate prune outside the cron schedule.
func (c *Client) EnqueueAuditPrune(ctx context.Context, retentionDays int) error {
	task, err := NewAuditPruneTask(retentionDays)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := c.enqueuer.EnqueueContext(ctx, task, newTaskID())
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		c.logger.Debug("task already queued", slog.String("type", task.Type()))
		return nil
	case err != nil:
		return err
	}
	c.logger.Debug("task queued", slog.String("type", task.Type()), slog.String("task_id", info.ID))
	return nil
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.enqueuer.Close()
}
