package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// WorkerConfig holds what the worker process needs to connect to Redis.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
}

// Worker consumes the job queue and, when cron entries are registered, runs
// the periodic scheduler in the same process.
type Worker struct {
	redis     asynq.RedisClientOpt
	logger    *slog.Logger
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker builds a worker with no handlers registered.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := loggerOr(cfg.Logger)
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	w := &Worker{redis: cfg.RedisOpts, logger: logger, mux: asynq.NewServeMux()}
	w.server = asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency:     concurrency,
		Queues:          map[string]int{QueueDefault: 1},
		Logger:          newAsynqLogger(logger),
		ShutdownTimeout: 30 * time.Second,
		ErrorHandler:    asynq.ErrorHandlerFunc(w.reportFailure),
	})
	return w
}

// Handle routes a task type to fn.
func (w *Worker) Handle(taskType string, fn asynq.HandlerFunc) {
	w.mux.HandleFunc(taskType, fn)
}

// Schedule enqueues task on the cron spec. Specs are evaluated in UTC.
func (w *Worker) Schedule(spec string, task *asynq.Task) error {
	if spec == "" || task == nil {
		return errors.New("jobs: empty schedule")
	}
	if w.scheduler == nil {
		w.scheduler = asynq.NewScheduler(w.redis, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   newAsynqLogger(w.logger),
		})
	}
	_, err := w.scheduler.Register(spec, task)
	return err
}

// Run processes tasks until ctx is cancelled, then drains in-flight work.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.server.Shutdown()
			return err
		}
	}
	w.logger.Info("worker started")
	<-ctx.Done()
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	w.logger.Info("worker stopped")
	return ctx.Err()
}

func (w *Worker) reportFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	w.logger.Warn("task failed",
		slog.String("type", task.Type()),
		slog.Int("retry", retried),
		slog.Int("max_retry", maxRetry),
		slog.Any("error", err))
}
