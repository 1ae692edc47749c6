package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/app"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/audit"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/personnel"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/observability"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/cache"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/db"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/procurement"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/refdata"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/jobs"
)

// retentionPruner prunes the audit log and expired idempotency claims in one pass.
type retentionPruner struct {
	audit   *audit.Service
	keys    *shared.IdempotencyStore
	keysTTL time.Duration
	logger  *slog.Logger
}

func (p retentionPruner) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := p.audit.Prune(ctx, retention)
	if err != nil {
		return n, err
	}
	keys, err := p.keys.Cleanup(ctx, p.keysTTL)
	if err != nil {
		return n, err
	}
	p.logger.Info("pruned idempotency keys", slog.Int64("deleted", keys))
	return n + keys, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	refCache := refdata.NewCache(redisClient, refdata.NewPGLoader(pool), cfg.RefdataCacheTTL)
	if err := refCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("refdata invalidation listener", slog.Any("error", err))
	}

	personnelService := personnel.NewService(personnel.NewRepository(pool), nil)
	procurementService := procurement.NewService(procurement.NewRepository(pool), personnelService, refCache, nil, nil)
	pruner := retentionPruner{
		audit:   audit.NewService(audit.NewRepository(pool)),
		keys:    shared.NewIdempotencyStore(pool),
		keysTTL: cfg.IdempotencyTTL,
		logger:  logger,
	}

	totalsJob := jobs.NewTotalsRefreshJob(procurementService, logger, metrics.Jobs())
	pruneJob := jobs.NewAuditPruneJob(pruner, logger, metrics.Jobs())

	pruneTask, err := jobs.NewAuditPruneTask(cfg.AuditRetentionDays)
	if err != nil {
		logger.Error("build audit prune task", slog.Any("error", err))
		os.Exit(1)
	}

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
	})
	worker.Handle(jobs.TaskTotalsRefresh, totalsJob.Handle)
	worker.Handle(jobs.TaskAuditPrune, pruneJob.Handle)
	if err := worker.Schedule(cfg.AuditPruneCron, pruneTask); err != nil {
		logger.Error("schedule audit prune", slog.String("spec", cfg.AuditPruneCron), slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
