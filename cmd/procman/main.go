package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/app"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/audit"
	audithttp "github.com/XristosAndreopo/invoice-procurement-management/internal/audit/http"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/auth"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/feedback"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/incometax"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/options"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/personnel"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/serviceunits"
	mdshared "github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/suppliers"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/withholding"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/observability"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/cache"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/db"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/procurement"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/refdata"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/users"
	"github.com/XristosAndreopo/invoice-procurement-management/jobs"
	"github.com/XristosAndreopo/invoice-procurement-management/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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
	sessionManager := shared.NewSessionManager(redisClient, "procman_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	refCache := refdata.NewCache(redisClient, refdata.NewPGLoader(dbpool), cfg.RefdataCacheTTL)
	if err := refCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("refdata invalidation listener", slog.Any("error", err))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	jobClient := jobs.NewClient(redisOpts, logger)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	rbacMiddleware := rbac.Middleware{
		Loader:      rbac.NewService(dbpool),
		Logger:      logger,
		Denials:     metrics,
		SelfService: app.SelfServicePaths,
	}
	hooks := mdshared.ReferenceHooks{Cache: refCache, Queue: jobClient, Logger: logger}

	personnelService := personnel.NewService(personnel.NewRepository(dbpool), auditLogger)
	serviceUnitService := serviceunits.NewService(serviceunits.NewRepository(dbpool), personnelService, auditLogger)
	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool), auditLogger)
	optionService := options.NewService(options.NewRepository(dbpool), auditLogger)
	withholdingService := withholding.NewService(withholding.NewRepository(dbpool), auditLogger, hooks)
	incomeTaxService := incometax.NewService(incometax.NewRepository(dbpool), auditLogger, hooks)

	reportClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	procurementService := procurement.NewService(procurement.NewRepository(dbpool), personnelService, refCache, reportClient, metrics)

	authService := auth.NewService(auth.NewRepository(dbpool))
	usersService := users.NewService(users.NewRepository(dbpool), personnelService, auditLogger, cfg.BcryptCost)
	feedbackService := feedback.NewService(feedback.NewRepository(dbpool), auditLogger)
	auditService := audit.NewService(audit.NewRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		RBACMiddleware:     rbacMiddleware,
		Idempotency:        idempotencyStore,
		Metrics:            metrics,
		AuthHandler:        auth.NewHandler(logger, authService, sessionManager, csrfManager),
		ProcurementHandler: procurement.NewHandler(logger, procurementService, rbacMiddleware),
		ServiceUnitHandler: serviceunits.NewHandler(logger, serviceUnitService, rbacMiddleware),
		PersonnelHandler:   personnel.NewHandler(logger, personnelService, rbacMiddleware),
		SupplierHandler:    suppliers.NewHandler(logger, supplierService, rbacMiddleware),
		OptionHandler:      options.NewHandler(logger, optionService, rbacMiddleware),
		WithholdingHandler: withholding.NewHandler(logger, withholdingService, rbacMiddleware),
		IncomeTaxHandler:   incometax.NewHandler(logger, incomeTaxService, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		FeedbackHandler:    feedback.NewHandler(logger, feedbackService, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, auditService, rbacMiddleware),
		ReportHandler:      report.NewHandler(reportClient, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  cfg.AppIdleTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
