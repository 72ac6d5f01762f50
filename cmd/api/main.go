package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-workflow/internal/api/http"
	"github.com/spec-kit/ticket-workflow/internal/api/http/handlers"
	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/persistence"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	"github.com/spec-kit/ticket-workflow/internal/service"
	"github.com/spec-kit/ticket-workflow/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisConn *persistence.Redis
	if cfg.Notification.RedisMirrorKey != "" {
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
	}

	var (
		ticketRepo    repository.TicketRepository
		approvalRepo  repository.ApprovalRepository
		analyticsRepo repository.AnalyticsRecordRepository
	)
	if pg.Configured() {
		pool := pg.PoolHandle()
		ticketRepo = repository.NewPostgresTicketRepository(pool)
		approvalRepo = repository.NewPostgresApprovalRepository(pool)
		analyticsRepo = repository.NewPostgresAnalyticsRepository(pool)
	} else {
		logger.Warn("running with in-memory stores; state is lost on restart")
		ticketRepo = repository.NewMemoryTicketRepository()
		approvalRepo = repository.NewMemoryApprovalRepository()
		analyticsRepo = repository.NewMemoryAnalyticsRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	locks := service.NewTicketLocks()
	metrics := observability.NewMetrics()
	clock := service.SystemClock()

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clock,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo: ticketRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Logger:     logger,
		Clock:      clock,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		ApprovalRepo: approvalRepo,
		TicketRepo:   ticketRepo,
		Locks:        locks,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
		Clock:        clock,
	})
	alertRegistry := service.NewAlertRegistry(service.AlertRegistryDependencies{
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clock,
	}, cfg.Alerts)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	queryService := service.NewTicketQueryService(ticketRepo)

	notificationDeps := service.NotificationDependencies{
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clock,
	}
	if redisConn != nil {
		notificationDeps.Redis = redisConn.Client
	}
	notificationService := service.NewNotificationService(notificationDeps, cfg.Notification)

	watcher := service.NewSLAWatcher(service.SLAWatcherDependencies{
		TicketRepo: ticketRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Clock:      clock,
	}, cfg.SLA)
	background := worker.Start(notificationService, watcher, logger)
	defer background.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Intake:        handlers.NewIntakeHandler(intakeService),
		Tickets:       handlers.NewTicketsHandler(queryService, triageService),
		Approvals:     handlers.NewApprovalsHandler(approvalService),
		Registry:      handlers.NewRegistryHandler(alertRegistry),
		Analytics:     handlers.NewAnalyticsHandler(analyticsService),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Metrics:       metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
