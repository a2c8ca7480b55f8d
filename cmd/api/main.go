package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/config"
	"github.com/eproc-portal/backend/internal/db"
	"github.com/eproc-portal/backend/internal/events"
	apphttp "github.com/eproc-portal/backend/internal/http"
	"github.com/eproc-portal/backend/internal/http/handlers"
	"github.com/eproc-portal/backend/internal/registry"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/eproc-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	tenderRepo := repositories.NewTenderRepo(pool)
	bidRepo := repositories.NewBidRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Audit core: the durable sink is the append-only audit_log table.
	auditor := audit.New(audit.Config{
		SigningSecret:      cfg.AuditSigningSecret,
		MaxEntries:         cfg.AuditMaxEntries,
		RiskAlertThreshold: cfg.AuditRiskAlertThreshold,
		Risk: audit.RiskPolicy{
			HighRiskWeight:   cfg.AuditHighRiskWeight,
			MediumRiskWeight: cfg.AuditMediumRiskWeight,
			ElevatedRole:     cfg.AuditElevatedRoleWeight,
			OffHours:         cfg.AuditOffHoursWeight,
			DayStartHour:     6,
			DayEndHour:       22,
		},
		Anomaly: audit.AnomalyPolicy{
			RecentWindow:         cfg.AuditRecentWindow,
			FailedLoginThreshold: cfg.AuditFailedLoginThreshold,
			BurstThreshold:       cfg.AuditBurstThreshold,
			BurstWindow:          cfg.AuditBurstWindow,
		},
		SinkBuffer:      cfg.AuditSinkBuffer,
		SinkMaxAttempts: cfg.AuditSinkMaxAttempts,
		SinkBackoff:     cfg.AuditSinkBackoff,
	}, auditRepo, publisher, log)
	defer auditor.Close()

	// Services
	registryParser := registry.NewParser(cfg.RegistryBaseURL, cfg.RegistryFetchTimeoutMS, cfg.RegistryMaxRetries, log)
	companyService := services.NewCompanyService(companyRepo, auditor, registryParser, publisher, log)
	tenderService := services.NewTenderService(tenderRepo, bidRepo, auditor, publisher, log)
	bidService := services.NewBidService(bidRepo, tenderRepo, companyRepo, auditor, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, auditor, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, auditor, log)
	companyHandler := handlers.NewCompanyHandler(companyService, log)
	tenderHandler := handlers.NewTenderHandler(tenderService, log)
	bidHandler := handlers.NewBidHandler(bidService, log)
	auditHandler := handlers.NewAuditHandler(auditor, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, auditor, authHandler, userHandler, companyHandler, tenderHandler, bidHandler, auditHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
