package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/config"
	"github.com/eproc-portal/backend/internal/db"
	"github.com/eproc-portal/backend/internal/events"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/eproc-portal/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	tenderRepo := repositories.NewTenderRepo(pool)
	bidRepo := repositories.NewBidRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// The worker runs its own chain; its entries land in the same durable
	// audit_log table under the system identity.
	publisher := events.NewRedisPublisher(rdb, log)
	auditor := audit.New(audit.Config{
		SigningSecret:      cfg.AuditSigningSecret,
		MaxEntries:         cfg.AuditMaxEntries,
		RiskAlertThreshold: cfg.AuditRiskAlertThreshold,
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

	tenderService := services.NewTenderService(tenderRepo, bidRepo, auditor, publisher, log)

	log.Info("worker started")

	sweepTicker := time.NewTicker(cfg.TenderDeadlineSweepInterval)
	defer sweepTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			runDeadlineSweep(ctx, tenderService, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runDeadlineSweep auto-closes published tenders whose submission deadline
// has passed.
func runDeadlineSweep(ctx context.Context, tenderService *services.TenderService, log *zap.Logger) {
	closed, err := tenderService.CloseExpired(ctx)
	if err != nil {
		log.Error("deadline sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		log.Info("auto-closed expired tenders", zap.Int("count", closed))
	}
}
