package http

import (
	"time"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/config"
	"github.com/eproc-portal/backend/internal/http/handlers"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/eproc-portal/backend/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	auditor *audit.Manager,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	companyHandler *handlers.CompanyHandler,
	tenderHandler *handlers.TenderHandler,
	bidHandler *handlers.BidHandler,
	auditHandler *handlers.AuditHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/password", authHandler.ChangePassword)
	protected.Post("/users/:id/lock",
		middleware.RequirePermission(rbac.PermLockAccount, auditor), userHandler.Lock)
	protected.Post("/users/:id/unlock",
		middleware.RequirePermission(rbac.PermLockAccount, auditor), userHandler.Unlock)

	// Companies
	protected.Post("/companies", companyHandler.Register)
	protected.Get("/companies", companyHandler.List)
	protected.Get("/companies/:id", companyHandler.Get)
	protected.Post("/companies/:id/approve",
		middleware.RequirePermission(rbac.PermApproveCompany, auditor), companyHandler.Approve)
	protected.Post("/companies/:id/reject",
		middleware.RequirePermission(rbac.PermApproveCompany, auditor), companyHandler.Reject)
	protected.Post("/companies/:id/blacklist",
		middleware.RequirePermission(rbac.PermBlacklistCompany, auditor), companyHandler.Blacklist)

	// Tenders
	protected.Post("/tenders",
		middleware.RequirePermission(rbac.PermCreateTender, auditor), tenderHandler.Create)
	protected.Get("/tenders", tenderHandler.List)
	protected.Get("/tenders/:id", tenderHandler.Get)
	protected.Post("/tenders/:id/publish",
		middleware.RequirePermission(rbac.PermPublishTender, auditor), tenderHandler.Publish)
	protected.Post("/tenders/:id/close",
		middleware.RequirePermission(rbac.PermPublishTender, auditor), tenderHandler.Close)
	protected.Post("/tenders/:id/cancel",
		middleware.RequirePermission(rbac.PermPublishTender, auditor), tenderHandler.Cancel)
	protected.Post("/tenders/:id/award",
		middleware.RequirePermission(rbac.PermAwardTender, auditor), tenderHandler.Award)
	protected.Post("/tenders/:id/open-bids",
		middleware.RequirePermission(rbac.PermEvaluateBid, auditor), bidHandler.OpenBids)
	protected.Get("/tenders/:id/bids",
		middleware.RequirePermission(rbac.PermEvaluateBid, auditor), bidHandler.ListByTender)

	// Bids
	protected.Post("/bids",
		middleware.RequirePermission(rbac.PermSubmitBid, auditor), bidHandler.Submit)
	protected.Post("/bids/:id/withdraw",
		middleware.RequirePermission(rbac.PermWithdrawBid, auditor), bidHandler.Withdraw)
	protected.Post("/bids/:id/score",
		middleware.RequirePermission(rbac.PermEvaluateBid, auditor), bidHandler.Score)

	// Audit
	protected.Get("/audit/logs",
		middleware.RequirePermission(rbac.PermViewAudit, auditor), auditHandler.GetLogs)
	protected.Get("/audit/verify",
		middleware.RequirePermission(rbac.PermViewAudit, auditor), auditHandler.Verify)

	// WebSocket (security alert stream)
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
