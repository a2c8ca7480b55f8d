package middleware

import (
	"strings"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/auth"
	"github.com/eproc-portal/backend/internal/config"
	"github.com/eproc-portal/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxUserRole  = "user_role"
	CtxSessionID = "session_id"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxUserEmail, claims.Email)
		c.Locals(CtxUserRole, claims.Role)
		c.Locals(CtxSessionID, claims.SessionID)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxUserRole).(string)
	return role
}

// RequirePermission gates a route on the RBAC permission map. Denials are
// audited as UNAUTHORIZED_ACCESS with BLOCKED status.
func RequirePermission(permission string, auditor *audit.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetUserRole(c)
		if rbac.HasPermission(role, permission) {
			return c.Next()
		}

		actor := GetActor(c)
		rec := actor.NewRecord(audit.ActionUnauthorizedAccess, "http")
		rec.Status = audit.StatusBlocked
		rec.ErrorMessage = "missing permission " + permission
		rec.Extra = map[string]string{"path": c.Path(), "method": c.Method()}
		_, _ = auditor.Log(c.Context(), rec)

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
	}
}

// GetActor assembles the audited identity plus request context for the
// current request.
func GetActor(c *fiber.Ctx) audit.Actor {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	email, _ := c.Locals(CtxUserEmail).(string)
	role, _ := c.Locals(CtxUserRole).(string)
	sessionID, _ := c.Locals(CtxSessionID).(string)
	reqID, _ := c.Locals(CtxRequestID).(string)

	return audit.Actor{
		UserID:    id.String(),
		Email:     email,
		Role:      role,
		SessionID: sessionID,
		Client: audit.ClientContext{
			IPAddress: c.IP(),
			UserAgent: c.Get("User-Agent"),
			RequestID: reqID,
			Referrer:  c.Get("Referer"),
			Language:  c.Get("Accept-Language"),
		},
	}
}

// ClientContext extracts only the request environment, for unauthenticated
// routes such as login.
func ClientContext(c *fiber.Ctx) audit.ClientContext {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return audit.ClientContext{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		RequestID: reqID,
		Referrer:  c.Get("Referer"),
		Language:  c.Get("Accept-Language"),
	}
}
