package handlers

import (
	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/auth"
	"github.com/eproc-portal/backend/internal/config"
	"github.com/eproc-portal/backend/internal/http/dto"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/rbac"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo *repositories.UserRepo
	auditor  *audit.Manager
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, auditor *audit.Manager, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, auditor: auditor, cfg: cfg, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email, password and full_name are required"})
	}

	role := req.Role
	if role == "" {
		role = rbac.RoleBidder
	}
	// Elevated roles are provisioned out of band, never self-assigned.
	if role != rbac.RoleBidder {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "only bidder accounts can self-register"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
	}
	if err := h.userRepo.Create(c.Context(), user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "could not create user"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	client := middleware.ClientContext(c)

	user, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.auditLogin(c, req.Email, user, client, audit.StatusFailure, "invalid credentials")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	}
	if user.Locked {
		h.auditLogin(c, req.Email, user, client, audit.StatusBlocked, "account locked")
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "account locked"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Email, user.Role, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("jwt generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	_ = h.userRepo.UpdateLastActive(c.Context(), user.ID)
	h.auditLogin(c, req.Email, user, client, audit.StatusSuccess, "")

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if err := h.userRepo.UpdatePassword(c.Context(), userID, hash); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	actor := middleware.GetActor(c)
	rec := actor.NewRecord(audit.ActionPasswordChanged, "user")
	rec.ResourceID = userID.String()
	if _, err := h.auditor.Log(c.Context(), rec); err != nil {
		h.log.Error("audit log failed", zap.Error(err))
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

// auditLogin records every login attempt, failed ones included. Failed
// attempts carry the claimed email so brute-force streaks are attributable.
func (h *AuthHandler) auditLogin(c *fiber.Ctx, email string, user *models.User, client audit.ClientContext, status audit.Status, errMsg string) {
	rec := audit.Record{
		Action:       audit.ActionUserLogin,
		Resource:     "auth",
		UserEmail:    email,
		Status:       status,
		ErrorMessage: errMsg,
		Client:       client,
	}
	if user != nil {
		rec.UserID = user.ID.String()
		rec.UserRole = user.Role
	} else {
		rec.UserID = email
	}
	if _, err := h.auditor.Log(c.Context(), rec); err != nil {
		h.log.Error("audit log failed", zap.Error(err))
	}
}
