package handlers

import (
	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/http/dto"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo *repositories.UserRepo
	auditor  *audit.Manager
	log      *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, auditor *audit.Manager, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, auditor: auditor, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

// Lock blocks an account from logging in, the admin response to a fraud
// alert on that user.
func (h *UserHandler) Lock(c *fiber.Ctx) error {
	return h.setLocked(c, true, audit.ActionAccountLocked)
}

func (h *UserHandler) Unlock(c *fiber.Ctx) error {
	return h.setLocked(c, false, audit.ActionAccountUnlocked)
}

func (h *UserHandler) setLocked(c *fiber.Ctx, locked bool, action audit.Action) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	user, err := h.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	if user.Locked == locked {
		return c.JSON(dto.SuccessResponse{OK: true})
	}

	if err := h.userRepo.SetLocked(c.Context(), id, locked); err != nil {
		h.log.Error("set locked failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	actor := middleware.GetActor(c)
	rec := actor.NewRecord(action, "user")
	rec.ResourceID = id.String()
	rec.OldValues = map[string]string{"locked": boolString(user.Locked)}
	rec.NewValues = map[string]string{"locked": boolString(locked)}
	if _, err := h.auditor.Log(c.Context(), rec); err != nil {
		h.log.Error("audit log failed", zap.Error(err))
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
