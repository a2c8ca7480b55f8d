package handlers

import (
	"strconv"

	"github.com/eproc-portal/backend/internal/http/dto"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/eproc-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *services.CompanyService
	log            *zap.Logger
}

func NewCompanyHandler(companyService *services.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, log: log}
}

func (h *CompanyHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	company := &models.Company{
		Name:           req.Name,
		RegistrationNo: req.RegistrationNo,
		Email:          req.Email,
	}

	actor := middleware.GetActor(c)
	if err := h.companyService.Register(c.Context(), actor, company); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: company})
}

func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}

	company, err := h.companyService.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "company not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: company})
}

func (h *CompanyHandler) List(c *fiber.Ctx) error {
	filter := repositories.CompanyFilter{Limit: 20}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	companies, err := h.companyService.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list companies failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: companies})
}

func (h *CompanyHandler) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}

	actor := middleware.GetActor(c)
	if err := h.companyService.Approve(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *CompanyHandler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}

	var req dto.RejectCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actor := middleware.GetActor(c)
	if err := h.companyService.Reject(c.Context(), actor, id, req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *CompanyHandler) Blacklist(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}

	var req dto.BlacklistCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "reason is required"})
	}

	actor := middleware.GetActor(c)
	if err := h.companyService.Blacklist(c.Context(), actor, id, req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
