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

type TenderHandler struct {
	tenderService *services.TenderService
	log           *zap.Logger
}

func NewTenderHandler(tenderService *services.TenderService, log *zap.Logger) *TenderHandler {
	return &TenderHandler{tenderService: tenderService, log: log}
}

func (h *TenderHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	tender := &models.Tender{
		MDAName:            req.MDAName,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Budget:             req.Budget,
		SubmissionDeadline: req.SubmissionDeadline,
	}

	actor := middleware.GetActor(c)
	if err := h.tenderService.Create(c.Context(), actor, tender); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: tender})
}

func (h *TenderHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	tender, err := h.tenderService.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "tender not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tender})
}

func (h *TenderHandler) List(c *fiber.Ctx) error {
	filter := repositories.TenderFilter{Limit: 20}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
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

	tenders, err := h.tenderService.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list tenders failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tenders})
}

func (h *TenderHandler) Publish(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	var req dto.PublishTenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actor := middleware.GetActor(c)
	if err := h.tenderService.Publish(c.Context(), actor, id, req.SubmissionDeadline); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TenderHandler) Close(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	actor := middleware.GetActor(c)
	if err := h.tenderService.Close(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TenderHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	actor := middleware.GetActor(c)
	if err := h.tenderService.Cancel(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TenderHandler) Award(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	var req dto.AwardTenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}

	actor := middleware.GetActor(c)
	if err := h.tenderService.Award(c.Context(), actor, id, companyID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
