package handlers

import (
	"github.com/eproc-portal/backend/internal/http/dto"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BidHandler struct {
	bidService *services.BidService
	log        *zap.Logger
}

func NewBidHandler(bidService *services.BidService, log *zap.Logger) *BidHandler {
	return &BidHandler{bidService: bidService, log: log}
}

func (h *BidHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	tenderID, err := uuid.Parse(req.TenderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid company id"})
	}
	if req.Amount == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "amount is required"})
	}

	bid := &models.Bid{
		TenderID:    tenderID,
		CompanyID:   companyID,
		SubmittedBy: middleware.GetUserID(c),
		Amount:      req.Amount,
		Proposal:    req.Proposal,
	}

	actor := middleware.GetActor(c)
	if err := h.bidService.Submit(c.Context(), actor, bid); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: bid})
}

func (h *BidHandler) Withdraw(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid bid id"})
	}

	actor := middleware.GetActor(c)
	if err := h.bidService.Withdraw(c.Context(), actor, id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// OpenBids moves a closed tender into evaluation, opening its bids.
func (h *BidHandler) OpenBids(c *fiber.Ctx) error {
	tenderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	actor := middleware.GetActor(c)
	if err := h.bidService.Open(c.Context(), actor, tenderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *BidHandler) ListByTender(c *fiber.Ctx) error {
	tenderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tender id"})
	}

	bids, err := h.bidService.ListByTender(c.Context(), tenderID)
	if err != nil {
		h.log.Error("list bids failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: bids})
}

func (h *BidHandler) Score(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid bid id"})
	}

	var req dto.ScoreBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actor := middleware.GetActor(c)
	if err := h.bidService.Score(c.Context(), actor, id, req.TechnicalScore, req.FinancialScore); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
