package handlers

import (
	"strconv"
	"time"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/http/dto"
	"github.com/eproc-portal/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditor *audit.Manager
	log     *zap.Logger
}

func NewAuditHandler(auditor *audit.Manager, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditor: auditor, log: log}
}

// GetLogs returns filtered entries. Reading the audit log is itself an
// audited, CRITICAL-severity event.
func (h *AuditHandler) GetLogs(c *fiber.Ctx) error {
	filter := audit.Filter{
		UserID:   c.Query("user_id"),
		Action:   audit.Action(c.Query("action")),
		Severity: audit.Severity(c.Query("severity")),
	}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid start time"})
		}
		filter.Start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid end time"})
		}
		filter.End = t
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	entries := h.auditor.Entries(filter)

	actor := middleware.GetActor(c)
	rec := actor.NewRecord(audit.ActionAuditLogAccessed, "audit")
	rec.Extra = map[string]string{"results": strconv.Itoa(len(entries))}
	if _, err := h.auditor.Log(c.Context(), rec); err != nil {
		h.log.Error("audit log failed", zap.Error(err))
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

// Verify walks the retained chain and reports the first mismatch, if any.
func (h *AuditHandler) Verify(c *fiber.Ctx) error {
	valid, offending := h.auditor.VerifyIntegrity()
	return c.JSON(dto.IntegrityResponse{
		Valid:           valid,
		OffendingEntry:  offending,
		EntriesVerified: h.auditor.Len(),
	})
}
