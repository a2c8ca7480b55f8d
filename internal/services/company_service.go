package services

import (
	"context"
	"fmt"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/events"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/registry"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyService struct {
	companyRepo *repositories.CompanyRepo
	auditor     *audit.Manager
	registry    *registry.Parser
	publisher   events.Publisher
	log         *zap.Logger
}

func NewCompanyService(
	companyRepo *repositories.CompanyRepo,
	auditor *audit.Manager,
	reg *registry.Parser,
	publisher events.Publisher,
	log *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		auditor:     auditor,
		registry:    reg,
		publisher:   publisher,
		log:         log,
	}
}

// Register creates a pending company. Registry lookup is best-effort: a
// matching active record marks the company verified, failures only log.
func (s *CompanyService) Register(ctx context.Context, actor audit.Actor, c *models.Company) error {
	if c.Name == "" || c.RegistrationNo == "" || c.Email == "" {
		return fmt.Errorf("name, registration_no and email are required")
	}
	c.Status = models.CompanyStatusPending

	if s.registry != nil {
		rec, err := s.registry.Lookup(ctx, c.RegistrationNo)
		if err != nil {
			s.log.Warn("registry lookup failed",
				zap.String("registration_no", c.RegistrationNo),
				zap.Error(err),
			)
		} else if rec.IsActive() {
			c.RegistryVerified = true
		}
	}

	if err := s.companyRepo.Create(ctx, c); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionCompanyRegistered, "company")
	rec.ResourceID = c.ID.String()
	rec.NewValues = map[string]string{
		"name":              c.Name,
		"registration_no":   c.RegistrationNo,
		"status":            c.Status,
		"registry_verified": fmt.Sprintf("%t", c.RegistryVerified),
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context, f repositories.CompanyFilter) ([]models.Company, error) {
	return s.companyRepo.List(ctx, f)
}

func (s *CompanyService) Approve(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, models.CompanyStatusApproved, audit.ActionCompanyApproved, nil)
}

func (s *CompanyService) Reject(ctx context.Context, actor audit.Actor, id uuid.UUID, reason string) error {
	return s.transition(ctx, actor, id, models.CompanyStatusRejected, audit.ActionCompanyRejected, &reason)
}

func (s *CompanyService) Blacklist(ctx context.Context, actor audit.Actor, id uuid.UUID, reason string) error {
	return s.transition(ctx, actor, id, models.CompanyStatusBlacklisted, audit.ActionCompanyBlacklisted, &reason)
}

func (s *CompanyService) transition(ctx context.Context, actor audit.Actor, id uuid.UUID, to string, action audit.Action, reason *string) error {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("company not found")
	}
	if !models.IsValidCompanyTransition(company.Status, to) {
		return fmt.Errorf("cannot move company from %s to %s", company.Status, to)
	}

	if err := s.companyRepo.UpdateStatus(ctx, id, to, reason); err != nil {
		return err
	}

	rec := actor.NewRecord(action, "company")
	rec.ResourceID = id.String()
	rec.OldValues = map[string]string{"status": company.Status}
	rec.NewValues = map[string]string{"status": to}
	if reason != nil {
		rec.NewValues["reason"] = *reason
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamTender, events.Event{
			Type: events.EventCompanyStatusChanged,
			Payload: map[string]any{
				"company_id": id.String(),
				"status":     to,
			},
		})
	}

	return nil
}
