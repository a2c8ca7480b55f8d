package services

import (
	"context"
	"fmt"
	"time"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/events"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TenderService struct {
	tenderRepo *repositories.TenderRepo
	bidRepo    *repositories.BidRepo
	auditor    *audit.Manager
	publisher  events.Publisher
	log        *zap.Logger
}

func NewTenderService(
	tenderRepo *repositories.TenderRepo,
	bidRepo *repositories.BidRepo,
	auditor *audit.Manager,
	publisher events.Publisher,
	log *zap.Logger,
) *TenderService {
	return &TenderService{
		tenderRepo: tenderRepo,
		bidRepo:    bidRepo,
		auditor:    auditor,
		publisher:  publisher,
		log:        log,
	}
}

func (s *TenderService) Create(ctx context.Context, actor audit.Actor, t *models.Tender) error {
	if t.Title == "" || t.MDAName == "" {
		return fmt.Errorf("title and mda_name are required")
	}
	creator, err := uuid.Parse(actor.UserID)
	if err != nil {
		return fmt.Errorf("invalid actor id")
	}
	t.Status = models.TenderStatusDraft
	t.CreatedBy = creator

	if err := s.tenderRepo.Create(ctx, t); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionTenderCreated, "tender")
	rec.ResourceID = t.ID.String()
	rec.NewValues = map[string]string{
		"title":    t.Title,
		"mda_name": t.MDAName,
		"status":   t.Status,
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

func (s *TenderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.tenderRepo.GetByID(ctx, id)
}

func (s *TenderService) List(ctx context.Context, f repositories.TenderFilter) ([]models.Tender, error) {
	return s.tenderRepo.List(ctx, f)
}

func (s *TenderService) Publish(ctx context.Context, actor audit.Actor, id uuid.UUID, deadline time.Time) error {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if !models.IsValidTenderTransition(tender.Status, models.TenderStatusPublished) {
		return fmt.Errorf("cannot publish tender in status %s", tender.Status)
	}
	if !deadline.After(time.Now()) {
		return fmt.Errorf("submission deadline must be in the future")
	}

	if err := s.tenderRepo.SetPublished(ctx, id, deadline); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionTenderPublished, "tender")
	rec.ResourceID = id.String()
	rec.OldValues = map[string]string{"status": tender.Status}
	rec.NewValues = map[string]string{
		"status":              models.TenderStatusPublished,
		"submission_deadline": deadline.UTC().Format(time.RFC3339),
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	s.publishStatus(ctx, id, models.TenderStatusPublished)
	return nil
}

func (s *TenderService) Close(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if !models.IsValidTenderTransition(tender.Status, models.TenderStatusClosed) {
		return fmt.Errorf("cannot close tender in status %s", tender.Status)
	}
	return s.updateStatus(ctx, actor, tender, models.TenderStatusClosed, audit.ActionTenderClosed)
}

func (s *TenderService) Cancel(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if !models.IsValidTenderTransition(tender.Status, models.TenderStatusCancelled) {
		return fmt.Errorf("cannot cancel tender in status %s", tender.Status)
	}
	return s.updateStatus(ctx, actor, tender, models.TenderStatusCancelled, audit.ActionTenderCancelled)
}

// Award moves an under-evaluation tender to awarded with the winning company.
func (s *TenderService) Award(ctx context.Context, actor audit.Actor, id, companyID uuid.UUID) error {
	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if !models.IsValidTenderTransition(tender.Status, models.TenderStatusAwarded) {
		return fmt.Errorf("cannot award tender in status %s", tender.Status)
	}

	if err := s.tenderRepo.SetAwarded(ctx, id, companyID); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionTenderAwarded, "tender")
	rec.ResourceID = id.String()
	rec.OldValues = map[string]string{"status": tender.Status}
	rec.NewValues = map[string]string{
		"status":             models.TenderStatusAwarded,
		"awarded_company_id": companyID.String(),
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	s.publishStatus(ctx, id, models.TenderStatusAwarded)
	return nil
}

// CloseExpired auto-closes published tenders past their submission deadline.
// Called by the worker on a ticker; entries carry the system identity.
func (s *TenderService) CloseExpired(ctx context.Context) (int, error) {
	tenders, err := s.tenderRepo.GetExpiredPublished(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, t := range tenders {
		tender := t
		if err := s.updateStatus(ctx, audit.SystemActor(), &tender, models.TenderStatusClosed, audit.ActionTenderClosed); err != nil {
			s.log.Error("failed to auto-close tender",
				zap.String("tender_id", tender.ID.String()),
				zap.Error(err),
			)
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *TenderService) updateStatus(ctx context.Context, actor audit.Actor, tender *models.Tender, to string, action audit.Action) error {
	if err := s.tenderRepo.UpdateStatus(ctx, tender.ID, to); err != nil {
		return err
	}

	rec := actor.NewRecord(action, "tender")
	rec.ResourceID = tender.ID.String()
	rec.OldValues = map[string]string{"status": tender.Status}
	rec.NewValues = map[string]string{"status": to}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	s.publishStatus(ctx, tender.ID, to)
	return nil
}

func (s *TenderService) publishStatus(ctx context.Context, id uuid.UUID, status string) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events.StreamTender, events.Event{
		Type: events.EventTenderStatusChanged,
		Payload: map[string]any{
			"tender_id": id.String(),
			"status":    status,
		},
	})
}
