package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/eproc-portal/backend/internal/models"
	"github.com/eproc-portal/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BidService struct {
	bidRepo     *repositories.BidRepo
	tenderRepo  *repositories.TenderRepo
	companyRepo *repositories.CompanyRepo
	auditor     *audit.Manager
	log         *zap.Logger
}

func NewBidService(
	bidRepo *repositories.BidRepo,
	tenderRepo *repositories.TenderRepo,
	companyRepo *repositories.CompanyRepo,
	auditor *audit.Manager,
	log *zap.Logger,
) *BidService {
	return &BidService{
		bidRepo:     bidRepo,
		tenderRepo:  tenderRepo,
		companyRepo: companyRepo,
		auditor:     auditor,
		log:         log,
	}
}

// Submit accepts a bid on a published tender from an approved company, one
// active bid per company per tender.
func (s *BidService) Submit(ctx context.Context, actor audit.Actor, b *models.Bid) error {
	tender, err := s.tenderRepo.GetByID(ctx, b.TenderID)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if tender.Status != models.TenderStatusPublished {
		return fmt.Errorf("tender is not open for bids")
	}
	if tender.SubmissionDeadline != nil && time.Now().After(*tender.SubmissionDeadline) {
		return fmt.Errorf("submission deadline has passed")
	}

	company, err := s.companyRepo.GetByID(ctx, b.CompanyID)
	if err != nil {
		return fmt.Errorf("company not found")
	}
	if company.Status != models.CompanyStatusApproved {
		return fmt.Errorf("company is not approved to bid")
	}

	if existing, err := s.bidRepo.GetByTenderAndCompany(ctx, b.TenderID, b.CompanyID); err == nil && existing != nil {
		return fmt.Errorf("company already has an active bid on this tender")
	}

	b.Status = models.BidStatusSubmitted
	if err := s.bidRepo.Create(ctx, b); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionBidSubmitted, "bid")
	rec.ResourceID = b.ID.String()
	rec.NewValues = map[string]string{
		"tender_id":  b.TenderID.String(),
		"company_id": b.CompanyID.String(),
		"amount":     b.Amount,
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

func (s *BidService) Withdraw(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	bid, err := s.bidRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("bid not found")
	}
	if !models.IsValidBidTransition(bid.Status, models.BidStatusWithdrawn) {
		return fmt.Errorf("cannot withdraw bid in status %s", bid.Status)
	}

	if err := s.bidRepo.UpdateStatus(ctx, id, models.BidStatusWithdrawn); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionBidWithdrawn, "bid")
	rec.ResourceID = id.String()
	rec.OldValues = map[string]string{"status": bid.Status}
	rec.NewValues = map[string]string{"status": models.BidStatusWithdrawn}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

// Open moves every submitted bid on a closed tender to under_review and moves
// the tender into evaluation.
func (s *BidService) Open(ctx context.Context, actor audit.Actor, tenderID uuid.UUID) error {
	tender, err := s.tenderRepo.GetByID(ctx, tenderID)
	if err != nil {
		return fmt.Errorf("tender not found")
	}
	if !models.IsValidTenderTransition(tender.Status, models.TenderStatusUnderEvaluation) {
		return fmt.Errorf("cannot open bids for tender in status %s", tender.Status)
	}

	bids, err := s.bidRepo.ListByTender(ctx, tenderID)
	if err != nil {
		return err
	}

	for _, b := range bids {
		if b.Status != models.BidStatusSubmitted {
			continue
		}
		if err := s.bidRepo.UpdateStatus(ctx, b.ID, models.BidStatusUnderReview); err != nil {
			return err
		}
	}

	if err := s.tenderRepo.UpdateStatus(ctx, tenderID, models.TenderStatusUnderEvaluation); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionBidOpened, "tender")
	rec.ResourceID = tenderID.String()
	rec.NewValues = map[string]string{"bids_opened": strconv.Itoa(len(bids))}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

// Score records an evaluator's technical and financial scores for a bid.
func (s *BidService) Score(ctx context.Context, actor audit.Actor, id uuid.UUID, technical, financial int) error {
	if technical < 0 || technical > 100 || financial < 0 || financial > 100 {
		return fmt.Errorf("scores must be within 0..100")
	}

	bid, err := s.bidRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("bid not found")
	}
	if bid.Status != models.BidStatusUnderReview {
		return fmt.Errorf("bid is not under review")
	}

	if err := s.bidRepo.SetScores(ctx, id, technical, financial); err != nil {
		return err
	}

	rec := actor.NewRecord(audit.ActionEvaluationScored, "bid")
	rec.ResourceID = id.String()
	rec.NewValues = map[string]string{
		"technical_score": strconv.Itoa(technical),
		"financial_score": strconv.Itoa(financial),
	}
	if _, err := s.auditor.Log(ctx, rec); err != nil {
		s.log.Error("audit log failed", zap.Error(err))
	}

	return nil
}

func (s *BidService) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return s.bidRepo.GetByID(ctx, id)
}

func (s *BidService) ListByTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	return s.bidRepo.ListByTender(ctx, tenderID)
}
