package repositories

import (
	"context"

	"github.com/eproc-portal/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BidRepo struct {
	pool *pgxpool.Pool
}

func NewBidRepo(pool *pgxpool.Pool) *BidRepo {
	return &BidRepo{pool: pool}
}

const bidColumns = `id, tender_id, company_id, submitted_by, amount, proposal, status, technical_score, financial_score, created_at, updated_at`

func scanBid(row interface{ Scan(...any) error }) (*models.Bid, error) {
	var b models.Bid
	err := row.Scan(&b.ID, &b.TenderID, &b.CompanyID, &b.SubmittedBy, &b.Amount, &b.Proposal,
		&b.Status, &b.TechnicalScore, &b.FinancialScore, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BidRepo) Create(ctx context.Context, b *models.Bid) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO bids (tender_id, company_id, submitted_by, amount, proposal, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, b.TenderID, b.CompanyID, b.SubmittedBy, b.Amount, b.Proposal, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BidRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return scanBid(r.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id))
}

func (r *BidRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE bids SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *BidRepo) SetScores(ctx context.Context, id uuid.UUID, technical, financial int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bids SET technical_score = $1, financial_score = $2, updated_at = now() WHERE id = $3
	`, technical, financial, id)
	return err
}

func (r *BidRepo) ListByTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bidColumns+` FROM bids WHERE tender_id = $1 ORDER BY created_at
	`, tenderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// GetByTenderAndCompany enforces one active bid per company per tender.
func (r *BidRepo) GetByTenderAndCompany(ctx context.Context, tenderID, companyID uuid.UUID) (*models.Bid, error) {
	return scanBid(r.pool.QueryRow(ctx, `
		SELECT `+bidColumns+` FROM bids
		WHERE tender_id = $1 AND company_id = $2 AND status != $3
	`, tenderID, companyID, models.BidStatusWithdrawn))
}
