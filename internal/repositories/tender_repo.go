package repositories

import (
	"context"
	"time"

	"github.com/eproc-portal/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TenderRepo struct {
	pool *pgxpool.Pool
}

func NewTenderRepo(pool *pgxpool.Pool) *TenderRepo {
	return &TenderRepo{pool: pool}
}

const tenderColumns = `id, mda_name, title, description, category, budget, status, created_by, submission_deadline, awarded_company_id, created_at, updated_at`

func scanTender(row interface{ Scan(...any) error }) (*models.Tender, error) {
	var t models.Tender
	err := row.Scan(&t.ID, &t.MDAName, &t.Title, &t.Description, &t.Category, &t.Budget, &t.Status,
		&t.CreatedBy, &t.SubmissionDeadline, &t.AwardedCompanyID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenderRepo) Create(ctx context.Context, t *models.Tender) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tenders (mda_name, title, description, category, budget, status, created_by, submission_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, t.MDAName, t.Title, t.Description, t.Category, t.Budget, t.Status, t.CreatedBy, t.SubmissionDeadline).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TenderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return scanTender(r.pool.QueryRow(ctx, `SELECT `+tenderColumns+` FROM tenders WHERE id = $1`, id))
}

func (r *TenderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE tenders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *TenderRepo) SetPublished(ctx context.Context, id uuid.UUID, deadline time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tenders SET status = $1, submission_deadline = $2, updated_at = now() WHERE id = $3
	`, models.TenderStatusPublished, deadline, id)
	return err
}

func (r *TenderRepo) SetAwarded(ctx context.Context, id, companyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tenders SET status = $1, awarded_company_id = $2, updated_at = now() WHERE id = $3
	`, models.TenderStatusAwarded, companyID, id)
	return err
}

type TenderFilter struct {
	Status   *string
	Category *string
	Limit    int
	Offset   int
}

func (r *TenderRepo) List(ctx context.Context, f TenderFilter) ([]models.Tender, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+tenderColumns+` FROM tenders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR category = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, f.Status, f.Category, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, *t)
	}
	return tenders, rows.Err()
}

// GetExpiredPublished returns published tenders whose submission deadline has
// passed. Used by the worker to auto-close them.
func (r *TenderRepo) GetExpiredPublished(ctx context.Context) ([]models.Tender, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tenderColumns+` FROM tenders
		WHERE status = $1 AND submission_deadline IS NOT NULL AND submission_deadline < now()
	`, models.TenderStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, *t)
	}
	return tenders, rows.Err()
}
