package repositories

import (
	"context"

	"github.com/eproc-portal/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `id, name, registration_no, email, status, registry_verified, rejection_reason, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.RegistrationNo, &c.Email, &c.Status, &c.RegistryVerified, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) Create(ctx context.Context, c *models.Company) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, registration_no, email, status, registry_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.Name, c.RegistrationNo, c.Email, c.Status, c.RegistryVerified).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *CompanyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE companies SET status = $1, rejection_reason = $2, updated_at = now() WHERE id = $3
	`, status, reason, id)
	return err
}

type CompanyFilter struct {
	Status *string
	Limit  int
	Offset int
}

func (r *CompanyRepo) List(ctx context.Context, f CompanyFilter) ([]models.Company, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+companyColumns+` FROM companies
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}
