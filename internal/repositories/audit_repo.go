package repositories

import (
	"context"
	"encoding/json"

	"github.com/eproc-portal/backend/internal/audit"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo is the durable sink for the hash-chained audit log. The audit_log
// table is append-only: entries are inserted exactly once, in chain order, and
// never updated or deleted.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Persist stores one finished entry without modification.
func (r *AuditRepo) Persist(ctx context.Context, e audit.Entry) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	oldValues, err := json.Marshal(e.OldValues)
	if err != nil {
		return err
	}
	newValues, err := json.Marshal(e.NewValues)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_log (
			id, ts, user_id, user_email, user_role, session_id,
			ip_address, user_agent, metadata,
			action, resource, resource_id, old_values, new_values,
			severity, status, error_message, geolocation,
			previous_hash, hash, signature
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`, e.ID, e.Timestamp, e.UserID, e.UserEmail, e.UserRole, e.SessionID,
		e.IPAddress, e.UserAgent, meta,
		string(e.Action), e.Resource, e.ResourceID, oldValues, newValues,
		string(e.Severity), string(e.Status), e.ErrorMessage, e.Geolocation,
		e.PreviousHash, e.Hash, e.Signature)
	return err
}
