package postgres

import (
	"context"

	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// LeadRepo implements LeadRepository using PostgreSQL.
type LeadRepo struct{ db *DB }

// NewLeadRepo constructs a lead repository.
func NewLeadRepo(db *DB) *LeadRepo { return &LeadRepo{db: db} }

// Create inserts an unconfirmed lead with its sealed contact blob.
func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	const q = `
INSERT INTO leads (id, resource_id, contact_enc)
VALUES ($1, $2, $3)
RETURNING created_at`
	return rowErr(r.db.Pool.QueryRow(ctx, q, l.ID, l.ResourceID, l.ContactEnc).Scan(&l.CreatedAt))
}

// MarkConfirmed flips confirmed to true. confirmed_at keeps its first value,
// so repeating the call only rewrites the same state.
func (r *LeadRepo) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE leads
SET confirmed = true, confirmed_at = COALESCE(confirmed_at, now())
WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id))
}

const leadCols = `id, resource_id, contact_enc, confirmed, confirmed_at, created_at`

// scanLead reads a lead row. resource_id is NULL once the resource is deleted
// and comes back as uuid.Nil.
func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	var (
		l   model.Lead
		rid uuid.NullUUID
	)
	if err := row.Scan(&l.ID, &rid, &l.ContactEnc, &l.Confirmed, &l.ConfirmedAt, &l.CreatedAt); err != nil {
		return nil, err
	}
	if rid.Valid {
		l.ResourceID = rid.UUID
	}
	return &l, nil
}

// GetByID selects a lead by id.
func (r *LeadRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	const q = `SELECT ` + leadCols + ` FROM leads WHERE id=$1`
	l, err := scanLead(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, rowErr(err)
	}
	return l, nil
}

// ListByResource returns all leads of a resource, newest first.
func (r *LeadRepo) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Lead, error) {
	const q = `
SELECT ` + leadCols + `
FROM leads
WHERE resource_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
