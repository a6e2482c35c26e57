package postgres

import (
	"context"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ResourceRepo implements ResourceRepository using PostgreSQL.
type ResourceRepo struct{ db *DB }

// NewResourceRepo constructs a resource repository.
func NewResourceRepo(db *DB) *ResourceRepo { return &ResourceRepo{db: db} }

const resourceCols = `id, slug, title, summary, file_url, downloads_count, published, created_at, updated_at`

func scanResource(row interface{ Scan(...any) error }) (*model.Resource, error) {
	var res model.Resource
	err := row.Scan(&res.ID, &res.Slug, &res.Title, &res.Summary, &res.FileURL,
		&res.DownloadsCount, &res.Published, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserts a resource row; the database fills counters and timestamps.
func (r *ResourceRepo) Create(ctx context.Context, res *model.Resource) error {
	const q = `
INSERT INTO resources (id, slug, title, summary, file_url, published)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING downloads_count, created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, res.ID, res.Slug, res.Title, res.Summary, res.FileURL, res.Published).
		Scan(&res.DownloadsCount, &res.CreatedAt, &res.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Update rewrites editable columns and returns the fresh row.
func (r *ResourceRepo) Update(ctx context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error) {
	const q = `
UPDATE resources
SET slug=$2, title=$3, summary=$4, file_url=$5, published=$6, updated_at=now()
WHERE id=$1
RETURNING ` + resourceCols
	res, err := scanResource(r.db.Pool.QueryRow(ctx, q, id, in.Slug, in.Title, in.Summary, in.FileURL, in.Published))
	if isUniqueViolation(err) {
		return nil, errs.ErrAlreadyExists
	}
	if err != nil {
		return nil, rowErr(err)
	}
	return res, nil
}

// SetPublished flips the published flag.
func (r *ResourceRepo) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	const q = `UPDATE resources SET published=$2, updated_at=now() WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id, published))
}

// Delete removes a resource. Its leads stay, with resource_id set to NULL
// (ON DELETE SET NULL), so outstanding download links still confirm them.
func (r *ResourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM resources WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id))
}

// GetByID selects a resource by id.
func (r *ResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	const q = `SELECT ` + resourceCols + ` FROM resources WHERE id=$1`
	res, err := scanResource(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, rowErr(err)
	}
	return res, nil
}

// GetBySlug selects a resource by slug.
func (r *ResourceRepo) GetBySlug(ctx context.Context, slug string) (*model.Resource, error) {
	const q = `SELECT ` + resourceCols + ` FROM resources WHERE slug=$1`
	res, err := scanResource(r.db.Pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, rowErr(err)
	}
	return res, nil
}

// List returns resources newest first, optionally only published ones.
func (r *ResourceRepo) List(ctx context.Context, publishedOnly bool) ([]model.Resource, error) {
	const q = `
SELECT ` + resourceCols + `
FROM resources
WHERE published OR NOT $1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// IncrementDownloads bumps the counter with a single UPDATE so concurrent
// confirmations never lose an increment.
func (r *ResourceRepo) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE resources SET downloads_count = downloads_count + 1 WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id))
}
