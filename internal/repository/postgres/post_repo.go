package postgres

import (
	"context"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PostRepo implements PostRepository using PostgreSQL.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a blog post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postCols = `id, slug, title, excerpt, body, published, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a draft post.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	const q = `
INSERT INTO posts (id, slug, title, excerpt, body)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.Slug, p.Title, p.Excerpt, p.Body).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Update rewrites the editable columns of a post.
func (r *PostRepo) Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	const q = `
UPDATE posts
SET slug=$2, title=$3, excerpt=$4, body=$5, updated_at=now()
WHERE id=$1
RETURNING ` + postCols
	p, err := scanPost(r.db.Pool.QueryRow(ctx, q, id, in.Slug, in.Title, in.Excerpt, in.Body))
	if isUniqueViolation(err) {
		return nil, errs.ErrAlreadyExists
	}
	if err != nil {
		return nil, rowErr(err)
	}
	return p, nil
}

// SetPublished toggles visibility and stamps published_at the first time.
func (r *PostRepo) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	const q = `
UPDATE posts
SET published=$2,
    published_at = CASE WHEN $2 THEN COALESCE(published_at, now()) ELSE published_at END,
    updated_at=now()
WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id, published))
}

// Delete removes a post.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM posts WHERE id=$1`
	return execOne(r.db.Pool.Exec(ctx, q, id))
}

// GetByID selects any post by id.
func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	const q = `SELECT ` + postCols + ` FROM posts WHERE id=$1`
	p, err := scanPost(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, rowErr(err)
	}
	return p, nil
}

// GetPublishedBySlug selects a published post by slug.
func (r *PostRepo) GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error) {
	const q = `SELECT ` + postCols + ` FROM posts WHERE slug=$1 AND published`
	p, err := scanPost(r.db.Pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, rowErr(err)
	}
	return p, nil
}

// ListPublished pages through published posts.
func (r *PostRepo) ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error) {
	const q = `
SELECT ` + postCols + `
FROM posts
WHERE published
ORDER BY published_at DESC, id
LIMIT $1 OFFSET $2`
	return r.list(ctx, q, limit, offset)
}

// ListAll returns drafts and published posts alike.
func (r *PostRepo) ListAll(ctx context.Context) ([]model.Post, error) {
	const q = `SELECT ` + postCols + ` FROM posts ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *PostRepo) list(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
