package repository

import (
	"context"

	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PostRepository provides access to blog posts.
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error)
	// SetPublished toggles visibility; published_at is stamped on the first publish only.
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	// GetPublishedBySlug returns a post only if it is currently published.
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error)
	// ListPublished pages through published posts, newest publication first.
	ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error)
	// ListAll returns every post for the admin view.
	ListAll(ctx context.Context) ([]model.Post, error)
}
