package repository

import (
	"context"

	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ResourceRepository provides access to the downloadable resource catalogue.
type ResourceRepository interface {
	// Create inserts a new resource with a zero download counter.
	Create(ctx context.Context, r *model.Resource) error
	// Update overwrites editable fields; the download counter is never touched.
	Update(ctx context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error)
	// SetPublished toggles catalogue visibility.
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	// Delete removes a resource.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID returns a resource regardless of its published flag.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error)
	// GetBySlug returns a resource regardless of its published flag.
	GetBySlug(ctx context.Context, slug string) (*model.Resource, error)
	// List returns resources ordered by creation time, newest first.
	List(ctx context.Context, publishedOnly bool) ([]model.Resource, error)

	// IncrementDownloads adds one to the download counter in a single atomic statement.
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}
