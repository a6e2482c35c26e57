package repository

import (
	"context"

	"github.com/and161185/leadgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// LeadRepository stores prospects who requested gated resources.
type LeadRepository interface {
	// Create inserts an unconfirmed lead. Contact info is expected to be sealed already.
	Create(ctx context.Context, l *model.Lead) error
	// MarkConfirmed sets confirmed=true; confirming twice is not an error.
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
	// GetByID loads a lead.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	// ListByResource returns leads for one resource, newest first.
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Lead, error)
}
