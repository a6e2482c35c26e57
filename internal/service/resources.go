package service

import (
	"context"
	"strings"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// ResourceService manages the downloadable resource catalogue.
type ResourceService interface {
	ListPublished(ctx context.Context) ([]model.Resource, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Resource, error)

	List(ctx context.Context) ([]model.Resource, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Resource, error)
	Create(ctx context.Context, in model.ResourceInput) (*model.Resource, error)
	Update(ctx context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceServiceImpl implements ResourceService.
type ResourceServiceImpl struct {
	repo repository.ResourceRepository
}

// NewResourceService constructs ResourceService.
func NewResourceService(repo repository.ResourceRepository) *ResourceServiceImpl {
	return &ResourceServiceImpl{repo: repo}
}

func (s *ResourceServiceImpl) ListPublished(ctx context.Context) ([]model.Resource, error) {
	return s.repo.List(ctx, true)
}

// GetPublishedBySlug hides unpublished resources behind errs.ErrNotFound.
func (s *ResourceServiceImpl) GetPublishedBySlug(ctx context.Context, slug string) (*model.Resource, error) {
	if validateSlug(slug) != nil {
		return nil, errs.ErrNotFound
	}
	res, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !res.Published {
		return nil, errs.ErrNotFound
	}
	return res, nil
}

func (s *ResourceServiceImpl) List(ctx context.Context) ([]model.Resource, error) {
	return s.repo.List(ctx, false)
}

func (s *ResourceServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ResourceServiceImpl) Create(ctx context.Context, in model.ResourceInput) (*model.Resource, error) {
	in, err := normalizeResource(in)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	res := &model.Resource{
		ID:        id,
		Slug:      in.Slug,
		Title:     in.Title,
		Summary:   in.Summary,
		FileURL:   in.FileURL,
		Published: in.Published,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ResourceServiceImpl) Update(ctx context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error) {
	in, err := normalizeResource(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *ResourceServiceImpl) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return s.repo.SetPublished(ctx, id, published)
}

func (s *ResourceServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func normalizeResource(in model.ResourceInput) (model.ResourceInput, error) {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	in.FileURL = strings.TrimSpace(in.FileURL)
	if err := validateSlug(in.Slug); err != nil {
		return in, err
	}
	if err := validateTitle(in.Title); err != nil {
		return in, err
	}
	if in.FileURL == "" {
		return in, invalid("file_url is required")
	}
	return in, nil
}
