package service

import (
	"context"
	"strings"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PostService manages blog posts.
type PostService interface {
	ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error)

	List(ctx context.Context) ([]model.Post, error)
	Create(ctx context.Context, in model.PostInput) (*model.Post, error)
	Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostServiceImpl implements PostService.
type PostServiceImpl struct {
	repo repository.PostRepository
}

// NewPostService constructs PostService.
func NewPostService(repo repository.PostRepository) *PostServiceImpl {
	return &PostServiceImpl{repo: repo}
}

// ListPublished clamps paging: limit to 1..100 (default 20), offset to >= 0.
func (s *PostServiceImpl) ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPublished(ctx, limit, offset)
}

func (s *PostServiceImpl) GetPublishedBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if validateSlug(slug) != nil {
		return nil, errs.ErrNotFound
	}
	return s.repo.GetPublishedBySlug(ctx, slug)
}

func (s *PostServiceImpl) List(ctx context.Context) ([]model.Post, error) {
	return s.repo.ListAll(ctx)
}

// Create stores a draft; publishing is a separate step.
func (s *PostServiceImpl) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	in, err := normalizePost(in)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Post{
		ID:      id,
		Slug:    in.Slug,
		Title:   in.Title,
		Excerpt: in.Excerpt,
		Body:    in.Body,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostServiceImpl) Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	in, err := normalizePost(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *PostServiceImpl) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return s.repo.SetPublished(ctx, id, published)
}

func (s *PostServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func normalizePost(in model.PostInput) (model.PostInput, error) {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if err := validateSlug(in.Slug); err != nil {
		return in, err
	}
	if err := validateTitle(in.Title); err != nil {
		return in, err
	}
	if strings.TrimSpace(in.Body) == "" {
		return in, invalid("body is required")
	}
	return in, nil
}
