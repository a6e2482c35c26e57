package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/service"
	"github.com/gofrs/uuid/v5"
)

type fakeConfirm struct {
	gotToken string
	err      error
	calls    int
}

var _ service.ConfirmService = (*fakeConfirm)(nil)

func (f *fakeConfirm) Confirm(_ context.Context, token string) (model.ConfirmOutcome, error) {
	f.calls++
	f.gotToken = token
	if f.err != nil {
		return model.ConfirmOutcome{}, f.err
	}
	return model.ConfirmOutcome{ResourceFound: true, LeadConfirmed: true, DownloadCounted: true}, nil
}

const adminToken = "admin-token"

type fakeAuth struct {
	adminID  uuid.UUID
	loginErr error
	gotIP    string
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Register(context.Context, string, string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeAuth) LoginWithIP(_ context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	f.gotIP = ip
	if f.loginErr != nil {
		return model.Tokens{}, model.User{}, f.loginErr
	}
	if username != "admin" || password != "secret" {
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}
	return model.Tokens{AccessToken: adminToken, ExpiresAt: time.Now().Add(time.Hour)}, model.User{ID: f.adminID}, nil
}

func (f *fakeAuth) ParseAccessToken(raw string) (uuid.UUID, error) {
	if raw != adminToken {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return f.adminID, nil
}

type fakeResources struct {
	items   map[uuid.UUID]model.Resource
	err     error
	lastPub *bool
}

var _ service.ResourceService = (*fakeResources)(nil)

func (f *fakeResources) ListPublished(context.Context) ([]model.Resource, error) {
	out := []model.Resource{}
	for _, r := range f.items {
		if r.Published {
			out = append(out, r)
		}
	}
	return out, f.err
}
func (f *fakeResources) GetPublishedBySlug(_ context.Context, slug string) (*model.Resource, error) {
	for _, r := range f.items {
		if r.Slug == slug && r.Published {
			return &r, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakeResources) List(context.Context) ([]model.Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Resource{}
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}
func (f *fakeResources) Get(_ context.Context, id uuid.UUID) (*model.Resource, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &r, nil
}
func (f *fakeResources) Create(_ context.Context, in model.ResourceInput) (*model.Resource, error) {
	if in.Slug == "" {
		return nil, errors.Join(errs.ErrValidation, errors.New("slug is required"))
	}
	for _, r := range f.items {
		if r.Slug == in.Slug {
			return nil, errs.ErrAlreadyExists
		}
	}
	r := model.Resource{ID: uuid.Must(uuid.NewV4()), Slug: in.Slug, Title: in.Title, FileURL: in.FileURL, Published: in.Published}
	f.items[r.ID] = r
	return &r, nil
}
func (f *fakeResources) Update(_ context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	r.Slug, r.Title, r.FileURL, r.Published = in.Slug, in.Title, in.FileURL, in.Published
	f.items[id] = r
	return &r, nil
}
func (f *fakeResources) SetPublished(_ context.Context, id uuid.UUID, published bool) error {
	r, ok := f.items[id]
	if !ok {
		return errs.ErrNotFound
	}
	r.Published = published
	f.items[id] = r
	f.lastPub = &published
	return nil
}
func (f *fakeResources) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakePosts struct {
	items         map[uuid.UUID]model.Post
	limit, offset int
}

var _ service.PostService = (*fakePosts)(nil)

func (f *fakePosts) ListPublished(_ context.Context, limit, offset int) ([]model.Post, error) {
	f.limit, f.offset = limit, offset
	out := []model.Post{}
	for _, p := range f.items {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakePosts) GetPublishedBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range f.items {
		if p.Slug == slug && p.Published {
			return &p, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakePosts) List(context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}
func (f *fakePosts) Create(_ context.Context, in model.PostInput) (*model.Post, error) {
	p := model.Post{ID: uuid.Must(uuid.NewV4()), Slug: in.Slug, Title: in.Title, Excerpt: in.Excerpt, Body: in.Body}
	f.items[p.ID] = p
	return &p, nil
}
func (f *fakePosts) Update(_ context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	p.Slug, p.Title, p.Excerpt, p.Body = in.Slug, in.Title, in.Excerpt, in.Body
	f.items[id] = p
	return &p, nil
}
func (f *fakePosts) SetPublished(_ context.Context, id uuid.UUID, published bool) error {
	p, ok := f.items[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Published = published
	f.items[id] = p
	return nil
}
func (f *fakePosts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeLeads struct {
	err     error
	gotSlug string
	gotIP   string
	got     model.Contact
	leads   []model.Lead
}

var _ service.LeadService = (*fakeLeads)(nil)

func (f *fakeLeads) RequestDownload(_ context.Context, slug string, c model.Contact, ip string) (model.DownloadTicket, error) {
	f.gotSlug, f.got, f.gotIP = slug, c, ip
	if f.err != nil {
		return model.DownloadTicket{}, f.err
	}
	return model.DownloadTicket{
		LeadID:      uuid.Must(uuid.NewV4()),
		Token:       "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
		DownloadURL: "https://site/resources/" + slug + "/download?token=tok",
		FileURL:     "https://cdn/file.pdf",
	}, nil
}
func (f *fakeLeads) ListByResource(_ context.Context, id uuid.UUID) ([]model.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
