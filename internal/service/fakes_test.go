package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/events"
	"github.com/and161185/leadgate/internal/limiter"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

/************ users ************/

type fakeUsers struct {
	byName map[string]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}
func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	hitBlocked bool
	hitErr     error

	resetErr error

	allowCalls int
	hitCalls   int
	resetCalls int
	subjects   []string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, subject string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.subjects = append(l.subjects, subject)
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Reset(context.Context, string, []byte) error {
	l.resetCalls++
	return l.resetErr
}
func (l *fakeLimiter) Hit(context.Context, string, []byte) (bool, time.Duration, error) {
	l.hitCalls++
	return l.hitBlocked, 0, l.hitErr
}

/************ resources ************/

// fakeResources is safe for concurrent use; the confirmation fan-out hits it from two goroutines.
type fakeResources struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Resource

	getErr  error
	incErr  error
	incHook func() // runs before the increment, outside the lock

	createErr error
	incCalls  int

	// leads, when set, gets the ON DELETE SET NULL treatment on Delete.
	leads *fakeLeads
}

var _ repository.ResourceRepository = (*fakeResources)(nil)

func newFakeResources(rs ...*model.Resource) *fakeResources {
	f := &fakeResources{byID: map[uuid.UUID]*model.Resource{}}
	for _, r := range rs {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeResources) Create(_ context.Context, r *model.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.Slug == r.Slug {
			return errs.ErrAlreadyExists
		}
	}
	r.CreatedAt, r.UpdatedAt = time.Now(), time.Now()
	c := *r
	f.byID[r.ID] = &c
	return nil
}
func (f *fakeResources) Update(_ context.Context, id uuid.UUID, in model.ResourceInput) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	r.Slug, r.Title, r.Summary, r.FileURL, r.Published = in.Slug, in.Title, in.Summary, in.FileURL, in.Published
	c := *r
	return &c, nil
}
func (f *fakeResources) SetPublished(_ context.Context, id uuid.UUID, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	r.Published = published
	return nil
}
func (f *fakeResources) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	if f.leads != nil {
		f.leads.detach(id)
	}
	return nil
}
func (f *fakeResources) GetByID(_ context.Context, id uuid.UUID) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *r
	return &c, nil
}
func (f *fakeResources) GetBySlug(_ context.Context, slug string) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.byID {
		if r.Slug == slug {
			c := *r
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakeResources) List(_ context.Context, publishedOnly bool) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Resource{}
	for _, r := range f.byID {
		if r.Published || !publishedOnly {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (f *fakeResources) IncrementDownloads(_ context.Context, id uuid.UUID) error {
	if f.incHook != nil {
		f.incHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incCalls++
	if f.incErr != nil {
		return f.incErr
	}
	r, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	r.DownloadsCount++
	return nil
}
func (f *fakeResources) count(id uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		return r.DownloadsCount
	}
	return -1
}

/************ leads ************/

type fakeLeads struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Lead

	createErr  error
	confirmErr error
	listErr    error
	markHook   func()

	markCalls int
}

var _ repository.LeadRepository = (*fakeLeads)(nil)

func newFakeLeads() *fakeLeads { return &fakeLeads{byID: map[uuid.UUID]*model.Lead{}} }

func (f *fakeLeads) Create(_ context.Context, l *model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	l.CreatedAt = time.Now()
	c := *l
	f.byID[l.ID] = &c
	return nil
}
func (f *fakeLeads) MarkConfirmed(_ context.Context, id uuid.UUID) error {
	if f.markHook != nil {
		f.markHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	if f.confirmErr != nil {
		return f.confirmErr
	}
	l, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	if l.ConfirmedAt == nil {
		now := time.Now()
		l.ConfirmedAt = &now
	}
	l.Confirmed = true
	return nil
}
// detach mirrors the leads.resource_id foreign key: the lead survives with a NULL resource.
func (f *fakeLeads) detach(resourceID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.byID {
		if l.ResourceID == resourceID {
			l.ResourceID = uuid.Nil
		}
	}
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *l
	return &c, nil
}
func (f *fakeLeads) ListByResource(_ context.Context, resourceID uuid.UUID) ([]model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Lead{}
	for _, l := range f.byID {
		if l.ResourceID == resourceID {
			out = append(out, *l)
		}
	}
	return out, nil
}
func (f *fakeLeads) confirmed(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	return ok && l.Confirmed
}

/************ posts ************/

type fakePosts struct {
	byID map[uuid.UUID]*model.Post

	limit, offset int
}

var _ repository.PostRepository = (*fakePosts)(nil)

func newFakePosts() *fakePosts { return &fakePosts{byID: map[uuid.UUID]*model.Post{}} }

func (f *fakePosts) Create(_ context.Context, p *model.Post) error {
	for _, x := range f.byID {
		if x.Slug == p.Slug {
			return errs.ErrAlreadyExists
		}
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}
func (f *fakePosts) Update(_ context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	p.Slug, p.Title, p.Excerpt, p.Body = in.Slug, in.Title, in.Excerpt, in.Body
	c := *p
	return &c, nil
}
func (f *fakePosts) SetPublished(_ context.Context, id uuid.UUID, published bool) error {
	p, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Published = published
	if published && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
	return nil
}
func (f *fakePosts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}
func (f *fakePosts) GetByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}
func (f *fakePosts) GetPublishedBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range f.byID {
		if p.Slug == slug && p.Published {
			c := *p
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakePosts) ListPublished(_ context.Context, limit, offset int) ([]model.Post, error) {
	f.limit, f.offset = limit, offset
	out := []model.Post{}
	for _, p := range f.byID {
		if p.Published {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (f *fakePosts) ListAll(_ context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

/************ tokens, sealing, events ************/

// mapVerifier accepts exactly the tokens it was given.
type mapVerifier map[string]model.DownloadGrant

func (m mapVerifier) Verify(raw string) (model.DownloadGrant, bool) {
	g, ok := m[raw]
	return g, ok
}

type fakeIssuer struct {
	err  error
	last [2]uuid.UUID
}

func (f *fakeIssuer) Issue(resourceID, leadID uuid.UUID) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.last = [2]uuid.UUID{resourceID, leadID}
	return "tok+" + leadID.String(), time.Now().Add(24 * time.Hour), nil
}

// plainSealer is a reversible stand-in that still binds the blob to the lead id.
type plainSealer struct{ err error }

func (s plainSealer) Seal(leadID uuid.UUID, c model.Contact) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append(leadID.Bytes(), []byte(c.Name+"\x00"+c.Email+"\x00"+c.Company)...), nil
}

func (s plainSealer) Open(leadID uuid.UUID, blob []byte) (model.Contact, error) {
	if len(blob) < 16 || uuid.FromBytesOrNil(blob[:16]) != leadID {
		return model.Contact{}, errors.New("wrong lead")
	}
	parts := strings.SplitN(string(blob[16:]), "\x00", 3)
	if len(parts) != 3 {
		return model.Contact{}, errors.New("short blob")
	}
	return model.Contact{Name: parts[0], Email: parts[1], Company: parts[2]}, nil
}

type published struct {
	eventType, key string
	payload        []byte
}

type fakePublisher struct {
	mu  sync.Mutex
	got []published
	err error
}

var _ events.Publisher = (*fakePublisher)(nil)

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, published{eventType, key, payload})
	return p.err
}
