package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/events"
	"github.com/and161185/leadgate/internal/limiter"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// TokenIssuer mints download tokens.
type TokenIssuer interface {
	Issue(resourceID, leadID uuid.UUID) (string, time.Time, error)
}

// ContactSealer encrypts contact info bound to a lead id.
type ContactSealer interface {
	Seal(leadID uuid.UUID, c model.Contact) ([]byte, error)
	Open(leadID uuid.UUID, blob []byte) (model.Contact, error)
}

// LeadService captures leads for gated resources.
type LeadService interface {
	// RequestDownload records a lead and returns a download ticket.
	RequestDownload(ctx context.Context, slug string, c model.Contact, ip string) (model.DownloadTicket, error)
	// ListByResource returns leads with unsealed contact info, newest first.
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Lead, error)
}

// LeadServiceImpl implements LeadService over the resource and lead repositories.
type LeadServiceImpl struct {
	resources repository.ResourceRepository
	leads     repository.LeadRepository
	issuer    TokenIssuer
	sealer    ContactSealer
	lim       limiter.Limiter
	pub       events.Publisher
	baseURL   string
	log       *zap.Logger
}

// NewLeadService constructs LeadService. publicBaseURL prefixes download links.
func NewLeadService(
	resources repository.ResourceRepository,
	leads repository.LeadRepository,
	issuer TokenIssuer,
	sealer ContactSealer,
	lim limiter.Limiter,
	pub events.Publisher,
	publicBaseURL string,
	log *zap.Logger,
) *LeadServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadServiceImpl{
		resources: resources,
		leads:     leads,
		issuer:    issuer,
		sealer:    sealer,
		lim:       lim,
		pub:       pub,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
		log:       log,
	}
}

// RequestDownload validates the contact, applies the per-(email, ip) limit and
// stores an unconfirmed lead for a published resource.
func (s *LeadServiceImpl) RequestDownload(ctx context.Context, slug string, c model.Contact, ip string) (model.DownloadTicket, error) {
	c, err := normalizeContact(c)
	if err != nil {
		return model.DownloadTicket{}, err
	}

	ipHash := limiter.HashIP(ip)
	allowed, _, err := s.lim.Allow(ctx, c.Email, ipHash)
	if err != nil {
		return model.DownloadTicket{}, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		return model.DownloadTicket{}, errs.ErrRateLimited
	}
	if _, _, err := s.lim.Hit(ctx, c.Email, ipHash); err != nil {
		s.log.Warn("lead: record rate limit hit", zap.Error(err))
	}

	res, err := s.resources.GetBySlug(ctx, slug)
	if err != nil {
		return model.DownloadTicket{}, err
	}
	if !res.Published {
		return model.DownloadTicket{}, errs.ErrNotFound
	}

	leadID, err := uuid.NewV4()
	if err != nil {
		return model.DownloadTicket{}, err
	}
	sealed, err := s.sealer.Seal(leadID, c)
	if err != nil {
		return model.DownloadTicket{}, fmt.Errorf("seal contact: %w", err)
	}
	lead := &model.Lead{ID: leadID, ResourceID: res.ID, ContactEnc: sealed}
	if err := s.leads.Create(ctx, lead); err != nil {
		return model.DownloadTicket{}, fmt.Errorf("create lead: %w", err)
	}

	token, exp, err := s.issuer.Issue(res.ID, leadID)
	if err != nil {
		return model.DownloadTicket{}, fmt.Errorf("issue token: %w", err)
	}

	ticket := model.DownloadTicket{
		LeadID:      leadID,
		Token:       token,
		ExpiresAt:   exp,
		DownloadURL: s.downloadURL(res.Slug, token),
		FileURL:     res.FileURL,
	}
	s.publishRequested(ctx, res, c, ticket)
	return ticket, nil
}

func (s *LeadServiceImpl) downloadURL(slug, token string) string {
	return s.baseURL + "/resources/" + url.PathEscape(slug) + "/download?token=" + url.QueryEscape(token)
}

func (s *LeadServiceImpl) publishRequested(ctx context.Context, res *model.Resource, c model.Contact, t model.DownloadTicket) {
	payload, err := json.Marshal(events.DownloadRequested{
		LeadID:      t.LeadID,
		ResourceID:  res.ID,
		Slug:        res.Slug,
		Title:       res.Title,
		Name:        c.Name,
		Email:       c.Email,
		DownloadURL: t.DownloadURL,
		ExpiresAt:   t.ExpiresAt,
	})
	if err != nil {
		s.log.Error("lead: encode event", zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, events.TypeDownloadRequested, t.LeadID.String(), payload); err != nil {
		s.log.Warn("lead: publish event",
			zap.String("lead_id", t.LeadID.String()),
			zap.Error(err),
		)
	}
}

// ListByResource unseals contact info; rows that fail to open keep an empty Contact.
func (s *LeadServiceImpl) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]model.Lead, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}
	leads, err := s.leads.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		c, err := s.sealer.Open(leads[i].ID, leads[i].ContactEnc)
		if err != nil {
			s.log.Error("lead: open contact",
				zap.String("lead_id", leads[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		leads[i].Contact = c
	}
	return leads, nil
}

