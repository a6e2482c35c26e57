package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/events"
	"github.com/and161185/leadgate/internal/model"
	"github.com/and161185/leadgate/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TokenVerifier checks a raw download token. It must be pure: no I/O.
type TokenVerifier interface {
	Verify(raw string) (model.DownloadGrant, bool)
}

// ConfirmService records that a download link was used.
type ConfirmService interface {
	Confirm(ctx context.Context, token string) (model.ConfirmOutcome, error)
}

// ConfirmServiceImpl verifies the token, then marks the lead confirmed and
// counts the download concurrently. Neither side effect blocks or cancels the other.
type ConfirmServiceImpl struct {
	verifier  TokenVerifier
	resources repository.ResourceRepository
	leads     repository.LeadRepository
	pub       events.Publisher // optional
	log       *zap.Logger
}

// NewConfirmService constructs the confirmation coordinator. pub may be nil.
func NewConfirmService(v TokenVerifier, resources repository.ResourceRepository, leads repository.LeadRepository, pub events.Publisher, log *zap.Logger) *ConfirmServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmServiceImpl{verifier: v, resources: resources, leads: leads, pub: pub, log: log}
}

// Confirm returns errs.ErrInvalidToken for a bad token and a wrapped storage
// error if the resource lookup fails. Failures of the two side effects are
// logged and reported in the outcome only.
func (s *ConfirmServiceImpl) Confirm(ctx context.Context, token string) (model.ConfirmOutcome, error) {
	grant, ok := s.verifier.Verify(token)
	if !ok {
		return model.ConfirmOutcome{}, errs.ErrInvalidToken
	}
	log := s.log.With(
		zap.String("resource_id", grant.ResourceID.String()),
		zap.String("lead_id", grant.LeadID.String()),
	)

	var out model.ConfirmOutcome
	_, err := s.resources.GetByID(ctx, grant.ResourceID)
	switch {
	case err == nil:
		out.ResourceFound = true
	case errors.Is(err, errs.ErrNotFound):
		log.Warn("confirm: resource gone, download not counted")
	default:
		return model.ConfirmOutcome{}, fmt.Errorf("confirm: lookup resource: %w", err)
	}

	// Every task returns nil so Wait joins both regardless of failures and
	// the group context is never cancelled early.
	var g errgroup.Group
	g.Go(func() error {
		if err := s.leads.MarkConfirmed(ctx, grant.LeadID); err != nil {
			log.Error("confirm: mark lead confirmed", zap.Error(err))
			return nil
		}
		out.LeadConfirmed = true
		return nil
	})
	if out.ResourceFound {
		g.Go(func() error {
			if err := s.resources.IncrementDownloads(ctx, grant.ResourceID); err != nil {
				log.Error("confirm: increment downloads", zap.Error(err))
				return nil
			}
			out.DownloadCounted = true
			return nil
		})
	}
	_ = g.Wait()

	s.publishConfirmed(ctx, log, grant, out)
	return out, nil
}

func (s *ConfirmServiceImpl) publishConfirmed(ctx context.Context, log *zap.Logger, grant model.DownloadGrant, out model.ConfirmOutcome) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(events.DownloadConfirmed{
		LeadID:          grant.LeadID,
		ResourceID:      grant.ResourceID,
		LeadConfirmed:   out.LeadConfirmed,
		DownloadCounted: out.DownloadCounted,
		At:              time.Now().UTC(),
	})
	if err != nil {
		log.Error("confirm: encode event", zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, events.TypeDownloadConfirmed, grant.LeadID.String(), payload); err != nil {
		log.Warn("confirm: publish event", zap.Error(err))
	}
}
