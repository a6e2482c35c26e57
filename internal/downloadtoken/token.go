// Package downloadtoken issues and verifies the signed, short-lived tokens that
// authorize one gated-download confirmation.
package downloadtoken

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/leadgate/internal/model"
)

const (
	audience = "download"
	leeway   = 30 * time.Second
)

type claims struct {
	ResourceID string `json:"rid"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 download tokens. The key must not be shared
// with admin access tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// New constructs a Signer. ttl is the lifetime of issued tokens.
func New(key []byte, ttl time.Duration) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("download token key is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("download token ttl must be positive")
	}
	return &Signer{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token binding the lead to the resource it requested.
func (s *Signer) Issue(resourceID, leadID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	c := claims{
		ResourceID: resourceID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   leadID.String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	return signed, exp, err
}

// Verify reports whether raw is a well-formed, correctly signed, unexpired
// download token and returns what it grants. It has no side effects.
func (s *Signer) Verify(raw string) (model.DownloadGrant, bool) {
	if raw == "" {
		return model.DownloadGrant{}, false
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return model.DownloadGrant{}, false
	}

	v := jwt.NewValidator(
		jwt.WithLeeway(leeway),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err := v.Validate(&c); err != nil {
		return model.DownloadGrant{}, false
	}

	rid, err := uuid.FromString(c.ResourceID)
	if err != nil || rid == uuid.Nil {
		return model.DownloadGrant{}, false
	}
	lid, err := uuid.FromString(c.Subject)
	if err != nil || lid == uuid.Nil {
		return model.DownloadGrant{}, false
	}

	g := model.DownloadGrant{ResourceID: rid, LeadID: lid}
	if c.IssuedAt != nil {
		g.IssuedAt = c.IssuedAt.Time
	}
	g.ExpiresAt = c.ExpiresAt.Time
	return g, true
}
