// Package limiter defines interfaces and implementations for request rate limiting.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter throttles attempts per (subject, ip) inside one scope and places temporary blocks.
type Limiter interface {
	// Allow reports whether an attempt is currently allowed and an optional retry-after.
	Allow(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error)
	// Hit records an attempt; once the policy threshold is reached the pair is blocked.
	Hit(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error)
	// Reset clears counters, e.g. after a successful login.
	Reset(ctx context.Context, subject string, ipHash []byte) error
}

// Policy configures one scope: MaxHits within Window trigger a block of BlockFor.
type Policy struct {
	Window   time.Duration `yaml:"window"`
	MaxHits  int           `yaml:"max_hits"`
	BlockFor time.Duration `yaml:"block_for"`
}

// Scopes used by the services.
const (
	ScopeLogin = "login"
	ScopeLead  = "lead"
)

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}
