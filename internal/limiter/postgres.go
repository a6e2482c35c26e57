package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter with a fixed window and lockout.
type PG struct {
	pool   pgxQuerier
	scope  string
	policy Policy
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter for one scope. *pgxpool.Pool satisfies q.
func NewPG(q pgxQuerier, scope string, p Policy) *PG {
	return &PG{pool: q, scope: scope, policy: p}
}

// Allow reports whether attempts are currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM rate_limits WHERE scope=$1 AND subject=$2 AND ip_hash=$3`
	var blockedUntil time.Time
	err := l.pool.QueryRow(ctx, q, l.scope, subject, ipHash).Scan(&blockedUntil)
	switch {
	case err == nil:
		if d := time.Until(blockedUntil); d > 0 {
			return false, d, nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Reset clears counters for (subject, ip).
func (l *PG) Reset(ctx context.Context, subject string, ipHash []byte) error {
	const q = `
INSERT INTO rate_limits (scope, subject, ip_hash, hits, blocked_until, updated_at)
VALUES ($1,$2,$3,0,'epoch',now())
ON CONFLICT (scope, subject, ip_hash)
DO UPDATE SET hits=0, blocked_until='epoch', updated_at=now()`
	_, err := l.pool.Exec(ctx, q, l.scope, subject, ipHash)
	return err
}

// Hit records an attempt; may set a block until a future time.
func (l *PG) Hit(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error) {
	now := time.Now()

	// The counter restarts when the previous hit is older than the window.
	const q = `
INSERT INTO rate_limits (scope, subject, ip_hash, hits, blocked_until, updated_at)
VALUES ($1,$2,$3,1,'epoch',now())
ON CONFLICT (scope, subject, ip_hash) DO UPDATE
SET
  hits = CASE WHEN now() - rate_limits.updated_at > $4::interval THEN 1 ELSE rate_limits.hits + 1 END,
  updated_at = now()
RETURNING hits`
	var hits int
	if err := l.pool.QueryRow(ctx, q, l.scope, subject, ipHash, l.policy.Window).Scan(&hits); err != nil {
		return false, 0, err
	}
	if hits >= l.policy.MaxHits {
		blockUntil := now.Add(l.policy.BlockFor)
		const upd = `UPDATE rate_limits SET blocked_until=$4 WHERE scope=$1 AND subject=$2 AND ip_hash=$3`
		if _, err := l.pool.Exec(ctx, upd, l.scope, subject, ipHash, blockUntil); err != nil {
			return false, 0, err
		}
		return true, l.policy.BlockFor, nil
	}
	return false, 0, nil
}
