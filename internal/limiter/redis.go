package limiter

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed limiter: an INCR counter that expires with the
// window and a separate block key that expires with the lockout.
type Redis struct {
	client redis.Cmdable
	scope  string
	policy Policy
}

// NewRedis constructs a Redis-backed limiter for one scope.
func NewRedis(client redis.Cmdable, scope string, p Policy) *Redis {
	return &Redis{client: client, scope: scope, policy: p}
}

func (l *Redis) keys(subject string, ipHash []byte) (hits, block string) {
	base := fmt.Sprintf("leadgate:rl:%s:%s:%s", l.scope, subject, hex.EncodeToString(ipHash))
	return base + ":hits", base + ":block"
}

// Allow reports whether the pair is currently blocked.
func (l *Redis) Allow(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error) {
	_, blockKey := l.keys(subject, ipHash)
	ttl, err := l.client.PTTL(ctx, blockKey).Result()
	if err != nil {
		return false, 0, err
	}
	// -2 (missing) and -1 (no expiry, never written by us) come back as tiny negative durations.
	if ttl > 0 {
		return false, ttl, nil
	}
	return true, 0, nil
}

// Hit increments the window counter and places a block once MaxHits is reached.
func (l *Redis) Hit(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error) {
	hitsKey, blockKey := l.keys(subject, ipHash)
	n, err := l.client.Incr(ctx, hitsKey).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := l.client.PExpire(ctx, hitsKey, l.policy.Window).Err(); err != nil {
			return false, 0, err
		}
	}
	if int(n) < l.policy.MaxHits {
		return false, 0, nil
	}
	if err := l.client.Set(ctx, blockKey, 1, l.policy.BlockFor).Err(); err != nil {
		return false, 0, err
	}
	if err := l.client.Del(ctx, hitsKey).Err(); err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}

// Reset drops both keys.
func (l *Redis) Reset(ctx context.Context, subject string, ipHash []byte) error {
	hitsKey, blockKey := l.keys(subject, ipHash)
	return l.client.Del(ctx, hitsKey, blockKey).Err()
}

// Connect initializes a Redis client from URL or host:port input.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}
