package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultThrottleLimit  = 3
	defaultThrottleWindow = time.Hour
)

// ResetThrottle caps password-reset requests per email address using a
// Redis TTL counter. Key format: reset_req:<email>
type ResetThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewResetThrottle creates a throttle allowing limit requests per window.
// Non-positive arguments fall back to 3 requests per hour.
func NewResetThrottle(client *redis.Client, limit int64, window time.Duration) *ResetThrottle {
	if limit <= 0 {
		limit = defaultThrottleLimit
	}
	if window <= 0 {
		window = defaultThrottleWindow
	}
	return &ResetThrottle{client: client, limit: limit, window: window}
}

// Allow reports whether another reset request for email may proceed. The
// first request in a window starts the TTL clock.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	key := t.key(email)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return false, fmt.Errorf("reset throttle expire: %w", err)
		}
	}
	return n <= t.limit, nil
}

func (t *ResetThrottle) key(email string) string {
	return fmt.Sprintf("reset_req:%s", email)
}
