package redis

import (
	"context"
	"fmt"
	"time"

	"sentinal-social/config"

	goredis "github.com/redis/go-redis/v9"
)

// Limit allows Max actions per fixed Window.
type Limit struct {
	Max    int
	Window time.Duration
}

// Decision is the outcome of counting one action against a Limit.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

// windowScript counts a hit and starts the window on the first one.
// Returns {hits, pttl}.
var windowScript = goredis.NewScript(`
local hits = redis.call('INCR', KEYS[1])
if hits == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {hits, redis.call('PTTL', KEYS[1])}
`)

// RateLimiter counts message posts per sender and auth attempts per client
// IP in fixed windows shared by every instance.
type RateLimiter struct {
	client   *goredis.Client
	messages Limit
	auth     Limit
}

func NewRateLimiter(client *goredis.Client, messages, auth Limit) *RateLimiter {
	return &RateLimiter{client: client, messages: messages, auth: auth}
}

// NewRateLimiterFromConfig reads both limits from cfg.
func NewRateLimiterFromConfig(client *goredis.Client, cfg *config.Config) *RateLimiter {
	return NewRateLimiter(client,
		Limit{Max: cfg.RateLimitMessages, Window: cfg.RateLimitWindow()},
		Limit{Max: cfg.RateLimitAuth, Window: cfg.RateLimitAuthWindow()},
	)
}

func (r *RateLimiter) AllowMessage(ctx context.Context, userID string) (*Decision, error) {
	return r.hit(ctx, "ratelimit:messages:"+userID, r.messages)
}

func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*Decision, error) {
	return r.hit(ctx, "ratelimit:auth:"+ip, r.auth)
}

func (r *RateLimiter) hit(ctx context.Context, key string, limit Limit) (*Decision, error) {
	res, err := windowScript.Run(ctx, r.client, []string{key}, limit.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", key, res)
	}

	hits, ttl := res[0], res[1]
	if ttl < 0 {
		ttl = limit.Window.Milliseconds()
	}
	return &Decision{
		Allowed:   hits <= int64(limit.Max),
		Remaining: max(limit.Max-int(hits), 0),
		ResetIn:   time.Duration(ttl) * time.Millisecond,
		Limit:     limit.Max,
	}, nil
}
