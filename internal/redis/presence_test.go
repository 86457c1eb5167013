package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type recordingSetter struct {
	calls []bool
}

func (r *recordingSetter) SetConnected(_ context.Context, _ uuid.UUID, connected bool) error {
	r.calls = append(r.calls, connected)
	return nil
}

// redisForTest connects to REDIS_TEST_ADDR, skipping when it is unset.
func redisForTest(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPresenceStore(t *testing.T) {
	client := redisForTest(t)
	ctx := context.Background()
	next := &recordingSetter{}
	store := NewPresenceStore(client, next)
	userID := uuid.New()

	req := require.New(t)
	req.NoError(store.SetConnected(ctx, userID, true))
	req.NoError(store.SetConnected(ctx, userID, true))

	n, err := store.InstanceCount(ctx, userID)
	req.NoError(err)
	req.Equal(int64(2), n)

	req.NoError(store.SetConnected(ctx, userID, false))
	req.NoError(store.SetConnected(ctx, userID, false))

	n, err = store.InstanceCount(ctx, userID)
	req.NoError(err)
	req.Zero(n)

	req.Equal([]bool{true, false}, next.calls)
}

func TestRateLimiter(t *testing.T) {
	client := redisForTest(t)
	ctx := context.Background()
	limiter := NewRateLimiter(client,
		Limit{Max: 2, Window: time.Minute},
		Limit{Max: 1, Window: time.Minute},
	)

	t.Run("messages are counted per sender", func(t *testing.T) {
		req := require.New(t)
		userID := uuid.NewString()
		for i := 0; i < 2; i++ {
			res, err := limiter.AllowMessage(ctx, userID)
			req.NoError(err)
			req.True(res.Allowed)
			req.Equal(1-i, res.Remaining)
		}
		res, err := limiter.AllowMessage(ctx, userID)
		req.NoError(err)
		req.False(res.Allowed)
		req.Zero(res.Remaining)
		req.Positive(res.ResetIn)
		req.LessOrEqual(res.ResetIn, time.Minute)

		other, err := limiter.AllowMessage(ctx, uuid.NewString())
		req.NoError(err)
		req.True(other.Allowed)
	})

	t.Run("auth attempts use their own limit", func(t *testing.T) {
		req := require.New(t)
		ip := "10.0.0." + uuid.NewString()
		res, err := limiter.AllowAuth(ctx, ip)
		req.NoError(err)
		req.True(res.Allowed)
		req.Equal(1, res.Limit)

		res, err = limiter.AllowAuth(ctx, ip)
		req.NoError(err)
		req.False(res.Allowed)
	})
}
