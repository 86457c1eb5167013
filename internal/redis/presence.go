package redis

import (
	"context"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ConnectedSetter persists a user's connected flag.
type ConnectedSetter interface {
	SetConnected(ctx context.Context, userID uuid.UUID, connected bool) error
}

// PresenceStore counts, across instances, how many instances hold at least
// one session of a user. The connected flag flips only on the first and the
// last of them.
type PresenceStore struct {
	client *goredis.Client
	next   ConnectedSetter
}

const presenceKeyPrefix = "presence:instances:"

func NewPresenceStore(client *goredis.Client, next ConnectedSetter) *PresenceStore {
	return &PresenceStore{client: client, next: next}
}

func (p *PresenceStore) SetConnected(ctx context.Context, userID uuid.UUID, connected bool) error {
	key := presenceKeyPrefix + userID.String()
	if connected {
		n, err := p.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 1 {
			return p.next.SetConnected(ctx, userID, true)
		}
		return nil
	}

	n, err := p.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		if err := p.client.Del(ctx, key).Err(); err != nil {
			return err
		}
		return p.next.SetConnected(ctx, userID, false)
	}
	return nil
}

// InstanceCount returns how many instances hold a session of userID.
func (p *PresenceStore) InstanceCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := p.client.Get(ctx, presenceKeyPrefix+userID.String()).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return n, err
}
