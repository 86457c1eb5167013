package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RedisBus delivers conversation events through redis pub/sub so every
// instance's realtime bridge sees them.
type RedisBus struct {
	publisher Publisher
}

func NewRedisBus(publisher Publisher) *RedisBus {
	return &RedisBus{publisher: publisher}
}

func (b *RedisBus) Broadcast(ctx context.Context, conversationID string, payload []byte) error {
	if err := b.publisher.Publish(ctx, ConversationChannel(conversationID), payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", conversationID, err)
	}
	return nil
}

// RevokeChannel asks every instance to drop userID's sessions from the
// conversation's channel.
func (b *RedisBus) RevokeChannel(ctx context.Context, conversationID string, userID uuid.UUID) error {
	if err := b.publisher.Publish(ctx, RevokeChannel(conversationID), []byte(userID.String())); err != nil {
		return fmt.Errorf("failed to revoke %s on %s: %w", userID, conversationID, err)
	}
	return nil
}
