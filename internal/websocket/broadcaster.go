package websocket

import (
	"context"

	"github.com/google/uuid"
)

// LocalBroadcaster delivers straight into this process's hub. It is used
// when no redis is configured.
type LocalBroadcaster struct {
	hub *Hub
}

func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

func (b *LocalBroadcaster) Broadcast(_ context.Context, conversationID string, payload []byte) error {
	b.hub.Broadcast(conversationID, payload)
	return nil
}

func (b *LocalBroadcaster) RevokeChannel(_ context.Context, conversationID string, userID uuid.UUID) error {
	b.hub.UnsubscribeUser(userID, conversationID)
	return nil
}
