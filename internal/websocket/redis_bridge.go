package websocket

import (
	"context"

	"sentinal-social/internal/events"

	"github.com/google/uuid"
)

// RedisBridge applies conversation events and subscription revocations
// published by any instance to the local hub.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	patterns := []string{
		events.ChannelPrefixConversation + "*",
		events.ChannelPrefixRevoke + "*",
	}
	return b.subscriber.Subscribe(ctx, patterns, b.dispatch)
}

func (b *RedisBridge) dispatch(channel string, payload []byte) {
	if conversationID, ok := events.ConversationFromChannel(channel); ok {
		b.hub.Broadcast(conversationID, payload)
		return
	}
	if conversationID, ok := events.RevokedFromChannel(channel); ok {
		userID, err := uuid.ParseBytes(payload)
		if err != nil {
			return
		}
		b.hub.UnsubscribeUser(userID, conversationID)
	}
}
