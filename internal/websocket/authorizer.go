package websocket

import (
	"context"

	"sentinal-social/internal/proxy"

	"github.com/google/uuid"
)

// ChannelAuthorizer handles authorization for WebSocket channel subscriptions
type ChannelAuthorizer struct {
	access *proxy.AccessControl
}

func NewChannelAuthorizer(access *proxy.AccessControl) *ChannelAuthorizer {
	return &ChannelAuthorizer{access: access}
}

// CanSubscribe allows a user to join a chat or group channel only when they
// participate in it. It returns the channel in the canonical form the hub
// broadcasts on. Unknown or malformed channels are denied.
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID uuid.UUID, channel string) (string, bool, error) {
	conversationID, err := uuid.Parse(channel)
	if err != nil {
		return "", false, nil
	}
	ok, err := a.access.CanSubscribe(ctx, userID, conversationID)
	if err != nil || !ok {
		return "", false, err
	}
	return conversationID.String(), true, nil
}

// canonicalChannel normalizes a conversation id so "ABC..." and
// "urn:uuid:abc..." name the same channel. Other strings pass through.
func canonicalChannel(channel string) string {
	if id, err := uuid.Parse(channel); err == nil {
		return id.String()
	}
	return channel
}
