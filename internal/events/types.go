package events

import "strings"

// Realtime event names, as sent in Envelope.Event.
const (
	// client -> server
	EventJoinChat  = "joinChat"
	EventLeaveChat = "leaveChat"

	// server -> client
	EventNewMessage = "newMessage"
	EventJoined     = "joinedChat"
	EventLeft       = "leftChat"
	EventError      = "error"
)

// Redis channel prefixes
const (
	ChannelPrefixConversation = "channel:conversation:"
	ChannelPrefixRevoke       = "channel:revoke:"
)

// ConversationChannel is the redis channel carrying a conversation's events.
func ConversationChannel(conversationID string) string {
	return ChannelPrefixConversation + conversationID
}

// ConversationFromChannel reverses ConversationChannel.
func ConversationFromChannel(channel string) (string, bool) {
	return trimChannel(channel, ChannelPrefixConversation)
}

// RevokeChannel carries the ids of users whose live subscriptions to a
// conversation must end.
func RevokeChannel(conversationID string) string {
	return ChannelPrefixRevoke + conversationID
}

// RevokedFromChannel reverses RevokeChannel.
func RevokedFromChannel(channel string) (string, bool) {
	return trimChannel(channel, ChannelPrefixRevoke)
}

func trimChannel(channel, prefix string) (string, bool) {
	if !strings.HasPrefix(channel, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, prefix)
	return id, id != ""
}
