package message

import (
	"time"

	"sentinal-social/internal/domain/conversation"

	"github.com/google/uuid"
)

// Message represents the messages table. ConversationKind is read from the
// owning conversation and decides whether the message targets a chat or a
// group.
type Message struct {
	ID               uuid.UUID
	ConversationID   uuid.UUID
	ConversationKind conversation.Kind
	SenderID         uuid.UUID
	Content          string
	IsRead           bool
	Seq              int64
	CreatedAt        time.Time
}

// ChatID returns the destination chat, if any.
func (m Message) ChatID() (uuid.UUID, bool) {
	return m.ConversationID, m.ConversationKind == conversation.KindChat
}

// GroupID returns the destination group, if any.
func (m Message) GroupID() (uuid.UUID, bool) {
	return m.ConversationID, m.ConversationKind == conversation.KindGroup
}
