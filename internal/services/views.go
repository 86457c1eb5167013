package services

import (
	"context"
	"time"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/domain/message"
	"sentinal-social/internal/domain/user"

	"github.com/google/uuid"
)

// MessageView is a message enriched with its sender's public identity.
// Exactly one of Chat and Group is set.
type MessageView struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Sender    user.Identity `json:"sender"`
	IsRead    bool          `json:"isRead"`
	CreatedAt time.Time     `json:"createdAt"`
	Chat      *uuid.UUID    `json:"chat,omitempty"`
	Group     *uuid.UUID    `json:"group,omitempty"`
}

type ChatView struct {
	ID           uuid.UUID       `json:"id"`
	Participants []user.Identity `json:"participants"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type GroupView struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Participants []user.Identity `json:"participants"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Friend is a friend's identity plus the direct chat shared with them, if any.
type Friend struct {
	user.Identity
	Chat *uuid.UUID `json:"chat,omitempty"`
}

type Relationships struct {
	Friends        []Friend        `json:"friends"`
	FriendRequests []user.Identity `json:"friendRequests"`
}

func toMessageView(m message.Message, sender user.Identity) MessageView {
	view := MessageView{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    sender,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	id := m.ConversationID
	if m.ConversationKind == conversation.KindGroup {
		view.Group = &id
	} else {
		view.Chat = &id
	}
	return view
}

func chatView(ctx context.Context, d *Directory, c conversation.Conversation) (ChatView, error) {
	participants, err := d.Identities(ctx, c.Participants)
	if err != nil {
		return ChatView{}, err
	}
	return ChatView{ID: c.ID, Participants: participants, CreatedAt: c.CreatedAt}, nil
}

func groupView(ctx context.Context, d *Directory, c conversation.Conversation) (GroupView, error) {
	participants, err := d.Identities(ctx, c.Participants)
	if err != nil {
		return GroupView{}, err
	}
	return GroupView{ID: c.ID, Name: c.Name, Participants: participants, CreatedAt: c.CreatedAt}, nil
}
