package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/domain/message"
	"sentinal-social/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
	UpdateConnected(ctx context.Context, userID uuid.UUID, connected bool) error
}

// RelationshipRepository owns the friendship graph: pending requests and
// symmetric friendships.
type RelationshipRepository interface {
	AddFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (bool, error)
	HasFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) (bool, error)
	GetFriendRequests(ctx context.Context, recipientID uuid.UUID) ([]user.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) error

	// AcceptFriendRequest clears pending requests in both directions and
	// links both users, atomically.
	AcceptFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) error
	RemoveFriendship(ctx context.Context, userID, friendID uuid.UUID) error
	AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	GetFriends(ctx context.Context, userID uuid.UUID) ([]user.Friendship, error)
}

type ConversationRepository interface {
	// Create inserts the conversation and its participants atomically.
	// A chat whose pair key already exists fails with ErrAlreadyExists.
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (conversation.Conversation, error)
	GetUserConversationIDs(ctx context.Context, userID uuid.UUID, kind conversation.Kind) ([]uuid.UUID, error)

	AddParticipant(ctx context.Context, p *conversation.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

type MessageRepository interface {
	// CreateAndAppend assigns the next sequence number of the conversation
	// and inserts the message in the same transaction.
	CreateAndAppend(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error)
	UpdateReadStatus(ctx context.Context, id uuid.UUID, isRead bool) error
}
