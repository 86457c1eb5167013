package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Connected    bool
	CreatedAt    time.Time
}

// Identity is the public view of a user.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// FriendRequest represents the friend_requests table. Recipient holds a
// pending request from Sender until it is accepted or rejected.
type FriendRequest struct {
	RecipientID uuid.UUID
	SenderID    uuid.UUID
	RequestedAt time.Time
}

// Friendship represents one directed row of the friendships table.
// Every friendship is stored as two rows, one per direction.
type Friendship struct {
	UserID    uuid.UUID
	FriendID  uuid.UUID
	CreatedAt time.Time
}
