package conversation

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Kind string

const (
	KindChat  Kind = "chat"
	KindGroup Kind = "group"
)

// Conversation represents the conversations table. A chat has a fixed
// participant set; a group's participants change through membership
// operations.
type Conversation struct {
	ID        uuid.UUID
	Kind      Kind
	Name      string
	PairKey   sql.NullString
	LastSeq   int64
	CreatedBy uuid.UUID
	CreatedAt time.Time

	Participants []uuid.UUID
}

// Participant represents the conversation_participants table
type Participant struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	JoinedAt       time.Time
}

func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return lo.Contains(c.Participants, userID)
}

func (c Conversation) IsChat() bool {
	return c.Kind == KindChat
}

func (c Conversation) IsGroup() bool {
	return c.Kind == KindGroup
}

// PairKey returns the normalized key of an unordered pair of users. It is the
// same for (a, b) and (b, a).
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// PairKeyOf returns the pair key for a two-member participant set, and false
// for any other size.
func PairKeyOf(participants []uuid.UUID) (string, bool) {
	if len(participants) != 2 || participants[0] == participants[1] {
		return "", false
	}
	return PairKey(participants[0], participants[1]), true
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (uuid.UUID, uuid.UUID, bool) {
	left, right, ok := strings.Cut(key, ":")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	a, err := uuid.Parse(left)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	b, err := uuid.Parse(right)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return a, b, true
}
