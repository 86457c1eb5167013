package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/proxy"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ConversationService maps participants or explicit ids to chats and groups.
// Chats are only created on explicit request.
type ConversationService struct {
	directory     *Directory
	conversations repository.ConversationRepository
	access        *proxy.AccessControl
	now           func() time.Time
}

func NewConversationService(directory *Directory, conversations repository.ConversationRepository, access *proxy.AccessControl) *ConversationService {
	return &ConversationService{
		directory:     directory,
		conversations: conversations,
		access:        access,
		now:           time.Now,
	}
}

// FindDirectChat returns the chat whose participants are exactly a and b.
func (s *ConversationService) FindDirectChat(ctx context.Context, a, b uuid.UUID) (conversation.Conversation, bool, error) {
	if a == b {
		return conversation.Conversation{}, false, nil
	}
	c, err := s.conversations.GetByPairKey(ctx, conversation.PairKey(a, b))
	if err != nil {
		if errors.Is(err, sentinal_errors.ErrNotFound) {
			return conversation.Conversation{}, false, nil
		}
		return conversation.Conversation{}, false, err
	}
	return c, true, nil
}

// CreateChat creates a chat between participants. A two-person chat is
// unique per pair: when one already exists it is returned with created=false.
func (s *ConversationService) CreateChat(ctx context.Context, requesterID uuid.UUID, participantIDs []uuid.UUID) (ChatView, bool, error) {
	participants := lo.Uniq(participantIDs)
	if !lo.Contains(participants, requesterID) {
		return ChatView{}, false, sentinal_errors.ErrRequesterNotInChat
	}
	if len(participants) < 2 {
		return ChatView{}, false, sentinal_errors.ErrTooFewParticipants
	}
	if err := s.directory.EnsureExist(ctx, participants); err != nil {
		return ChatView{}, false, err
	}

	c := conversation.Conversation{
		ID:           uuid.New(),
		Kind:         conversation.KindChat,
		CreatedBy:    requesterID,
		CreatedAt:    s.now(),
		Participants: participants,
	}
	pairKey, isPair := conversation.PairKeyOf(participants)
	if isPair {
		c.PairKey = sql.NullString{String: pairKey, Valid: true}
	}

	if err := s.conversations.Create(ctx, &c); err != nil {
		if !isPair || !errors.Is(err, sentinal_errors.ErrAlreadyExists) {
			return ChatView{}, false, err
		}
		existing, err := s.conversations.GetByPairKey(ctx, pairKey)
		if err != nil {
			return ChatView{}, false, err
		}
		view, err := chatView(ctx, s.directory, existing)
		return view, false, err
	}

	view, err := chatView(ctx, s.directory, c)
	return view, true, err
}

// ResolveDestination returns the chat or group a message is addressed to,
// with its participants. Exactly one of chatID and groupID must be set.
func (s *ConversationService) ResolveDestination(ctx context.Context, chatID, groupID *uuid.UUID) (conversation.Conversation, error) {
	switch {
	case chatID != nil && groupID == nil:
		return s.Get(ctx, *chatID, conversation.KindChat)
	case groupID != nil && chatID == nil:
		return s.Get(ctx, *groupID, conversation.KindGroup)
	default:
		return conversation.Conversation{}, sentinal_errors.ErrAmbiguousTarget
	}
}

// Get loads a conversation of the given kind. A conversation of the other
// kind is reported as not found.
func (s *ConversationService) Get(ctx context.Context, id uuid.UUID, kind conversation.Kind) (conversation.Conversation, error) {
	c, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if c.Kind != kind {
		return conversation.Conversation{}, sentinal_errors.ErrNotFound
	}
	return c, nil
}

func (s *ConversationService) GetChat(ctx context.Context, actorID, chatID uuid.UUID) (ChatView, error) {
	c, err := s.Get(ctx, chatID, conversation.KindChat)
	if err != nil {
		return ChatView{}, err
	}
	if err := s.access.CanViewConversation(ctx, actorID, c.ID); err != nil {
		return ChatView{}, err
	}
	return chatView(ctx, s.directory, c)
}
