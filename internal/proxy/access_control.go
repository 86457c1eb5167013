package proxy

import (
	"context"

	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
)

// AccessControl answers whether a user may act on a conversation. Every rule
// reduces to participation: only participants post, read, mark messages read,
// join the realtime channel or manage group members.
type AccessControl struct {
	conversationRepo repository.ConversationRepository
}

func NewAccessControl(conversationRepo repository.ConversationRepository) *AccessControl {
	return &AccessControl{conversationRepo: conversationRepo}
}

func (a *AccessControl) CanSendMessage(ctx context.Context, userID, conversationID uuid.UUID) error {
	return a.ensureParticipant(ctx, conversationID, userID)
}

func (a *AccessControl) CanViewConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	return a.ensureParticipant(ctx, conversationID, userID)
}

func (a *AccessControl) CanManageGroup(ctx context.Context, userID, conversationID uuid.UUID) error {
	return a.ensureParticipant(ctx, conversationID, userID)
}

func (a *AccessControl) CanSubscribe(ctx context.Context, userID, conversationID uuid.UUID) (bool, error) {
	if a.conversationRepo == nil {
		return false, nil
	}
	return a.conversationRepo.IsParticipant(ctx, conversationID, userID)
}

func (a *AccessControl) ensureParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	if a.conversationRepo == nil {
		return sentinal_errors.ErrForbidden
	}
	ok, err := a.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return sentinal_errors.ErrNotParticipant
	}
	return nil
}
