package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/proxy"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"
	"sentinal-social/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ChannelRevoker ends a user's live subscriptions to a conversation's
// channel on every instance.
type ChannelRevoker interface {
	RevokeChannel(ctx context.Context, conversationID string, userID uuid.UUID) error
}

// GroupService manages group membership. Only current participants may add
// or remove members, and nobody removes themselves through it.
type GroupService struct {
	directory     *Directory
	conversations repository.ConversationRepository
	access        *proxy.AccessControl
	revoker       ChannelRevoker
	log           *logger.Logger
	now           func() time.Time
}

// NewGroupService builds the service. revoker may be nil when nothing holds
// live subscriptions.
func NewGroupService(
	directory *Directory,
	conversations repository.ConversationRepository,
	access *proxy.AccessControl,
	revoker ChannelRevoker,
	log *logger.Logger,
) *GroupService {
	if log == nil {
		log = logger.Nop()
	}
	return &GroupService{
		directory:     directory,
		conversations: conversations,
		access:        access,
		revoker:       revoker,
		log:           log,
		now:           time.Now,
	}
}

type CreateGroupInput struct {
	Name         string
	Participants []uuid.UUID
}

// CreateGroup creates a group. The creator is always a participant.
func (s *GroupService) CreateGroup(ctx context.Context, actorID uuid.UUID, in CreateGroupInput) (GroupView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return GroupView{}, sentinal_errors.ErrInvalidInput
	}

	participants := lo.Uniq(append([]uuid.UUID{actorID}, in.Participants...))
	if err := s.directory.EnsureExist(ctx, participants); err != nil {
		return GroupView{}, err
	}

	g := conversation.Conversation{
		ID:           uuid.New(),
		Kind:         conversation.KindGroup,
		Name:         name,
		CreatedBy:    actorID,
		CreatedAt:    s.now(),
		Participants: participants,
	}
	if err := s.conversations.Create(ctx, &g); err != nil {
		return GroupView{}, err
	}
	return groupView(ctx, s.directory, g)
}

func (s *GroupService) GetGroup(ctx context.Context, actorID, groupID uuid.UUID) (GroupView, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	if err := s.access.CanViewConversation(ctx, actorID, g.ID); err != nil {
		return GroupView{}, err
	}
	return groupView(ctx, s.directory, g)
}

func (s *GroupService) AddGroupMember(ctx context.Context, actorID, groupID, userID uuid.UUID) (GroupView, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	if err := s.access.CanManageGroup(ctx, actorID, g.ID); err != nil {
		return GroupView{}, err
	}
	if g.HasParticipant(userID) {
		return GroupView{}, sentinal_errors.ErrAlreadyMember
	}
	if err := s.directory.EnsureExist(ctx, []uuid.UUID{userID}); err != nil {
		return GroupView{}, err
	}

	err = s.conversations.AddParticipant(ctx, &conversation.Participant{
		ConversationID: g.ID,
		UserID:         userID,
		JoinedAt:       s.now(),
	})
	if err != nil {
		if errors.Is(err, sentinal_errors.ErrAlreadyExists) {
			return GroupView{}, sentinal_errors.ErrAlreadyMember
		}
		return GroupView{}, err
	}
	return s.reload(ctx, g.ID)
}

func (s *GroupService) RemoveGroupMember(ctx context.Context, actorID, groupID, userID uuid.UUID) (GroupView, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	if err := s.access.CanManageGroup(ctx, actorID, g.ID); err != nil {
		return GroupView{}, err
	}
	if userID == actorID {
		return GroupView{}, sentinal_errors.ErrSelfRemoval
	}
	if !g.HasParticipant(userID) {
		return GroupView{}, sentinal_errors.ErrNotMember
	}

	if err := s.conversations.RemoveParticipant(ctx, g.ID, userID); err != nil {
		if errors.Is(err, sentinal_errors.ErrNotFound) {
			return GroupView{}, sentinal_errors.ErrNotMember
		}
		return GroupView{}, err
	}
	s.revoke(ctx, g.ID, userID)
	return s.reload(ctx, g.ID)
}

// revoke cuts a removed member off the group's live channel. Membership is
// already gone, so a failure is logged rather than returned.
func (s *GroupService) revoke(ctx context.Context, groupID, userID uuid.UUID) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeChannel(ctx, groupID.String(), userID); err != nil {
		s.log.Warn(ctx, "channel revoke failed",
			zap.String("group_id", groupID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

// UserGroups returns the ids of the groups userID belongs to.
func (s *GroupService) UserGroups(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.conversations.GetUserConversationIDs(ctx, userID, conversation.KindGroup)
}

func (s *GroupService) getGroup(ctx context.Context, groupID uuid.UUID) (conversation.Conversation, error) {
	g, err := s.conversations.GetByID(ctx, groupID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !g.IsGroup() {
		return conversation.Conversation{}, sentinal_errors.ErrNotFound
	}
	return g, nil
}

func (s *GroupService) reload(ctx context.Context, groupID uuid.UUID) (GroupView, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	return groupView(ctx, s.directory, g)
}
