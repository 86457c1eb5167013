package services

import (
	"context"
	"time"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ChatFinder locates the direct chat of a pair of users without creating it.
type ChatFinder interface {
	FindDirectChat(ctx context.Context, a, b uuid.UUID) (conversation.Conversation, bool, error)
}

// RelationshipService owns the friendship state machine. A request is pending
// on the recipient until accepted or rejected; acceptance links both users.
type RelationshipService struct {
	directory *Directory
	graph     repository.RelationshipRepository
	chats     ChatFinder
	now       func() time.Time
}

func NewRelationshipService(directory *Directory, graph repository.RelationshipRepository, chats ChatFinder) *RelationshipService {
	return &RelationshipService{
		directory: directory,
		graph:     graph,
		chats:     chats,
		now:       time.Now,
	}
}

// SendFriendRequest leaves a pending request from actor on the target.
// Repeating a pending request is a no-op.
func (s *RelationshipService) SendFriendRequest(ctx context.Context, actorID uuid.UUID, targetUsername string) (user.Identity, error) {
	target, err := s.directory.GetByUsername(ctx, targetUsername)
	if err != nil {
		return user.Identity{}, err
	}
	if target.ID == actorID {
		return user.Identity{}, sentinal_errors.ErrSelfFriendRequest
	}

	friends, err := s.graph.AreFriends(ctx, actorID, target.ID)
	if err != nil {
		return user.Identity{}, err
	}
	if friends {
		return user.Identity{}, sentinal_errors.ErrAlreadyFriends
	}

	if _, err := s.graph.AddFriendRequest(ctx, target.ID, actorID, s.now()); err != nil {
		return user.Identity{}, err
	}
	return target.Identity(), nil
}

// RemoveFriend unlinks actor and target in both directions. It succeeds
// whether or not they were friends.
func (s *RelationshipService) RemoveFriend(ctx context.Context, actorID uuid.UUID, targetUsername string) (user.Identity, error) {
	target, err := s.directory.GetByUsername(ctx, targetUsername)
	if err != nil {
		return user.Identity{}, err
	}
	if err := s.graph.RemoveFriendship(ctx, actorID, target.ID); err != nil {
		return user.Identity{}, err
	}
	return target.Identity(), nil
}

// AcceptFriendRequest requires a pending request from target to actor.
func (s *RelationshipService) AcceptFriendRequest(ctx context.Context, actorID uuid.UUID, targetUsername string) (user.Identity, error) {
	target, err := s.directory.GetByUsername(ctx, targetUsername)
	if err != nil {
		return user.Identity{}, err
	}

	pending, err := s.graph.HasFriendRequest(ctx, actorID, target.ID)
	if err != nil {
		return user.Identity{}, err
	}
	if !pending {
		return user.Identity{}, sentinal_errors.ErrNoPendingRequest
	}

	if err := s.graph.AcceptFriendRequest(ctx, actorID, target.ID, s.now()); err != nil {
		return user.Identity{}, err
	}
	return target.Identity(), nil
}

// RejectFriendRequest drops any pending request from target to actor.
func (s *RelationshipService) RejectFriendRequest(ctx context.Context, actorID uuid.UUID, targetUsername string) (user.Identity, error) {
	target, err := s.directory.GetByUsername(ctx, targetUsername)
	if err != nil {
		return user.Identity{}, err
	}
	if err := s.graph.DeleteFriendRequest(ctx, actorID, target.ID); err != nil {
		return user.Identity{}, err
	}
	return target.Identity(), nil
}

func (s *RelationshipService) ListRelationships(ctx context.Context, actorID uuid.UUID) (Relationships, error) {
	if _, err := s.directory.GetByID(ctx, actorID); err != nil {
		return Relationships{}, err
	}

	friendships, err := s.graph.GetFriends(ctx, actorID)
	if err != nil {
		return Relationships{}, err
	}
	requests, err := s.graph.GetFriendRequests(ctx, actorID)
	if err != nil {
		return Relationships{}, err
	}

	friendIdentities, err := s.directory.Identities(ctx, lo.Map(friendships, func(f user.Friendship, _ int) uuid.UUID {
		return f.FriendID
	}))
	if err != nil {
		return Relationships{}, err
	}
	requestIdentities, err := s.directory.Identities(ctx, lo.Map(requests, func(r user.FriendRequest, _ int) uuid.UUID {
		return r.SenderID
	}))
	if err != nil {
		return Relationships{}, err
	}

	friends := make([]Friend, 0, len(friendIdentities))
	for _, identity := range friendIdentities {
		friend := Friend{Identity: identity}
		if s.chats != nil {
			chat, ok, err := s.chats.FindDirectChat(ctx, actorID, identity.ID)
			if err != nil {
				return Relationships{}, err
			}
			if ok {
				chatID := chat.ID
				friend.Chat = &chatID
			}
		}
		friends = append(friends, friend)
	}

	return Relationships{Friends: friends, FriendRequests: requestIdentities}, nil
}
