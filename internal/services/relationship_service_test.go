package services_test

import (
	"context"
	"testing"

	"sentinal-social/internal/domain/user"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func identityIDs(ids []user.Identity) []uuid.UUID {
	return lo.Map(ids, func(i user.Identity, _ int) uuid.UUID { return i.ID })
}

func TestRelationshipService_FriendLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	t.Run("request shows up on the recipient only", func(t *testing.T) {
		req := require.New(t)
		target, err := f.relationships.SendFriendRequest(ctx, alice.ID, "bob")
		req.NoError(err)
		req.Equal(bob.Identity(), target)

		rels, err := f.relationships.ListRelationships(ctx, bob.ID)
		req.NoError(err)
		req.Equal([]uuid.UUID{alice.ID}, identityIDs(rels.FriendRequests))

		rels, err = f.relationships.ListRelationships(ctx, alice.ID)
		req.NoError(err)
		req.Empty(rels.FriendRequests)
	})

	t.Run("repeated request is deduplicated", func(t *testing.T) {
		req := require.New(t)
		_, err := f.relationships.SendFriendRequest(ctx, alice.ID, "bob")
		req.NoError(err)

		rels, err := f.relationships.ListRelationships(ctx, bob.ID)
		req.NoError(err)
		req.Len(rels.FriendRequests, 1)
	})

	t.Run("accept is symmetric and clears the request", func(t *testing.T) {
		req := require.New(t)
		target, err := f.relationships.AcceptFriendRequest(ctx, bob.ID, "alice")
		req.NoError(err)
		req.Equal(alice.Identity(), target)

		bobRels, err := f.relationships.ListRelationships(ctx, bob.ID)
		req.NoError(err)
		req.Empty(bobRels.FriendRequests)
		req.Len(bobRels.Friends, 1)
		req.Equal(alice.ID, bobRels.Friends[0].ID)

		aliceRels, err := f.relationships.ListRelationships(ctx, alice.ID)
		req.NoError(err)
		req.Len(aliceRels.Friends, 1)
		req.Equal(bob.ID, aliceRels.Friends[0].ID)
	})

	t.Run("request to an existing friend conflicts", func(t *testing.T) {
		_, err := f.relationships.SendFriendRequest(ctx, alice.ID, "bob")
		require.ErrorIs(t, err, sentinal_errors.ErrConflict)
	})

	t.Run("friend list carries the direct chat", func(t *testing.T) {
		req := require.New(t)
		chat, _, err := f.conversations.CreateChat(ctx, alice.ID, []uuid.UUID{alice.ID, bob.ID})
		req.NoError(err)

		rels, err := f.relationships.ListRelationships(ctx, alice.ID)
		req.NoError(err)
		req.NotNil(rels.Friends[0].Chat)
		req.Equal(chat.ID, *rels.Friends[0].Chat)
	})

	t.Run("remove is symmetric and tolerant", func(t *testing.T) {
		req := require.New(t)
		_, err := f.relationships.RemoveFriend(ctx, alice.ID, "bob")
		req.NoError(err)
		_, err = f.relationships.RemoveFriend(ctx, alice.ID, "bob")
		req.NoError(err)

		for _, id := range []uuid.UUID{alice.ID, bob.ID} {
			rels, err := f.relationships.ListRelationships(ctx, id)
			req.NoError(err)
			req.Empty(rels.Friends)
		}
	})
}

func TestRelationshipService_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.user(t, "bob")

	t.Run("unknown target", func(t *testing.T) {
		req := require.New(t)
		_, err := f.relationships.SendFriendRequest(ctx, alice.ID, "ghost")
		req.ErrorIs(err, sentinal_errors.ErrNotFound)
		_, err = f.relationships.AcceptFriendRequest(ctx, alice.ID, "ghost")
		req.ErrorIs(err, sentinal_errors.ErrNotFound)
		_, err = f.relationships.RejectFriendRequest(ctx, alice.ID, "ghost")
		req.ErrorIs(err, sentinal_errors.ErrNotFound)
		_, err = f.relationships.RemoveFriend(ctx, alice.ID, "ghost")
		req.ErrorIs(err, sentinal_errors.ErrNotFound)
	})

	t.Run("befriending yourself is invalid", func(t *testing.T) {
		_, err := f.relationships.SendFriendRequest(ctx, alice.ID, "alice")
		require.ErrorIs(t, err, sentinal_errors.ErrInvalidInput)
	})

	t.Run("accept without a pending request links nobody", func(t *testing.T) {
		req := require.New(t)
		_, err := f.relationships.AcceptFriendRequest(ctx, alice.ID, "bob")
		req.ErrorIs(err, sentinal_errors.ErrNotFound)

		rels, err := f.relationships.ListRelationships(ctx, alice.ID)
		req.NoError(err)
		req.Empty(rels.Friends)
	})

	t.Run("unknown actor cannot list", func(t *testing.T) {
		_, err := f.relationships.ListRelationships(ctx, uuid.New())
		require.ErrorIs(t, err, sentinal_errors.ErrNotFound)
	})
}

func TestRelationshipService_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	req := require.New(t)

	_, err := f.relationships.SendFriendRequest(ctx, alice.ID, "bob")
	req.NoError(err)
	_, err = f.relationships.SendFriendRequest(ctx, bob.ID, "alice")
	req.NoError(err)

	target, err := f.relationships.RejectFriendRequest(ctx, bob.ID, "alice")
	req.NoError(err)
	req.Equal(alice.ID, target.ID)

	// rejecting twice is a no-op
	_, err = f.relationships.RejectFriendRequest(ctx, bob.ID, "alice")
	req.NoError(err)

	bobRels, err := f.relationships.ListRelationships(ctx, bob.ID)
	req.NoError(err)
	req.Empty(bobRels.FriendRequests)
	req.Empty(bobRels.Friends)

	// reject has no symmetric effect: bob's own request to alice stays
	aliceRels, err := f.relationships.ListRelationships(ctx, alice.ID)
	req.NoError(err)
	req.Equal([]uuid.UUID{bob.ID}, identityIDs(aliceRels.FriendRequests))
}
