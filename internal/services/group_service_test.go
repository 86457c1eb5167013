package services_test

import (
	"context"
	"testing"

	"sentinal-social/internal/services"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGroupService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	dave := f.user(t, "dave")

	group, err := f.groups.CreateGroup(ctx, alice.ID, services.CreateGroupInput{
		Name:         "climbers",
		Participants: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)

	participantIDs := func(t *testing.T) []uuid.UUID {
		t.Helper()
		g, err := f.groups.GetGroup(ctx, alice.ID, group.ID)
		require.NoError(t, err)
		return identityIDs(g.Participants)
	}

	t.Run("creator is a participant", func(t *testing.T) {
		req := require.New(t)
		req.Equal("climbers", group.Name)
		req.ElementsMatch([]uuid.UUID{alice.ID, bob.ID}, identityIDs(group.Participants))

		ids, err := f.groups.UserGroups(ctx, bob.ID)
		req.NoError(err)
		req.Equal([]uuid.UUID{group.ID}, ids)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := f.groups.CreateGroup(ctx, alice.ID, services.CreateGroupInput{Name: "  "})
		require.ErrorIs(t, err, sentinal_errors.ErrInvalidInput)
	})

	t.Run("non participant cannot add or remove", func(t *testing.T) {
		req := require.New(t)
		before := participantIDs(t)

		_, err := f.groups.AddGroupMember(ctx, carol.ID, group.ID, dave.ID)
		req.ErrorIs(err, sentinal_errors.ErrForbidden)
		_, err = f.groups.RemoveGroupMember(ctx, carol.ID, group.ID, bob.ID)
		req.ErrorIs(err, sentinal_errors.ErrForbidden)

		req.ElementsMatch(before, participantIDs(t))
	})

	t.Run("participant adds a member", func(t *testing.T) {
		req := require.New(t)
		g, err := f.groups.AddGroupMember(ctx, bob.ID, group.ID, carol.ID)
		req.NoError(err)
		req.Contains(identityIDs(g.Participants), carol.ID)

		_, err = f.groups.AddGroupMember(ctx, bob.ID, group.ID, carol.ID)
		req.ErrorIs(err, sentinal_errors.ErrConflict)

		_, err = f.groups.AddGroupMember(ctx, bob.ID, group.ID, uuid.New())
		req.ErrorIs(err, sentinal_errors.ErrInvalidInput)
	})

	t.Run("participant removes a member", func(t *testing.T) {
		req := require.New(t)
		g, err := f.groups.RemoveGroupMember(ctx, alice.ID, group.ID, carol.ID)
		req.NoError(err)
		req.NotContains(identityIDs(g.Participants), carol.ID)

		_, err = f.groups.RemoveGroupMember(ctx, alice.ID, group.ID, carol.ID)
		req.ErrorIs(err, sentinal_errors.ErrConflict)

		ids, err := f.groups.UserGroups(ctx, carol.ID)
		req.NoError(err)
		req.Empty(ids)

		req.Equal([]revocation{{conversationID: group.ID.String(), userID: carol.ID}}, f.broadcaster.revocations())
	})

	t.Run("failed removals revoke nothing", func(t *testing.T) {
		before := f.broadcaster.revocations()
		_, err := f.groups.RemoveGroupMember(ctx, alice.ID, group.ID, dave.ID)
		require.Error(t, err)
		require.Equal(t, before, f.broadcaster.revocations())
	})

	t.Run("nobody removes themselves", func(t *testing.T) {
		_, err := f.groups.RemoveGroupMember(ctx, alice.ID, group.ID, alice.ID)
		require.ErrorIs(t, err, sentinal_errors.ErrForbidden)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := f.groups.AddGroupMember(ctx, alice.ID, uuid.New(), dave.ID)
		require.ErrorIs(t, err, sentinal_errors.ErrNotFound)
	})

	t.Run("chat ids are not groups", func(t *testing.T) {
		chat, _, err := f.conversations.CreateChat(ctx, alice.ID, []uuid.UUID{alice.ID, bob.ID})
		require.NoError(t, err)
		_, err = f.groups.AddGroupMember(ctx, alice.ID, chat.ID, dave.ID)
		require.ErrorIs(t, err, sentinal_errors.ErrNotFound)
	})
}

func TestGroupService_RevokeFailureKeepsRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	group, err := f.groups.CreateGroup(ctx, alice.ID, services.CreateGroupInput{
		Name:         "climbers",
		Participants: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)

	f.broadcaster.fail(errBroadcast)
	g, err := f.groups.RemoveGroupMember(ctx, alice.ID, group.ID, bob.ID)
	require.NoError(t, err)
	require.NotContains(t, identityIDs(g.Participants), bob.ID)
}
