package seed_test

import (
	"context"
	"testing"

	"sentinal-social/internal/bootstrap"
	"sentinal-social/internal/seed"
	"sentinal-social/internal/testhelpers"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	app := bootstrap.New(testhelpers.Config(), db.DB, db.Dialect(), nil, nil)
	svc := seed.Services{
		Auth:          app.Auth,
		Relationships: app.Relationships,
		Conversations: app.Conversations,
		Groups:        app.Groups,
		Messages:      app.Messages,
	}
	cfg := seed.DefaultConfig()

	req := require.New(t)
	first, err := seed.Run(ctx, svc, cfg)
	req.NoError(err)
	req.Len(first.Users, 3)
	req.Equal(3, first.Messages)

	second, err := seed.Run(ctx, svc, cfg)
	req.NoError(err)

	t.Run("users are reused", func(t *testing.T) {
		require.Equal(t, first.Users, second.Users)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
		require.Equal(t, 3, count)
	})

	t.Run("friendship and chat are reused", func(t *testing.T) {
		require.Equal(t, first.ChatID, second.ChatID)

		rels, err := app.Relationships.ListRelationships(ctx, first.Users[0].ID)
		require.NoError(t, err)
		require.Len(t, rels.Friends, 1)
		require.Equal(t, first.Users[1].ID, rels.Friends[0].ID)
		require.Empty(t, rels.FriendRequests)
	})

	t.Run("each run adds a group and its messages", func(t *testing.T) {
		require.NotEqual(t, first.GroupID, second.GroupID)

		msgs, err := app.Messages.ListMessages(ctx, first.Users[0].ID, first.ChatID)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
	})

	t.Run("too few users", func(t *testing.T) {
		_, err := seed.Run(ctx, svc, seed.Config{Usernames: []string{"solo"}, Password: "password123", GroupName: "g"})
		require.Error(t, err)
	})
}
