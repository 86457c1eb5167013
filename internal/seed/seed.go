// Package seed fills a development store with a few users, a friendship,
// a chat and a group, going through the services so every rule applies.
package seed

import (
	"context"
	"errors"
	"fmt"

	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/services"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Config holds configuration for seeding the database
type Config struct {
	Usernames []string
	Password  string
	GroupName string
}

// DefaultConfig returns default seed configuration
func DefaultConfig() Config {
	return Config{
		Usernames: []string{"alice", "bob", "carol"},
		Password:  "password123",
		GroupName: "general",
	}
}

// Result holds the result of the seeding operation
type Result struct {
	Users    []user.Identity
	ChatID   uuid.UUID
	GroupID  uuid.UUID
	Messages int
}

type Services struct {
	Auth          *services.AuthService
	Relationships *services.RelationshipService
	Conversations *services.ConversationService
	Groups        *services.GroupService
	Messages      *services.MessageService
}

// Run seeds through svc. Users that already exist are logged in instead, so
// running it twice only adds a new group and messages.
func Run(ctx context.Context, svc Services, cfg Config) (*Result, error) {
	if len(cfg.Usernames) < 2 {
		return nil, fmt.Errorf("at least two users are required")
	}

	result := &Result{}
	for _, name := range cfg.Usernames {
		identity, err := ensureUser(ctx, svc.Auth, name, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", name, err)
		}
		result.Users = append(result.Users, identity)
	}

	first, second := result.Users[0], result.Users[1]
	if err := befriend(ctx, svc.Relationships, first, second); err != nil {
		return nil, err
	}

	chat, _, err := svc.Conversations.CreateChat(ctx, first.ID, []uuid.UUID{first.ID, second.ID})
	if err != nil {
		return nil, fmt.Errorf("seed chat: %w", err)
	}
	result.ChatID = chat.ID

	group, err := svc.Groups.CreateGroup(ctx, first.ID, services.CreateGroupInput{
		Name: cfg.GroupName,
		Participants: lo.Map(result.Users, func(u user.Identity, _ int) uuid.UUID {
			return u.ID
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("seed group: %w", err)
	}
	result.GroupID = group.ID

	posts := []struct {
		sender user.Identity
		input  services.PostMessageInput
	}{
		{first, services.PostMessageInput{Content: "hi " + second.Username, Chat: &chat.ID}},
		{second, services.PostMessageInput{Content: "hey " + first.Username, Chat: &chat.ID}},
		{first, services.PostMessageInput{Content: "welcome to " + group.Name, Group: &group.ID}},
	}
	for _, p := range posts {
		if _, err := svc.Messages.PostMessage(ctx, p.sender.ID, p.input); err != nil {
			return nil, fmt.Errorf("seed message: %w", err)
		}
		result.Messages++
	}

	return result, nil
}

func ensureUser(ctx context.Context, auth *services.AuthService, username, password string) (user.Identity, error) {
	res, err := auth.Register(ctx, services.RegisterInput{Username: username, Password: password})
	if errors.Is(err, sentinal_errors.ErrAlreadyExists) {
		res, err = auth.Login(ctx, services.LoginInput{Username: username, Password: password})
	}
	if err != nil {
		return user.Identity{}, err
	}
	return res.User, nil
}

func befriend(ctx context.Context, rel *services.RelationshipService, a, b user.Identity) error {
	_, err := rel.SendFriendRequest(ctx, a.ID, b.Username)
	if errors.Is(err, sentinal_errors.ErrAlreadyFriends) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed friend request: %w", err)
	}
	if _, err := rel.AcceptFriendRequest(ctx, b.ID, a.Username); err != nil {
		return fmt.Errorf("seed friend accept: %w", err)
	}
	return nil
}
