package services

import (
	"context"
	"errors"

	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Directory resolves users by id or username. It holds no business rules
// beyond existence checks.
type Directory struct {
	users repository.UserRepository
}

func NewDirectory(users repository.UserRepository) *Directory {
	return &Directory{users: users}
}

func (d *Directory) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return d.users.GetUserByID(ctx, id)
}

func (d *Directory) GetByUsername(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, sentinal_errors.ErrInvalidInput
	}
	return d.users.GetUserByUsername(ctx, username)
}

func (d *Directory) Identity(ctx context.Context, id uuid.UUID) (user.Identity, error) {
	u, err := d.users.GetUserByID(ctx, id)
	if err != nil {
		return user.Identity{}, err
	}
	return u.Identity(), nil
}

// Identities resolves ids in order. Ids without a user record are skipped.
func (d *Directory) Identities(ctx context.Context, ids []uuid.UUID) ([]user.Identity, error) {
	if len(ids) == 0 {
		return []user.Identity{}, nil
	}
	users, err := d.users.GetUsersByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(users, func(u user.User) uuid.UUID { return u.ID })

	identities := make([]user.Identity, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			identities = append(identities, u.Identity())
		}
	}
	return identities, nil
}

// IdentityMap resolves ids to identities keyed by id.
func (d *Directory) IdentityMap(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Identity, error) {
	identities, err := d.Identities(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.KeyBy(identities, func(i user.Identity) uuid.UUID { return i.ID }), nil
}

// EnsureExist fails with ErrUnknownParticipant when any id has no user.
func (d *Directory) EnsureExist(ctx context.Context, ids []uuid.UUID) error {
	unique := lo.Uniq(ids)
	users, err := d.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return err
	}
	if len(users) != len(unique) {
		return sentinal_errors.ErrUnknownParticipant
	}
	return nil
}

func (d *Directory) SetConnected(ctx context.Context, id uuid.UUID, connected bool) error {
	err := d.users.UpdateConnected(ctx, id, connected)
	if errors.Is(err, sentinal_errors.ErrNotFound) {
		return nil
	}
	return err
}
