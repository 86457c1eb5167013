package repository

import (
	"context"
	"database/sql"
	"errors"

	"sentinal-social/internal/domain/user"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, connected, created_at`

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES (?,?,?,?,?)
    `, u.ID.String(), u.Username, u.PasswordHash, u.Connected, toNanos(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinal_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+buildPlaceholders(len(ids))+`)`,
		uuidArgs(ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateConnected(ctx context.Context, userID uuid.UUID, connected bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET connected = ? WHERE id = ?`, connected, userID.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinal_errors.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u         user.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Connected, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, sentinal_errors.ErrNotFound
		}
		return user.User{}, err
	}
	u.CreatedAt = fromNanos(createdAt)
	return u, nil
}
