package repository

import (
	"context"
	"time"

	"sentinal-social/internal/domain/user"

	"github.com/google/uuid"
)

type relationshipRepository struct {
	db DBTX
}

func NewRelationshipRepository(db DBTX) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// AddFriendRequest stores a pending request. It reports false when the same
// request was already pending.
func (r *relationshipRepository) AddFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO friend_requests (recipient_id, sender_id, requested_at)
        VALUES (?,?,?)
        ON CONFLICT (recipient_id, sender_id) DO NOTHING
    `, recipientID.String(), senderID.String(), toNanos(at))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *relationshipRepository) HasFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) (bool, error) {
	return exists(ctx, r.db,
		`SELECT 1 FROM friend_requests WHERE recipient_id = ? AND sender_id = ?`,
		recipientID.String(), senderID.String())
}

func (r *relationshipRepository) GetFriendRequests(ctx context.Context, recipientID uuid.UUID) ([]user.FriendRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT recipient_id, sender_id, requested_at
        FROM friend_requests
        WHERE recipient_id = ?
        ORDER BY requested_at ASC, sender_id ASC
    `, recipientID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []user.FriendRequest
	for rows.Next() {
		var (
			fr user.FriendRequest
			at int64
		)
		if err := rows.Scan(&fr.RecipientID, &fr.SenderID, &at); err != nil {
			return nil, err
		}
		fr.RequestedAt = fromNanos(at)
		requests = append(requests, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *relationshipRepository) DeleteFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE recipient_id = ? AND sender_id = ?`,
		recipientID.String(), senderID.String())
	return err
}

func (r *relationshipRepository) AcceptFriendRequest(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `
            DELETE FROM friend_requests
            WHERE (recipient_id = ? AND sender_id = ?) OR (recipient_id = ? AND sender_id = ?)
        `, recipientID.String(), senderID.String(), senderID.String(), recipientID.String()); err != nil {
			return err
		}
		return insertFriendship(ctx, tx, recipientID, senderID, at)
	})
}

func insertFriendship(ctx context.Context, tx DBTX, a, b uuid.UUID, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO friendships (user_id, friend_id, created_at)
        VALUES (?,?,?), (?,?,?)
        ON CONFLICT (user_id, friend_id) DO NOTHING
    `, a.String(), b.String(), toNanos(at), b.String(), a.String(), toNanos(at))
	return err
}

// RemoveFriendship deletes both directions. Removing a non-existent
// friendship is not an error.
func (r *relationshipRepository) RemoveFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, `
            DELETE FROM friendships
            WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
        `, userID.String(), friendID.String(), friendID.String(), userID.String())
		return err
	})
}

func (r *relationshipRepository) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	return exists(ctx, r.db,
		`SELECT 1 FROM friendships WHERE user_id = ? AND friend_id = ?`,
		userID.String(), friendID.String())
}

func (r *relationshipRepository) GetFriends(ctx context.Context, userID uuid.UUID) ([]user.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, friend_id, created_at
        FROM friendships
        WHERE user_id = ?
        ORDER BY created_at ASC, friend_id ASC
    `, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []user.Friendship
	for rows.Next() {
		var (
			f  user.Friendship
			at int64
		)
		if err := rows.Scan(&f.UserID, &f.FriendID, &at); err != nil {
			return nil, err
		}
		f.CreatedAt = fromNanos(at)
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return friends, nil
}

func exists(ctx context.Context, db DBTX, query string, args ...interface{}) (bool, error) {
	rows, err := db.QueryContext(ctx, query+` LIMIT 1`, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}
