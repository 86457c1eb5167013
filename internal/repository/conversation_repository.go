package repository

import (
	"context"
	"database/sql"
	"errors"

	"sentinal-social/internal/domain/conversation"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
)

type conversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) ConversationRepository {
	return &conversationRepository{db: db}
}

const conversationColumns = `id, kind, name, pair_key, last_seq, created_by, created_at`

func (r *conversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	err := WithTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO conversations (`+conversationColumns+`)
            VALUES (?,?,?,?,?,?,?)
        `,
			c.ID.String(),
			string(c.Kind),
			c.Name,
			c.PairKey,
			c.LastSeq,
			c.CreatedBy.String(),
			toNanos(c.CreatedAt),
		); err != nil {
			return err
		}
		for _, userID := range c.Participants {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
                VALUES (?,?,?)
            `, c.ID.String(), userID.String(), toNanos(c.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return sentinal_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id.String())
	return r.loadConversation(ctx, row)
}

func (r *conversationRepository) GetByPairKey(ctx context.Context, pairKey string) (conversation.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE pair_key = ?`, pairKey)
	return r.loadConversation(ctx, row)
}

func (r *conversationRepository) loadConversation(ctx context.Context, row *sql.Row) (conversation.Conversation, error) {
	var (
		c         conversation.Conversation
		kind      string
		createdAt int64
	)
	if err := row.Scan(&c.ID, &kind, &c.Name, &c.PairKey, &c.LastSeq, &c.CreatedBy, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return conversation.Conversation{}, sentinal_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	c.Kind = conversation.Kind(kind)
	c.CreatedAt = fromNanos(createdAt)

	participants, err := r.GetParticipants(ctx, c.ID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	c.Participants = participants
	return c, nil
}

func (r *conversationRepository) GetUserConversationIDs(ctx context.Context, userID uuid.UUID, kind conversation.Kind) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT c.id
        FROM conversations c
        JOIN conversation_participants p ON p.conversation_id = c.id
        WHERE p.user_id = ? AND c.kind = ?
        ORDER BY c.created_at ASC
    `, userID.String(), string(kind))
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func (r *conversationRepository) AddParticipant(ctx context.Context, p *conversation.Participant) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
        VALUES (?,?,?)
    `, p.ConversationID.String(), p.UserID.String(), toNanos(p.JoinedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinal_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *conversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM conversation_participants WHERE conversation_id = ? AND user_id = ?`,
		conversationID.String(), userID.String())
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

func (r *conversationRepository) GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id
        FROM conversation_participants
        WHERE conversation_id = ?
        ORDER BY joined_at ASC, user_id ASC
    `, conversationID.String())
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.db,
		`SELECT 1 FROM conversation_participants WHERE conversation_id = ? AND user_id = ?`,
		conversationID.String(), userID.String())
}

func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
