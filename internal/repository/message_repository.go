package repository

import (
	"context"
	"database/sql"
	"errors"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/domain/message"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/google/uuid"
)

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

const messageSelect = `
        SELECT m.id, m.conversation_id, c.kind, m.sender_id, m.content, m.is_read, m.seq, m.created_at
        FROM messages m
        JOIN conversations c ON c.id = m.conversation_id`

func (r *messageRepository) CreateAndAppend(ctx context.Context, m *message.Message) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		var seq int64
		err := tx.QueryRowContext(ctx, `
            UPDATE conversations SET last_seq = last_seq + 1
            WHERE id = ?
            RETURNING last_seq
        `, m.ConversationID.String()).Scan(&seq)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinal_errors.ErrNotFound
			}
			return err
		}

		// created_at is strictly increasing within a conversation even when
		// the wall clock is not.
		var prev sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(created_at) FROM messages WHERE conversation_id = ?`,
			m.ConversationID.String(),
		).Scan(&prev); err != nil {
			return err
		}
		createdAt := toNanos(m.CreatedAt)
		if prev.Valid && createdAt <= prev.Int64 {
			createdAt = prev.Int64 + 1
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO messages (id, conversation_id, sender_id, content, is_read, seq, created_at)
            VALUES (?,?,?,?,?,?,?)
        `,
			m.ID.String(),
			m.ConversationID.String(),
			m.SenderID.String(),
			m.Content,
			m.IsRead,
			seq,
			createdAt,
		); err != nil {
			return err
		}

		m.Seq = seq
		m.CreatedAt = fromNanos(createdAt)
		return nil
	})
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	row := r.db.QueryRowContext(ctx, messageSelect+` WHERE m.id = ?`, id.String())
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, sentinal_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *messageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, messageSelect+`
        WHERE m.conversation_id = ?
        ORDER BY m.seq ASC
    `, conversationID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []message.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) UpdateReadStatus(ctx context.Context, id uuid.UUID, isRead bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = ? WHERE id = ?`, isRead, id.String())
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

func scanMessage(row rowScanner) (message.Message, error) {
	var (
		m         message.Message
		kind      string
		createdAt int64
	)
	if err := row.Scan(&m.ID, &m.ConversationID, &kind, &m.SenderID, &m.Content, &m.IsRead, &m.Seq, &createdAt); err != nil {
		return message.Message{}, err
	}
	m.ConversationKind = conversation.Kind(kind)
	m.CreatedAt = fromNanos(createdAt)
	return m, nil
}
