package repository

import (
	"context"
	"fmt"
)

// schema is shared by postgres and sqlite: ids are TEXT and timestamps are
// unix nanoseconds so both dialects read them back the same way.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		connected     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id    TEXT NOT NULL REFERENCES users(id),
		friend_id  TEXT NOT NULL REFERENCES users(id),
		created_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		recipient_id TEXT NOT NULL REFERENCES users(id),
		sender_id    TEXT NOT NULL REFERENCES users(id),
		requested_at BIGINT NOT NULL,
		PRIMARY KEY (recipient_id, sender_id)
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		pair_key   TEXT UNIQUE,
		last_seq   BIGINT NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL REFERENCES users(id),
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_participants (
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		user_id         TEXT NOT NULL REFERENCES users(id),
		joined_at       BIGINT NOT NULL,
		PRIMARY KEY (conversation_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_user ON conversation_participants (user_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		sender_id       TEXT NOT NULL REFERENCES users(id),
		content         TEXT NOT NULL,
		is_read         BOOLEAN NOT NULL DEFAULT FALSE,
		seq             BIGINT NOT NULL,
		created_at      BIGINT NOT NULL,
		UNIQUE (conversation_id, seq)
	)`,
}

// InitSchema creates every table and index that does not exist yet.
func InitSchema(ctx context.Context, db DBTX) error {
	return WithTx(ctx, db, func(tx DBTX) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d failed: %w", i, err)
			}
		}
		return nil
	})
}
