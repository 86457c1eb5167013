// Package testhelpers provides a real SQLite store and fixtures for tests.
package testhelpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sentinal-social/config"
	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/repository"
	"sentinal-social/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB opens a fresh store under t.TempDir with the schema applied.
func NewSQLiteDB(t *testing.T) *repository.DB {
	t.Helper()

	sqlDB, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := repository.NewDB(sqlDB, database.SQLite)
	require.NoError(t, repository.InitSchema(context.Background(), db))
	return db
}

// CreateUser inserts a user directly, bypassing password hashing.
func CreateUser(t *testing.T, db *repository.DB, username string) user.User {
	t.Helper()

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &u))
	return u
}

// Config returns a configuration suitable for in-process tests.
func Config() *config.Config {
	return &config.Config{
		AppPort:            "0",
		AppMode:            "test",
		DBDriver:           "sqlite",
		JWTSecret:          "test-secret",
		JWTExpiryMin:       5,
		RateLimitMessages:  60,
		RateLimitWindowSec: 60,
	}
}
