package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		unset(t, "APP_PORT", "APP_MODE", "DB_DRIVER", "JWT_EXPIRY_MIN", "RATE_LIMIT_WINDOW_SEC", "RATE_LIMIT_AUTH")
		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, "8080", cfg.AppPort)
		require.Equal(t, "postgres", cfg.DBDriver)
		require.Equal(t, time.Hour, cfg.AccessTTL())
		require.Equal(t, time.Minute, cfg.RateLimitWindow())
		require.Equal(t, 5, cfg.RateLimitAuth)
		require.Equal(t, time.Minute, cfg.RateLimitAuthWindow())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("SQLITE_PATH", "/tmp/x.db")
		t.Setenv("JWT_EXPIRY_MIN", "15")
		t.Setenv("REDIS_ENABLED", "true")
		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, "sqlite", cfg.DBDriver)
		require.Equal(t, "/tmp/x.db", cfg.SQLitePath)
		require.Equal(t, 15*time.Minute, cfg.AccessTTL())
		require.True(t, cfg.RedisEnabled)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Process()
		require.Error(t, err)
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("JWT_EXPIRY_MIN", "soon")
		_, err := Process()
		require.Error(t, err)
	})
}

func TestProcessReleaseSecret(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("APP_MODE", "release")

	t.Run("default secret is refused", func(t *testing.T) {
		unset(t, "JWT_SECRET")
		_, err := Process()
		require.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("explicit default is refused", func(t *testing.T) {
		t.Setenv("JWT_SECRET", DefaultJWTSecret)
		_, err := Process()
		require.Error(t, err)
	})

	t.Run("real secret is accepted", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cr3t-from-vault")
		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, "release", cfg.AppMode)
	})

	t.Run("debug mode keeps the default", func(t *testing.T) {
		t.Setenv("APP_MODE", "debug")
		unset(t, "JWT_SECRET")
		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433"}
	require.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}

// unset clears keys for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
