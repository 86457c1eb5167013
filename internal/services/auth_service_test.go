package services_test

import (
	"context"
	"testing"
	"time"

	"sentinal-social/internal/repository"
	"sentinal-social/internal/services"
	"sentinal-social/internal/testhelpers"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	cfg := testhelpers.Config()
	svc := services.NewAuthService(repository.NewUserRepository(db), cfg)
	ctx := context.Background()

	t.Run("register issues a token for the new user", func(t *testing.T) {
		req := require.New(t)
		res, err := svc.Register(ctx, services.RegisterInput{Username: "alice", Password: "password123"})
		req.NoError(err)
		req.NotEmpty(res.Token)
		req.Equal("alice", res.User.Username)
		req.Equal(int64(cfg.AccessTTL().Seconds()), res.ExpiresIn)

		userID, err := svc.CurrentUserID(res.Token)
		req.NoError(err)
		req.Equal(res.User.ID, userID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, services.RegisterInput{Username: "alice", Password: "password123"})
		require.ErrorIs(t, err, sentinal_errors.ErrAlreadyExists)
	})

	t.Run("validation", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Register(ctx, services.RegisterInput{Username: "al", Password: "password123"})
		req.ErrorIs(err, sentinal_errors.ErrInvalidInput)
		_, err = svc.Register(ctx, services.RegisterInput{Username: "bob", Password: "short"})
		req.ErrorIs(err, sentinal_errors.ErrInvalidInput)
		_, err = svc.Register(ctx, services.RegisterInput{Username: "bob!", Password: "password123"})
		req.ErrorIs(err, sentinal_errors.ErrInvalidInput)
	})

	t.Run("login", func(t *testing.T) {
		req := require.New(t)
		res, err := svc.Login(ctx, services.LoginInput{Username: "alice", Password: "password123"})
		req.NoError(err)
		req.NotEmpty(res.Token)

		_, err = svc.Login(ctx, services.LoginInput{Username: "alice", Password: "wrong-password"})
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)
		_, err = svc.Login(ctx, services.LoginInput{Username: "nobody", Password: "password123"})
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)
	})

	t.Run("rejects tampered, foreign and expired tokens", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.CurrentUserID("")
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)
		_, err = svc.CurrentUserID("not.a.jwt")
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)

		claims := services.AccessClaims{
			UserID: "c0ffee00-0000-0000-0000-000000000000",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		req.NoError(err)
		_, err = svc.CurrentUserID(foreign)
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)

		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		req.NoError(err)
		_, err = svc.CurrentUserID(expired)
		req.ErrorIs(err, sentinal_errors.ErrUnauthorized)
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		sentinal_errors.ErrAmbiguousTarget:    400,
		sentinal_errors.ErrInvalidCredentials: 401,
		sentinal_errors.ErrNotParticipant:     403,
		sentinal_errors.ErrNoPendingRequest:   404,
		sentinal_errors.ErrAlreadyFriends:     409,
		sentinal_errors.ErrUsernameTaken:      409,
		sentinal_errors.ErrRateLimited:        429,
		context.Canceled:                      500,
	}
	for err, status := range cases {
		require.Equal(t, status, services.HTTPStatus(err), err.Error())
	}
	require.Equal(t, "INTERNAL_ERROR", services.ErrorCode(context.DeadlineExceeded))
}
