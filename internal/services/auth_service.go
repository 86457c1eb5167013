package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentinal-social/config"
	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: cfg.AccessTTL(),
		now:       time.Now,
	}
}

type RegisterInput struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expiresIn"`
	User      user.Identity `json:"user"`
}

type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		return AuthResponse{}, fmt.Errorf("%s: %w", err.Error(), sentinal_errors.ErrInvalidInput)
	}

	if _, err := s.userRepo.GetUserByUsername(ctx, in.Username); err == nil {
		return AuthResponse{}, sentinal_errors.ErrUsernameTaken
	} else if !errors.Is(err, sentinal_errors.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, sentinal_errors.ErrAlreadyExists) {
			return AuthResponse{}, sentinal_errors.ErrUsernameTaken
		}
		return AuthResponse{}, err
	}

	return s.issue(*u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if err := validate.Struct(in); err != nil {
		return AuthResponse{}, sentinal_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, sentinal_errors.ErrNotFound) {
			return AuthResponse{}, sentinal_errors.ErrInvalidCredentials
		}
		return AuthResponse{}, err
	}
	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, sentinal_errors.ErrInvalidCredentials
	}

	return s.issue(u)
}

// CurrentUserID validates token and returns the user it was issued to.
func (s *AuthService) CurrentUserID(token string) (uuid.UUID, error) {
	claims, err := s.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, sentinal_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, sentinal_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, sentinal_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, sentinal_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, sentinal_errors.ErrUnauthorized
	}

	return *claims, nil
}

func (s *AuthService) issue(u user.User) (AuthResponse, error) {
	token, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, ExpiresIn: expiresIn, User: u.Identity()}, nil
}

func (s *AuthService) newAccessToken(userID uuid.UUID) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
