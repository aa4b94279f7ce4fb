package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	repo "github.com/oksasatya/prison-staff-admin/internal/domain/repository"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

const defaultSessionTTL = 24 * time.Hour

// AuthService logs operators in and keeps their session in Redis.
type AuthService struct {
	Users      repo.UserRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Logger     *logrus.Logger
	SessionTTL time.Duration
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{Users: users, JWT: jwt, Redis: rdb, Logger: logger, SessionTTL: sessionTTL}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Authenticate checks a username or email against its password. Inactive users cannot log in.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*entity.User, error) {
	u, err := s.Users.GetByLogin(ctx, login)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.State || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		pipe := s.Redis.TxPipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"name":       u.FullName(),
			"role":       u.RoleName,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			if s.Logger != nil {
				s.Logger.WithError(rErr).WithField("key", key).Error("store session failed")
			}
			return TokenPair{}, rErr
		}
	}
	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		accountStats.Add(statLoginFailed, 1)
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	accountStats.Add(statLoginSucceeded, 1)
	return &LoginResponse{UserID: u.ID, Username: u.Username, Email: u.Email, Name: u.FullName(), Role: u.RoleName}, pair, nil
}

// Refresh rotates the session id of a still valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil || !u.State {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	key := helpers.SessionKey(u.ID)
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, key, "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}

	sid := uuid.NewString()
	pair, err := s.tokens(u, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		pipe := s.Redis.TxPipeline()
		pipe.HSet(ctx, key, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			return TokenPair{}, "", rErr
		}
	}
	return pair, u.ID, nil
}

// Logout ends the session of userID.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Revoke(ctx, userID)
}

// Revoke deletes the Redis session of userID; a missing session is not an error.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	if err := s.Redis.Del(ctx, helpers.SessionKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Profile returns the user behind an authenticated actor.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) tokens(u *entity.User, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.RoleName, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.RoleName, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
