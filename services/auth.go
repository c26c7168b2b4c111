package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avanzatech/blog/authz"
	"github.com/avanzatech/blog/blog"
)

// Session errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const sessionKeyPrefix = "session:"

// AuthService issues and validates bearer tokens. Tokens are HS256 JWTs
// carrying a session ID; the session ID is also stored in Redis so logout
// revokes a token before its expiry.
type AuthService struct {
	users      *UserService
	redis      *redis.Client
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(users *UserService, redisClient *redis.Client, jwtSecret string, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		redis:      redisClient,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// LoginInput represents login credentials
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (token string, user *User, err error) {
	user, err = s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.CheckPassword(input.Password) {
		return "", nil, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKeyPrefix+sessionID, user.ID, s.sessionTTL).Err(); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}
	return token, user, nil
}

// Logout revokes the session carried by the token. Revoking an already
// expired token is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+claims.SessionID).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token into the request identity. The token
// must verify, the session must still exist in Redis, and the user row is
// re-read so team changes and admin grants apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (authz.Identity, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return authz.Anonymous(), ErrInvalidToken
	}

	storedUserID, err := s.redis.Get(ctx, sessionKeyPrefix+claims.SessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return authz.Anonymous(), ErrInvalidToken
		}
		return authz.Anonymous(), fmt.Errorf("failed to check session: %w", err)
	}
	if storedUserID != claims.Subject {
		return authz.Anonymous(), ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return authz.Anonymous(), ErrInvalidToken
		}
		return authz.Anonymous(), err
	}
	return authz.Identity{
		Authenticated: true,
		Admin:         user.IsAdmin,
		UserID:        user.ID,
		TeamID:        user.TeamID,
	}, nil
}

func (s *AuthService) parseToken(tokenString string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
