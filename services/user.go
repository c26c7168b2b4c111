package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/avanzatech/blog/blog"
)

// DefaultTeamName is the team new users land in when registration does not
// name one, matching the seeded team.
const DefaultTeamName = "rookie"

// User represents an account. The password hash never leaves this package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name,omitempty"`
	Nickname     string    `json:"nickname,omitempty"`
	TeamID       string    `json:"team_id"`
	IsAdmin      bool      `json:"is_admin"`
	passwordHash string
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Team groups users for the team audience category.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserService handles registration and account lookup.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput represents input for creating an account
type RegisterInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Nickname string `json:"nickname"`
	TeamID   string `json:"team_id"`
}

// Register creates an account with a bcrypt-hashed password. An empty TeamID
// falls back to the default team.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", blog.ErrInvalidInput)
	}

	teamID := input.TeamID
	if teamID == "" {
		var err error
		teamID, err = s.defaultTeamID(ctx)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         input.Name,
		LastName:     input.LastName,
		Nickname:     input.Nickname,
		TeamID:       teamID,
		passwordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, last_name, nickname, team_id, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)
	`, user.ID, user.Email, user.passwordHash, user.Name, user.LastName, user.Nickname, user.TeamID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, fmt.Errorf("%w: email already registered", blog.ErrAlreadyExists)
			case "23503":
				return nil, fmt.Errorf("%w: team %s does not exist", blog.ErrInvalidInput, teamID)
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) defaultTeamID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM teams WHERE name = $1`, DefaultTeamName).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: default team is not seeded", blog.ErrInvalidInput)
		}
		return "", fmt.Errorf("failed to look up default team: %w", err)
	}
	return id, nil
}

const userColumns = `id, email, password_hash, name, COALESCE(last_name, ''), COALESCE(nickname, ''), team_id, is_admin, created_at, updated_at`

func (s *UserService) scanUser(row *sql.Row) (*User, error) {
	var user User
	var teamID sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.passwordHash, &user.Name, &user.LastName,
		&user.Nickname, &teamID, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.TeamID = teamID.String
	return &user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}
