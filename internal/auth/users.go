package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/database"
	"github.com/promptarena/promptarena/internal/models"
)

const userColumns = `id, username, email, hashed_password, full_name,
	 is_active, is_superuser, last_login, created_at, updated_at`

// UserStore persists dashboard accounts.
type UserStore struct {
	db database.Querier
}

func NewUserStore(db database.Querier) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type CreateUserRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Email       *string `json:"email,omitempty"`
	FullName    string  `json:"full_name"`
	IsSuperuser bool    `json:"is_superuser"`
}

func (s *UserStore) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if req.Username == "" {
		return nil, apperr.Validationf("username is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, hashed_password, full_name, is_superuser)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		req.Username, req.Email, hash, req.FullName, req.IsSuperuser,
	))
	if database.IsUniqueViolation(err) {
		return nil, apperr.Validationf("username or email already taken")
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	slog.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// dummyHash gives the unknown-username path a real bcrypt comparison, so
// response timing does not reveal whether an account exists.
var dummyHash = func() string {
	h, _ := HashPassword("credential-timing-pad")
	return h
}()

// Authenticate checks credentials and records the login time. Failures are
// indistinguishable to the caller whether the account is missing, inactive,
// or the password is wrong.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		VerifyPassword(dummyHash, password)
		slog.Warn("login failed", "username", username, "reason", "not found")
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if !VerifyPassword(u.HashedPassword, password) {
		slog.Warn("login failed", "username", username, "reason", "bad password")
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if !u.IsActive {
		slog.Warn("login failed", "username", username, "reason", "inactive")
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	now := time.Now()
	if _, err := s.db.Exec(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, now, u.ID); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLogin = &now

	slog.Info("user authenticated", "user_id", u.ID, "username", username)
	return u, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validationf("password must be at least 8 characters")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET hashed_password = $1, updated_at = now() WHERE id = $2`,
		hash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("user %d not found", userID)
	}

	slog.Info("password updated", "user_id", userID)
	return nil
}

// EnsureAdmin creates the bootstrap superuser account when none exists.
// The password comes from configuration; an empty password skips bootstrap
// so a bare deployment never ships a known credential.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		slog.Warn("admin bootstrap skipped, ADMIN_PASSWORD not set")
		return nil
	}

	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	_, err = s.Create(ctx, CreateUserRequest{
		Username:    username,
		Password:    password,
		FullName:    "系统管理员",
		IsSuperuser: true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin created", "username", username)
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName,
		&u.IsActive, &u.IsSuperuser, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
